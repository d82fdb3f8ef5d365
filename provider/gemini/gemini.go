package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Config holds Gemini backend configuration
type Config struct {
	APIKey      string
	Model       string
	MaxTokens   int32
	Temperature float32
}

// DefaultConfig returns default Gemini configuration
func DefaultConfig(apiKey string) *Config {
	return &Config{
		APIKey:      apiKey,
		Model:       "gemini-1.5-flash",
		MaxTokens:   2048,
		Temperature: 0.7,
	}
}

// Backend implements the provider.Backend interface for Google Gemini
type Backend struct {
	config *Config
	client *genai.Client
}

// New creates a new Gemini backend using the official SDK
func New(ctx context.Context, config *Config) (*Backend, error) {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.Model == "" {
		config.Model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Backend{
		config: config,
		client: client,
	}, nil
}

// Generate implements provider.Backend
func (b *Backend) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	model := b.client.GenerativeModel(b.config.Model)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}
	if b.config.Temperature > 0 {
		model.SetTemperature(b.config.Temperature)
	}
	if b.config.MaxTokens > 0 {
		model.SetMaxOutputTokens(b.config.MaxTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText += string(text)
		}
	}
	return responseText, nil
}

// Close releases the underlying API client.
func (b *Backend) Close() error {
	return b.client.Close()
}
