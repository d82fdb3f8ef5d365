package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultBaseURL = "http://localhost:11434"

// Config holds Ollama backend configuration
type Config struct {
	BaseURL string
	Model   string
}

// DefaultConfig returns default Ollama configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL: defaultBaseURL,
		Model:   "llama3.1:8b",
	}
}

// Backend implements the provider.Backend interface for a local Ollama server
type Backend struct {
	config *Config
	client *http.Client
}

// New creates a new Ollama backend
func New(config *Config) *Backend {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Model == "" {
		config.Model = "llama3.1:8b"
	}

	return &Backend{
		config: config,
		client: &http.Client{},
	}
}

// generateRequest represents an Ollama /api/generate request
type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse represents an Ollama /api/generate response
type generateResponse struct {
	Response string `json:"response"`
}

// Generate implements provider.Backend
func (b *Backend) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := generateRequest{
		Model:  b.config.Model,
		System: systemPrompt,
		Prompt: userPrompt,
		Stream: false,
	}

	raw, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := b.config.BaseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Ollama API returned status %d: %s", resp.StatusCode, body)
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Response, nil
}
