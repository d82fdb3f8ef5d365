// Package summary produces end-of-session performance summaries and
// per-answer coaching feedback. It consumes the engine's completed signal and
// the session transcript; it holds no interview decision logic.
package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/novexa-ai/interviewd/interview"
	"github.com/novexa-ai/interviewd/pkg/logging"
	"github.com/novexa-ai/interviewd/provider"
)

// rubricKeys are the per-answer scoring dimensions.
var rubricKeys = []string{"accuracy", "relevance", "clarity", "depth"}

// neutralScore is the deterministic fallback when scoring fails.
const neutralScore = 5.0

// weakAreaCutoff marks a rubric dimension as an improvement area.
const weakAreaCutoff = 3.0

// TranscriptEntry pairs one question with its answer and rubric scores.
type TranscriptEntry struct {
	Question string             `json:"question"`
	Answer   string             `json:"answer"`
	Scores   map[string]float64 `json:"score"`
}

// Practice carries recommended exercises and resources.
type Practice struct {
	Prompts   []string `json:"prompts"`
	Resources []string `json:"resources"`
}

// SessionSummary is the full end-of-session report.
type SessionSummary struct {
	AvgScores           map[string]float64 `json:"avg_scores"`
	Transcript          []TranscriptEntry  `json:"transcript"`
	OverallFeedback     string             `json:"overall_feedback"`
	AreasForImprovement []string           `json:"areas_for_improvement"`
	Practice            Practice           `json:"practice"`
}

// Improvement is one actionable coaching step.
type Improvement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Example     string `json:"example"`
}

// Feedback is structured coaching output for a single Q/A pair.
type Feedback struct {
	Summary      string        `json:"summary"`
	Strengths    []string      `json:"strengths"`
	Weaknesses   []string      `json:"weaknesses"`
	Improvements []Improvement `json:"improvements"`
}

// FeedbackResult bundles rubric scores with coaching feedback.
type FeedbackResult struct {
	Scores   map[string]float64 `json:"scores"`
	Feedback *Feedback          `json:"feedback"`
}

// Summarizer generates summaries through the generation backend with strict
// JSON prompts, a cleanup pass and bounded retries. It never fails a session
// summary: the last resort is a placeholder with empty lists.
type Summarizer struct {
	backend     provider.Backend
	logger      *slog.Logger
	maxAttempts int
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithLogger overrides the summarizer's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Summarizer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMaxAttempts bounds retries against the backend for the overall
// feedback call.
func WithMaxAttempts(n int) Option {
	return func(s *Summarizer) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// NewSummarizer creates a summarizer over the given backend.
func NewSummarizer(backend provider.Backend, opts ...Option) *Summarizer {
	s := &Summarizer{
		backend:     backend,
		maxAttempts: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.WithComponent("summarizer")
	}
	return s
}

// ScoreAnswer scores one answer against its question on the rubric
// dimensions, 0-10 each. Scoring failures degrade to neutral scores.
func (s *Summarizer) ScoreAnswer(ctx context.Context, question, answer, role string) map[string]float64 {
	prompt := fmt.Sprintf(`You are an expert interview evaluator for role: %s.
Evaluate the candidate's answer with respect to the specific question.

QUESTION: %s
ANSWER: %s

Score the answer on a scale 0-10 for:
- Accuracy
- Relevance
- Clarity
- Depth of reasoning

Return STRICT JSON ONLY:
{"accuracy": int, "relevance": int, "clarity": int, "depth": int}`, role, question, answer)

	raw, err := s.backend.Generate(ctx, "", prompt)
	if err != nil {
		s.logger.Warn("scoring call failed, using neutral scores", "error", err)
		return neutralScores()
	}

	var parsed map[string]float64
	if err := json.Unmarshal([]byte(cleanResponse(raw)), &parsed); err != nil || len(parsed) == 0 {
		s.logger.Warn("scoring response unparseable, using neutral scores")
		return neutralScores()
	}

	scores := make(map[string]float64, len(rubricKeys))
	for _, key := range rubricKeys {
		if v, ok := parsed[key]; ok {
			scores[key] = v
		} else {
			scores[key] = neutralScore
		}
	}
	return scores
}

// llmSummary is the structured payload requested from the backend for the
// overall session feedback.
type llmSummary struct {
	OverallFeedback     string   `json:"overall_feedback"`
	AreasForImprovement []string `json:"areas_for_improvement"`
	PracticePrompts     []string `json:"practice_prompts"`
	ResourceLinks       []string `json:"resource_links"`
}

// Generate builds the full session summary: per-question scores, averages,
// weak areas and backend-written narrative feedback. It also populates the
// session's long-term memory. The result is always usable; backend failures
// leave the narrative fields empty rather than erroring.
func (s *Summarizer) Generate(ctx context.Context, sess *interview.Session) *SessionSummary {
	questions, answers := sess.Transcript()

	n := len(answers)
	if len(questions) < n {
		n = len(questions)
	}

	transcript := make([]TranscriptEntry, 0, n)
	totals := make(map[string]float64, len(rubricKeys))
	for i := 0; i < n; i++ {
		scores := s.ScoreAnswer(ctx, questions[i], answers[i], sess.Role)
		transcript = append(transcript, TranscriptEntry{
			Question: questions[i],
			Answer:   answers[i],
			Scores:   scores,
		})
		for k, v := range scores {
			totals[k] += v
		}
	}

	avgScores := make(map[string]float64, len(totals))
	for k, total := range totals {
		avgScores[k] = roundTo2(total / float64(n))
	}

	var weakAreas []string
	for _, k := range rubricKeys {
		if v, ok := avgScores[k]; ok && v < weakAreaCutoff {
			weakAreas = append(weakAreas, k)
		}
	}

	parsed := s.overallFeedback(ctx, sess.Role, avgScores, transcript)
	if parsed == nil {
		parsed = &llmSummary{
			OverallFeedback:     "Unable to generate feedback.",
			AreasForImprovement: weakAreas,
		}
	}
	if len(parsed.AreasForImprovement) == 0 {
		parsed.AreasForImprovement = weakAreas
	}

	sess.SetMemory(interview.Memory{
		WeakAreas:       parsed.AreasForImprovement,
		PastAvgScores:   avgScores,
		PracticePrompts: parsed.PracticePrompts,
		ResourceLinks:   parsed.ResourceLinks,
	})

	return &SessionSummary{
		AvgScores:           avgScores,
		Transcript:          transcript,
		OverallFeedback:     parsed.OverallFeedback,
		AreasForImprovement: parsed.AreasForImprovement,
		Practice: Practice{
			Prompts:   parsed.PracticePrompts,
			Resources: parsed.ResourceLinks,
		},
	}
}

// overallFeedback asks the backend for narrative feedback with bounded
// retries. Returns nil when every attempt produced unusable output.
func (s *Summarizer) overallFeedback(ctx context.Context, role string, avgScores map[string]float64, transcript []TranscriptEntry) *llmSummary {
	transcriptJSON, _ := json.Marshal(transcript)
	scoresJSON, _ := json.Marshal(avgScores)

	prompt := fmt.Sprintf(`You are an expert interview coach.
Based on the following candidate session details:

Role: %s
Average Scores: %s
Transcript: %s

Tasks:
1. Write a concise overall feedback paragraph summarizing performance.
2. Identify areas for improvement (e.g., communication, technical knowledge, structure).
3. Suggest 3 practice prompts similar to the answered questions.
4. Suggest 2-3 links to resources or exercises to improve skills.

Return STRICT JSON with keys:
{"overall_feedback": "...", "areas_for_improvement": ["..."], "practice_prompts": ["..."], "resource_links": ["..."]}
Constraints:
- Do NOT add extra commentary.
- Do NOT include markdown.
- Do NOT break JSON.`, role, scoresJSON, transcriptJSON)

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		raw, err := s.backend.Generate(ctx, "", prompt)
		if err != nil {
			s.logger.Warn("feedback call failed", "attempt", attempt, "error", err)
			continue
		}

		var parsed llmSummary
		if err := json.Unmarshal([]byte(cleanResponse(raw)), &parsed); err != nil {
			s.logger.Warn("feedback response unparseable", "attempt", attempt, "error", err)
			continue
		}
		return &parsed
	}
	return nil
}

// Feedback scores one Q/A pair and generates structured coaching feedback.
// Unlike session summaries, feedback for a single answer surfaces an error
// when the backend output cannot be salvaged.
func (s *Summarizer) Feedback(ctx context.Context, question, answer, role string) (*FeedbackResult, error) {
	scores := s.ScoreAnswer(ctx, question, answer, role)
	scoresJSON, _ := json.Marshal(scores)

	prompt := fmt.Sprintf(`You are an expert interview coach evaluating a candidate for the role: %s.

Below is the candidate's response:

QUESTION: %s
ANSWER: %s

Pre-computed rubric scores:
%s

Return a STRICT JSON object with the following fields:
{"summary": "2-3 lines summarizing the overall answer quality",
 "strengths": ["bullet 1", "bullet 2"],
 "weaknesses": ["bullet 1", "bullet 2"],
 "improvements": [{"title": "...", "description": "...", "example": "..."}]}
Constraints:
- DO NOT add extra commentary.
- DO NOT include markdown.
- DO NOT break JSON.`, role, question, answer, scoresJSON)

	raw, err := s.backend.Generate(ctx, "", prompt)
	if err != nil {
		return nil, fmt.Errorf("feedback generation failed: %w", err)
	}

	var feedback Feedback
	if err := json.Unmarshal([]byte(cleanResponse(raw)), &feedback); err != nil {
		return nil, fmt.Errorf("feedback response is not valid JSON: %w", err)
	}

	return &FeedbackResult{
		Scores:   scores,
		Feedback: &feedback,
	}, nil
}

// cleanResponse strips markdown fencing and surrounding prose, keeping the
// span between the first opening and last closing brace.
func cleanResponse(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start != -1 && end > start {
		cleaned = cleaned[start : end+1]
	}
	return strings.TrimSpace(cleaned)
}

func neutralScores() map[string]float64 {
	scores := make(map[string]float64, len(rubricKeys))
	for _, key := range rubricKeys {
		scores[key] = neutralScore
	}
	return scores
}

func roundTo2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
