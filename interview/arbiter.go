package interview

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/novexa-ai/interviewd/pkg/logging"
	"github.com/novexa-ai/interviewd/prompt"
	"github.com/novexa-ai/interviewd/provider"
)

// followUpSignals are phrases whose presence in an unparseable backend
// response indicates the model wanted to probe deeper.
var followUpSignals = []string{
	"follow up", "follow-up", "clarify", "could you", "tell me more", "what do you mean",
}

// nextQuestionSignals indicate the model wanted to move on.
var nextQuestionSignals = []string{
	"next", "move on", "next question", "proceed",
}

// Arbiter reconciles the generation backend's judgment of an answer into one
// normalized Decision. It never returns an error: malformed, empty or
// unreachable backend output degrades through keyword parsing down to a
// conservative follow-up default.
type Arbiter struct {
	backend       provider.Backend
	prompts       *prompt.Manager
	tokenizer     *prompt.Tokenizer
	historyBudget int
	logger        *slog.Logger
}

// ArbiterOption configures an Arbiter.
type ArbiterOption func(*Arbiter)

// WithArbiterLogger overrides the arbiter's logger.
func WithArbiterLogger(logger *slog.Logger) ArbiterOption {
	return func(a *Arbiter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithArbiterPrompts overrides the prompt manager.
func WithArbiterPrompts(m *prompt.Manager) ArbiterOption {
	return func(a *Arbiter) {
		if m != nil {
			a.prompts = m
		}
	}
}

// WithHistoryBudget trims prompt history to roughly budget tokens using the
// given tokenizer.
func WithHistoryBudget(tok *prompt.Tokenizer, budget int) ArbiterOption {
	return func(a *Arbiter) {
		a.tokenizer = tok
		a.historyBudget = budget
	}
}

// NewArbiter creates an arbiter over the given backend.
func NewArbiter(backend provider.Backend, opts ...ArbiterOption) *Arbiter {
	a := &Arbiter{
		backend: backend,
		prompts: DefaultPrompts(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = logging.WithComponent("arbiter")
	}
	return a
}

// decisionPayload is the structured decision the backend is instructed to
// return.
type decisionPayload struct {
	Action           string `json:"action"`
	Strength         string `json:"strength"`
	FollowUpQuestion string `json:"follow_up_question"`
}

// Decide consults the backend once and parses its response in tiers: strict
// JSON span decode, then keyword scanning, then a conservative follow-up
// default. The returned decision always carries a valid action and a
// non-empty question when that action is a follow-up.
func (a *Arbiter) Decide(ctx context.Context, s *Session, latestAnswer string) Decision {
	system := renderDecisionContext(a.prompts, a.tokenizer, a.historyBudget, s, latestAnswer)

	raw, err := a.backend.Generate(ctx, system, decisionInstruction)
	if err != nil {
		a.logger.Warn("backend call failed, using conservative default",
			"session_id", s.ID, "error", err)
		raw = ""
	}

	if dec, ok := parseStrict(raw); ok {
		return finalize(dec)
	}
	if dec, ok := parseKeywords(raw); ok {
		a.logger.Debug("strict decode failed, keyword fallback matched", "session_id", s.ID)
		return finalize(dec)
	}

	a.logger.Debug("no parse tier matched, conservative default", "session_id", s.ID)
	return finalize(Decision{
		Action:           ActionFollowUp,
		Strength:         StrengthModerate,
		FollowUpQuestion: firstNonEmptyLine(raw),
	})
}

// parseStrict decodes the span between the first opening and last closing
// brace as a decision payload. It accepts only payloads whose action and
// strength are members of their enumerations.
func parseStrict(raw string) (Decision, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return Decision{}, false
	}

	var payload decisionPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return Decision{}, false
	}

	action := Action(payload.Action)
	strength := Strength(payload.Strength)
	if !action.Valid() || !validStrength(strength) {
		return Decision{}, false
	}

	return Decision{
		Action:           action,
		Strength:         strength,
		FollowUpQuestion: strings.TrimSpace(payload.FollowUpQuestion),
	}, true
}

// parseKeywords scans a case-folded response for follow-up then advance
// signals.
func parseKeywords(raw string) (Decision, bool) {
	low := strings.ToLower(raw)

	for _, signal := range followUpSignals {
		if strings.Contains(low, signal) {
			return Decision{
				Action:           ActionFollowUp,
				Strength:         StrengthModerate,
				FollowUpQuestion: firstNonEmptyLine(raw),
			}, true
		}
	}

	for _, signal := range nextQuestionSignals {
		if strings.Contains(low, signal) {
			return Decision{
				Action:   ActionNextQuestion,
				Strength: StrengthStrong,
			}, true
		}
	}

	return Decision{}, false
}

// finalize guarantees the follow-up question invariant.
func finalize(dec Decision) Decision {
	if dec.Action == ActionFollowUp && dec.FollowUpQuestion == "" {
		dec.FollowUpQuestion = genericElaborationPrompt
	}
	return dec
}

func validStrength(s Strength) bool {
	switch s {
	case StrengthWeak, StrengthModerate, StrengthStrong:
		return true
	}
	return false
}

func firstNonEmptyLine(raw string) string {
	for _, line := range strings.Split(raw, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
