package interview

import (
	"strings"
	"time"
)

// confirmationPhrase in the previously served question arms the explicit-end
// fast path.
const confirmationPhrase = "are you sure"

// affirmativeTokens confirm an armed end.
var affirmativeTokens = []string{"yes", "yeah", "sure", "correct", "right"}

// TerminationPolicy overlays explicit-confirmation, duration and count-floor
// rules on top of the progression engine's natural completion signal.
type TerminationPolicy struct {
	MinNextQuestions int
	MinDuration      time.Duration
}

// ConfirmsEnd reports whether the last served question asked for an end
// confirmation and the answer affirms it. This bypasses arbitration entirely.
func (p TerminationPolicy) ConfirmsEnd(lastQuestion, answer string) bool {
	if !strings.Contains(strings.ToLower(lastQuestion), confirmationPhrase) {
		return false
	}
	low := strings.ToLower(answer)
	for _, tok := range affirmativeTokens {
		if strings.Contains(low, tok) {
			return true
		}
	}
	return false
}

// FloorsMet reports whether both the question-count and wall-time floors are
// satisfied. A session whose seed plan is exhausted may only end naturally
// once this holds; otherwise the engine extends the interview with
// synthesized questions.
func (p TerminationPolicy) FloorsMet(s *Session, now time.Time) bool {
	if s.NextQuestionCount < p.MinNextQuestions {
		return false
	}
	return now.Sub(s.StartTime) >= p.MinDuration
}
