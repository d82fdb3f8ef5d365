package config

import "time"

// DefaultHedgeWords mark answers that hedge instead of committing. Matching is
// case-insensitive substring matching against the answer text.
var DefaultHedgeWords = []string{
	"maybe", "might", "sort of", "i think",
	"perhaps", "probably", "could be", "not sure",
}

// FollowUpRules holds the per-role knobs that drive the deterministic answer
// classifier and the follow-up budget. Role profiles may override any field;
// zero values fall back to the defaults at load time.
type FollowUpRules struct {
	// WeakAnswerThresholdWords is the word count below which an answer is at
	// most moderate. Answers shorter than max(5, 40% of this) are weak
	// regardless of content.
	WeakAnswerThresholdWords int `json:"weak_answer_threshold_words"`

	// HedgeWords are substrings whose presence marks an answer weak.
	HedgeWords []string `json:"hedge_words"`

	// MaxFollowups bounds probing questions per seed question.
	MaxFollowups int `json:"max_followups"`
}

// DefaultFollowUpRules returns the default follow-up rules.
func DefaultFollowUpRules() FollowUpRules {
	return FollowUpRules{
		WeakAnswerThresholdWords: 20,
		HedgeWords:               DefaultHedgeWords,
		MaxFollowups:             3,
	}
}

// Normalize fills zero-valued fields with defaults.
func (r FollowUpRules) Normalize() FollowUpRules {
	def := DefaultFollowUpRules()
	if r.WeakAnswerThresholdWords <= 0 {
		r.WeakAnswerThresholdWords = def.WeakAnswerThresholdWords
	}
	if len(r.HedgeWords) == 0 {
		r.HedgeWords = def.HedgeWords
	}
	if r.MaxFollowups <= 0 {
		r.MaxFollowups = def.MaxFollowups
	}
	return r
}

// Engine holds session-level interview flow configuration.
type Engine struct {
	// SeedPlanSize is the number of seed questions fixed at session creation.
	SeedPlanSize int

	// MinNextQuestionsToEnd is the floor on seed advances before a natural end.
	MinNextQuestionsToEnd int

	// MinInterviewDuration is the wall-time floor before a natural end.
	MinInterviewDuration time.Duration

	// GenerateTimeout bounds each generation backend call. On timeout the
	// conservative fallback decision applies instead of an error.
	GenerateTimeout time.Duration
}

// DefaultEngine returns the default interview flow configuration.
func DefaultEngine() Engine {
	return Engine{
		SeedPlanSize:          3,
		MinNextQuestionsToEnd: 5,
		MinInterviewDuration:  10 * time.Minute,
		GenerateTimeout:       60 * time.Second,
	}
}

// Validate checks the engine configuration for invalid values.
func (c Engine) Validate() error {
	return NewValidator().
		ValidateRange("seed_plan_size", c.SeedPlanSize, 1, 3).
		RequirePositive("min_next_questions_to_end", c.MinNextQuestionsToEnd).
		RequirePositive("generate_timeout_seconds", int(c.GenerateTimeout/time.Second)).
		Err()
}
