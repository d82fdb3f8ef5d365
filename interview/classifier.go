package interview

import (
	"strings"
	"unicode"

	"github.com/novexa-ai/interviewd/config"
)

// Strength labels summarize answer quality.
type Strength string

const (
	StrengthWeak     Strength = "weak"
	StrengthModerate Strength = "moderate"
	StrengthStrong   Strength = "strong"
)

// starKeywords indicate an answer structured along the STAR method. Their
// presence is informative, not required for a strong label.
var starKeywords = []string{
	"situation", "task", "action", "result", "example", "when i",
}

// Classifier is the deterministic answer-strength heuristic. It is pure:
// same answer and rules always produce the same label, no I/O.
type Classifier struct {
	rules config.FollowUpRules
}

// NewClassifier creates a classifier with the given rules, filling unset
// fields with defaults.
func NewClassifier(rules config.FollowUpRules) *Classifier {
	return &Classifier{rules: rules.Normalize()}
}

// Classify labels an answer weak, moderate or strong. Rules apply in order,
// first match wins:
//  1. extremely short (< max(5, 40% of threshold) words) -> weak
//  2. contains a hedge substring (case-insensitive) -> weak
//  3. below the word threshold -> moderate
//  4. otherwise -> strong
func (c *Classifier) Classify(answer string) Strength {
	threshold := c.rules.WeakAnswerThresholdWords
	words := WordCount(answer)

	minWords := threshold * 4 / 10
	if minWords < 5 {
		minWords = 5
	}
	if words < minWords {
		return StrengthWeak
	}

	lower := strings.ToLower(answer)
	for _, hedge := range c.rules.HedgeWords {
		if strings.Contains(lower, strings.ToLower(hedge)) {
			return StrengthWeak
		}
	}

	if words < threshold {
		return StrengthModerate
	}

	return StrengthStrong
}

// HasSTARSignal reports whether the answer carries STAR-method keywords.
func HasSTARSignal(answer string) bool {
	lower := strings.ToLower(answer)
	for _, kw := range starKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// WordCount counts maximal alphanumeric runs in text.
func WordCount(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if !inWord {
				count++
				inWord = true
			}
		} else {
			inWord = false
		}
	}
	return count
}
