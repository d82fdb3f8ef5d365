package prompt

import (
	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens so prompt history can be kept inside a model's
// context window.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewTokenizer creates a tokenizer for the given model or encoding name.
func NewTokenizer(name string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		// try by encoding name
		enc, err = tiktoken.GetEncoding(name)
		if err != nil {
			return nil, err
		}
	}
	return &Tokenizer{enc: enc}, nil
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// TrimHistory drops the oldest entries until the joined history fits within
// budget tokens. The most recent entries always survive, even if a single
// entry alone exceeds the budget.
func (t *Tokenizer) TrimHistory(entries []string, budget int) []string {
	if budget <= 0 || len(entries) == 0 {
		return entries
	}
	total := 0
	counts := make([]int, len(entries))
	for i, e := range entries {
		counts[i] = t.CountTokens(e)
		total += counts[i]
	}
	start := 0
	for start < len(entries)-1 && total > budget {
		total -= counts[start]
		start++
	}
	return entries[start:]
}
