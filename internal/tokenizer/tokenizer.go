// Package tokenizer counts how many tokens a passage costs the embedding
// model. OpenAI models use their tiktoken encoding, other remote models load
// the HuggingFace tokenizer.json they ship with, and the offline hashing
// embedder uses a vocabulary-free estimate.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// DefaultLimit is the context window of the default embedding model.
const DefaultLimit = 8192

// Counter estimates how many tokens a text costs.
type Counter interface {
	Count(text string) int
	Limit() int
}

// ErrNoTokenizer is returned when a model has neither a tiktoken encoding nor
// a tokenizer file.
var ErrNoTokenizer = errors.New("no tokenizer for model")

// Options selects a counter.
type Options struct {
	Provider string // openai, hashing
	Model    string
	File     string // HuggingFace tokenizer.json; takes precedence for remote models
	Limit    int
}

// New returns the counter matching the embedding provider and model.
func New(opts Options) (Counter, error) {
	switch {
	case opts.Provider == "hashing":
		return NewHeuristic(opts.Limit), nil
	case opts.File != "":
		return NewHuggingFace(opts.File, opts.Limit)
	}
	tk, err := NewTikToken(opts.Model, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("%w %q: set embedding.tokenizer_file: %w", ErrNoTokenizer, opts.Model, err)
	}
	return tk, nil
}

// Heuristic counts words and punctuation marks and compares the result with
// 1.3 tokens per whitespace-separated word, returning the larger estimate.
// Subword models usually land between the two.
type Heuristic struct {
	limit int
}

// NewHeuristic creates a counter with the given context window.
func NewHeuristic(limit int) *Heuristic {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Heuristic{limit: limit}
}

// Limit returns the context window.
func (h *Heuristic) Limit() int { return h.limit }

// Count returns the token estimate for text.
func (h *Heuristic) Count(text string) int {
	if text == "" {
		return 0
	}

	var pieces int
	inWord := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			if inWord {
				pieces++
				inWord = false
			}
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			if inWord {
				pieces++
				inWord = false
			}
			pieces++
		default:
			inWord = true
		}
	}
	if inWord {
		pieces++
	}

	byWords := int(float64(len(strings.Fields(text))) * 1.3)
	return max(pieces, byWords)
}

// Exceeds reports whether text is over the counter's limit along with its count.
func Exceeds(c Counter, text string) (int, bool) {
	n := c.Count(text)
	return n, n > c.Limit()
}
