package domain

import "context"

// Completion is one generated answer and its token usage.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Generator turns an assembled prompt into an answer.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Completion, error)
}
