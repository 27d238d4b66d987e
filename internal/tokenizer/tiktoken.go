package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

var loaderOnce sync.Once

// useOfflineLoader makes tiktoken read BPE ranks embedded in the binary
// instead of downloading them on first use.
func useOfflineLoader() {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
}

// TikToken counts tokens with the BPE encoding of an OpenAI model.
type TikToken struct {
	enc   *tiktoken.Tiktoken
	model string
	limit int
}

// NewTikToken resolves the encoding for model. Unknown models are an error.
func NewTikToken(model string, limit int) (*TikToken, error) {
	useOfflineLoader()
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("tiktoken encoding for %q: %w", model, err)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &TikToken{enc: enc, model: model, limit: limit}, nil
}

// Limit returns the context window.
func (t *TikToken) Limit() int { return t.limit }

// Count returns the number of BPE tokens in text. Special token markers are
// counted as plain text.
func (t *TikToken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}
