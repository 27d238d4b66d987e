package tokenizer

import (
	"fmt"
	"os"
	"sync"

	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// HuggingFace counts tokens with a model's own tokenizer.json, e.g. the one
// published next to BAAI/bge-m3.
type HuggingFace struct {
	mu    sync.Mutex
	tk    *hf.Tokenizer
	limit int
}

// NewHuggingFace loads the tokenizer definition at path.
func NewHuggingFace(path string, limit int) (*HuggingFace, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("tokenizer file: %w", err)
	}
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &HuggingFace{tk: tk, limit: limit}, nil
}

// Limit returns the context window.
func (h *HuggingFace) Limit() int { return h.limit }

// Count returns the number of ids the model sees for text, including the
// special tokens the tokenizer adds around a single sequence. A text the
// tokenizer rejects counts as over the limit.
func (h *HuggingFace) Count(text string) int {
	if text == "" {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	enc, err := h.tk.EncodeSingle(text, true)
	if err != nil {
		return h.limit + 1
	}
	return len(enc.Ids)
}
