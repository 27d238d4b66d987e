package tokenizer

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestHeuristic_Count(t *testing.T) {
	h := NewHeuristic(0)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single word", "phone", 1},
		{"words scale by 1.3", "waterproof phone with camera", 5},
		{"punctuation counts", "Hi, there!", 4},
		{"separators split numbers", "Rp1.299.000,00", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.Count(tt.text); got != tt.want {
				t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestHeuristic_DefaultLimit(t *testing.T) {
	if got := NewHeuristic(-1).Limit(); got != DefaultLimit {
		t.Errorf("Limit() = %d, want %d", got, DefaultLimit)
	}
}

func TestExceeds(t *testing.T) {
	h := NewHeuristic(10)

	if _, over := Exceeds(h, "short text"); over {
		t.Error("short text must fit")
	}
	n, over := Exceeds(h, strings.Repeat("word ", 20))
	if !over {
		t.Errorf("expected 20 words to exceed limit 10, count %d", n)
	}
}

func TestNew_SelectsByProvider(t *testing.T) {
	c, err := New(Options{Provider: "hashing", Model: "hashing-256", Limit: 100})
	if err != nil {
		t.Fatalf("hashing: %v", err)
	}
	if _, ok := c.(*Heuristic); !ok || c.Limit() != 100 {
		t.Errorf("hashing provider got %T limit %d", c, c.Limit())
	}

	c, err = New(Options{Provider: "openai", Model: "text-embedding-3-small"})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := c.(*TikToken); !ok || c.Limit() != DefaultLimit {
		t.Errorf("openai model got %T limit %d", c, c.Limit())
	}
}

func TestNew_RemoteModelNeedsTokenizerFile(t *testing.T) {
	_, err := New(Options{Provider: "openai", Model: "BAAI/bge-m3"})
	if !errors.Is(err, ErrNoTokenizer) {
		t.Fatalf("expected ErrNoTokenizer, got %v", err)
	}

	missing := filepath.Join(t.TempDir(), "tokenizer.json")
	if _, err := New(Options{Provider: "openai", Model: "BAAI/bge-m3", File: missing}); err == nil {
		t.Fatal("expected error for missing tokenizer file")
	}
}

func TestTikToken_Count(t *testing.T) {
	tk, err := NewTikToken("text-embedding-3-small", 3)
	if err != nil {
		t.Fatal(err)
	}
	if n := tk.Count(""); n != 0 {
		t.Errorf("empty text = %d tokens", n)
	}
	if n := tk.Count("hello world"); n != 2 {
		t.Errorf("hello world = %d tokens, want 2", n)
	}
	if _, over := Exceeds(tk, strings.Repeat("phone ", 10)); !over {
		t.Error("expected long text to exceed a 3 token limit")
	}
}
