package textnorm

import (
	"strings"
	"unicode"
)

// NormalizePunctuation removes whitespace before . , ! ? ; :, collapses runs
// of the same . , ! ? to one mark and inserts a single space after a mark
// that is directly followed by a letter or symbol. A mark followed by a digit
// is left alone so decimals and grouped prices survive.
func NormalizePunctuation(text string) string {
	text = dropSpaceBeforePunct(text)
	text = collapseRepeatedPunct(text)
	text = spaceAfterPunct(text)
	return strings.TrimSpace(text)
}

func isPunct(r rune) bool {
	switch r {
	case '.', ',', '!', '?', ';', ':':
		return true
	}
	return false
}

func isRepeatable(r rune) bool {
	switch r {
	case '.', ',', '!', '?':
		return true
	}
	return false
}

func dropSpaceBeforePunct(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(rs); i++ {
		if !unicode.IsSpace(rs[i]) {
			b.WriteRune(rs[i])
			continue
		}
		j := i
		for j < len(rs) && unicode.IsSpace(rs[j]) {
			j++
		}
		if j < len(rs) && isPunct(rs[j]) {
			i = j - 1
			continue
		}
		b.WriteString(string(rs[i:j]))
		i = j - 1
	}
	return b.String()
}

func collapseRepeatedPunct(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	var prev rune
	for _, r := range text {
		if isRepeatable(r) && r == prev {
			continue
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}

func spaceAfterPunct(text string) string {
	rs := []rune(text)
	var b strings.Builder
	b.Grow(len(text) + 16)
	for i, r := range rs {
		b.WriteRune(r)
		if !isPunct(r) || i+1 >= len(rs) {
			continue
		}
		next := rs[i+1]
		if !unicode.IsDigit(next) && !unicode.IsSpace(next) {
			b.WriteByte(' ')
		}
	}
	return b.String()
}
