// Package textnorm cleans raw catalog text into the canonical form that is
// embedded and stored. Every function is pure and total: malformed input
// degrades to a best-effort string, never an error.
package textnorm

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"github.com/forPelevin/gomoji"
	xhtml "golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	tabsRegex        = regexp.MustCompile(`[\t\r]+`)
	multiSpaceRegex  = regexp.MustCompile(` {2,}`)
	specialRegex     = regexp.MustCompile(`[~@#$^_\\]`)
	openBracketRegex = regexp.MustCompile(`[{\[]`)
	closeBracketRgx  = regexp.MustCompile(`[}\]]`)

	nonInformative = []*regexp.Regexp{
		regexp.MustCompile(`(?i)click here`),
		regexp.MustCompile(`(?i)cek katalog.*`),
		regexp.MustCompile(`(?i)klik.*di sini`),
		regexp.MustCompile(`(?i)silakan tanyakan.*`),
		regexp.MustCompile(`(?i)jangan lewatkan.*`),
		regexp.MustCompile(`(?i)segera miliki.*`),
	}
)

// maxPasses bounds the fixed-point loops below. Each pass can only remove
// text, so real input settles in two or three.
const maxPasses = 8

// Normalize runs the full pipeline on raw HTML. The pipeline is repeated until
// the output stops changing, so Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	return settle(raw, func(s string) string {
		return CleanPassage(CleanHTML(s))
	})
}

// CleanPassage runs every step except HTML stripping. Use it for text that is
// already tag-free, such as an assembled passage template. A later step can
// expose a phrase an earlier one would have removed (an accent or a symbol
// inside "click here"), so the steps repeat until nothing changes.
func CleanPassage(text string) string {
	return settle(text, cleanPassageOnce)
}

func cleanPassageOnce(text string) string {
	text = NormalizeWhitespace(text)
	text = NormalizePunctuation(text)
	text = DecodeEntities(text)
	text = RemoveNonInformative(text)
	text = RemoveEmoji(text)
	text = RemoveSpecialSymbols(text)
	text = RemoveAccents(text)
	// removals above can leave doubled spaces or a space before punctuation
	return NormalizePunctuation(NormalizeWhitespace(text))
}

// CleanHTML extracts visible text from an HTML fragment. Text nodes are
// trimmed, empty ones dropped, and the rest joined with newlines. The parser
// decodes entities, so escaped markup such as &lt;b&gt; turns into tags; the
// joined text is parsed again until no markup is left.
func CleanHTML(raw string) string {
	return settle(raw, extractText)
}

func extractText(raw string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, template").Remove()

	var parts []string
	for _, n := range doc.Nodes {
		collectText(n, &parts)
	}
	return strings.Join(parts, "\n")
}

// settle applies step until its output is stable or maxPasses is reached.
func settle(text string, step func(string) string) string {
	for range maxPasses {
		next := step(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func collectText(n *xhtml.Node, parts *[]string) {
	if n.Type == xhtml.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// NormalizeWhitespace turns tabs and carriage returns into spaces, collapses
// runs of spaces and trims the ends. Newlines are kept.
func NormalizeWhitespace(text string) string {
	text = tabsRegex.ReplaceAllString(text, " ")
	text = multiSpaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// DecodeEntities converts HTML character references to literal characters.
func DecodeEntities(text string) string {
	return html.UnescapeString(text)
}

// RemoveNonInformative drops promotional filler phrases.
func RemoveNonInformative(text string) string {
	for _, re := range nonInformative {
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// RemoveEmoji strips emoji glyphs.
func RemoveEmoji(text string) string {
	return gomoji.RemoveEmojis(text)
}

// RemoveSpecialSymbols deletes ~ @ # $ ^ _ \ and rewrites curly and square
// brackets as parentheses.
func RemoveSpecialSymbols(text string) string {
	text = specialRegex.ReplaceAllString(text, "")
	text = openBracketRegex.ReplaceAllString(text, "(")
	return closeBracketRgx.ReplaceAllString(text, ")")
}

// RemoveAccents decomposes text (NFKD) and drops combining marks.
func RemoveAccents(text string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return out
}
