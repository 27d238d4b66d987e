package chat

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// BuildContext numbers passages from 1 and separates them with a blank line.
func BuildContext(passages []domain.RetrievedPassage) string {
	parts := make([]string, len(passages))
	for i, p := range passages {
		parts[i] = fmt.Sprintf("%d. %s", i+1, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt assembles the generation prompt. Empty instruction sections are omitted.
func BuildPrompt(cfg domain.RAGConfig, context, query string) string {
	var b strings.Builder

	if s := strings.TrimSpace(cfg.MainInstruction); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	if s := strings.TrimSpace(cfg.CriticalInstruction); s != "" {
		b.WriteString("CRITICAL INSTRUCTIONS:\n")
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	b.WriteString("PROVIDED PRODUCT DATA:\n")
	b.WriteString(context)
	b.WriteString("\n\nUSER QUESTION: ")
	b.WriteString(query)
	b.WriteString("\n\n")

	if s := strings.TrimSpace(cfg.AdditionalGuideline); s != "" {
		b.WriteString("ADDITIONAL RESPONSE GUIDELINES:\n")
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	b.WriteString("ANSWER:")
	return b.String()
}
