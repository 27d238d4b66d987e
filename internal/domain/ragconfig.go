package domain

import (
	"fmt"
	"strings"
)

// MaxTopK bounds top_k_retrieval.
const MaxTopK = 100

// RAGConfig is the operator-tunable retrieval and prompt configuration.
type RAGConfig struct {
	MainInstruction      string `json:"main_instruction" db:"main_instruction"`
	CriticalInstruction  string `json:"critical_instruction" db:"critical_instruction"`
	AdditionalGuideline  string `json:"additional_guideline" db:"additional_guideline"`
	RetrieverInstruction string `json:"retriever_instruction" db:"retriever_instruction"`
	TopKRetrieval        int    `json:"top_k_retrieval" db:"top_k_retrieval"`
}

// Validate checks field bounds. Errors wrap ErrInvalidConfig.
func (c RAGConfig) Validate() error {
	if strings.TrimSpace(c.RetrieverInstruction) == "" {
		return fmt.Errorf("%w: retriever_instruction is required", ErrInvalidConfig)
	}
	if c.TopKRetrieval < 1 || c.TopKRetrieval > MaxTopK {
		return fmt.Errorf("%w: top_k_retrieval must be between 1 and %d, got %d",
			ErrInvalidConfig, MaxTopK, c.TopKRetrieval)
	}
	return nil
}

// Built-in prompt and retrieval settings used when the stored row leaves a field empty.
const (
	DefaultMainInstruction = "You are a highly accurate e-commerce chatbot assistant expert. " +
		"Your main role is to help customers find product information and provide recommendations " +
		"based **ONLY** on the provided product data."

	DefaultCriticalInstruction = "1.  **LANGUAGE:** ALWAYS respond in Bahasa Indonesia. The product data provided is also " +
		"in Bahasa Indonesia - use this data directly without translation.\n" +
		"2.  **DATA ACCURACY:** Base your answer ENTIRELY and SOLELY on the information within the provided " +
		"data below. Do NOT use any external knowledge or make assumptions about products.\n" +
		"3.  **RELEVANCE FILTER:** ONLY extract and use the specific parts of the product data that are " +
		"directly relevant to the user's question. If there is clearly no relevant information AT ALL within " +
		"the data, respond with: \"Maaf, informasi yang Anda cari tidak tersedia dalam data kami saat ini.\" " +
		"Otherwise, answer based ONLY on the RELEVANT parts."

	DefaultAdditionalGuideline = "- If recommending products, explain why based on the available product specifications\n" +
		"- Be specific about product features, prices, and availability as mentioned in the data\n" +
		"- Use a friendly, professional tone typical of Indonesian customer service"

	DefaultRetrieverInstruction = "Given a user’s product-related query, retrieve the most relevant and " +
		"informative product descriptions, specifications, or recommendations that directly address the query."

	DefaultTopK = 5
)

// DefaultRAGConfig returns the built-in configuration.
func DefaultRAGConfig() RAGConfig {
	return RAGConfig{
		MainInstruction:      DefaultMainInstruction,
		CriticalInstruction:  DefaultCriticalInstruction,
		AdditionalGuideline:  DefaultAdditionalGuideline,
		RetrieverInstruction: DefaultRetrieverInstruction,
		TopKRetrieval:        DefaultTopK,
	}
}
