package chat

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/domain"
)

// ConfigProvider returns the current RAG configuration.
type ConfigProvider interface {
	Get(ctx context.Context) (domain.RAGConfig, error)
}

// Retriever finds passages for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query, instruction string, k int) ([]domain.RetrievedPassage, error)
}
