// Package chat answers customer questions from retrieved catalog passages.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/logger"
)

// Answer is a generated reply with the passages it was grounded on.
type Answer struct {
	Text       string
	Passages   []domain.RetrievedPassage
	Completion domain.Completion
}

// Service runs retrieval and generation for one question.
type Service struct {
	config    ConfigProvider
	retriever Retriever
	generator domain.Generator
	maxTopK   int
}

// New creates a chat service. generator may be nil when only retrieval is served.
func New(config ConfigProvider, retriever Retriever, generator domain.Generator, maxTopK int) *Service {
	if maxTopK <= 0 || maxTopK > domain.MaxTopK {
		maxTopK = domain.MaxTopK
	}
	return &Service{config: config, retriever: retriever, generator: generator, maxTopK: maxTopK}
}

// Retrieve returns passages for query using the configured instruction.
// k = 0 selects the configured top_k_retrieval.
func (s *Service) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedPassage, error) {
	cfg, err := s.config.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load rag config: %w", err)
	}
	return s.retrieve(ctx, cfg, query, k)
}

func (s *Service) retrieve(ctx context.Context, cfg domain.RAGConfig, query string, k int) ([]domain.RetrievedPassage, error) {
	if k == 0 {
		k = cfg.TopKRetrieval
	}
	if k < 0 || k > s.maxTopK {
		return nil, fmt.Errorf("k must be between 1 and %d, got %d: %w", s.maxTopK, k, domain.ErrInvalidArgument)
	}
	passages, err := s.retriever.Retrieve(ctx, query, cfg.RetrieverInstruction, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	return passages, nil
}

// Ask retrieves context for query and generates an answer from it.
func (s *Service) Ask(ctx context.Context, query string) (Answer, error) {
	if s.generator == nil {
		return Answer{}, fmt.Errorf("no generation model configured: %w", domain.ErrGenerationFailed)
	}
	query = strings.TrimSpace(query)

	cfg, err := s.config.Get(ctx)
	if err != nil {
		return Answer{}, fmt.Errorf("load rag config: %w", err)
	}

	passages, err := s.retrieve(ctx, cfg, query, 0)
	if err != nil {
		return Answer{}, err
	}

	prompt := BuildPrompt(cfg, BuildContext(passages), query)
	completion, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return Answer{}, fmt.Errorf("generate: %w", err)
	}

	logger.FromContext(ctx).Info("Answer generated",
		zap.Int("passages", len(passages)),
		zap.String("model", completion.Model),
		zap.Int("prompt_tokens", completion.PromptTokens),
		zap.Int("completion_tokens", completion.CompletionTokens),
	)

	return Answer{
		Text:       completion.Text,
		Passages:   passages,
		Completion: completion,
	}, nil
}
