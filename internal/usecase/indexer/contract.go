package indexer

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/repository/artifact"
)

// Catalog reads the source rows for one build.
type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Attributes(ctx context.Context) (domain.AttributeLookup, error)
}

// Builds opens staging directories for new builds.
type Builds interface {
	Begin() (*artifact.Staging, error)
}

// PassageBuilder renders products into passages.
type PassageBuilder interface {
	BuildAll(products []domain.Product, lookup domain.AttributeLookup) []domain.Passage
}
