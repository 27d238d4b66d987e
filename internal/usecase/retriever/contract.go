package retriever

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/repository/artifact"
)

// Loader reads the published build.
type Loader interface {
	Load(ctx context.Context) (*artifact.Snapshot, error)
	CurrentPath() string
}
