package chi

import (
	"context"

	"github.com/kailas-cloud/catalograg/internal/auth"
	"github.com/kailas-cloud/catalograg/internal/domain"
	chatuc "github.com/kailas-cloud/catalograg/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/catalograg/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/catalograg/internal/usecase/indexer"
	retrieveruc "github.com/kailas-cloud/catalograg/internal/usecase/retriever"
	usageuc "github.com/kailas-cloud/catalograg/internal/usecase/usage"
)

// Chat answers and retrieves for customer questions.
type Chat interface {
	Ask(ctx context.Context, query string) (chatuc.Answer, error)
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedPassage, error)
}

// RAGConfigStore reads and replaces the operator configuration.
type RAGConfigStore interface {
	Get(ctx context.Context) (domain.RAGConfig, error)
	Update(ctx context.Context, cfg domain.RAGConfig) error
}

// Indexer rebuilds the published index.
type Indexer interface {
	Build(ctx context.Context) (indexeruc.Report, error)
	Running() bool
}

// Index exposes the loaded build.
type Index interface {
	Status() retrieveruc.Status
	Reload(ctx context.Context) error
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// UsageReporter reports embedding token spend.
type UsageReporter interface {
	GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
}

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Parse(token string) (*auth.Claims, error)
}
