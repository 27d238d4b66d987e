package health

import (
	"context"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates that every component failed.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding Checker
	index     Checker
}

// New creates a Service. embedding and index can be nil.
func New(db DBPinger, embedding, index Checker) *Service {
	return &Service{db: db, embedding: embedding, index: index}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)

	if s.db != nil {
		checks["database"] = s.result(ctx, "database", s.db.Ping(ctx))
	}
	if s.embedding != nil {
		checks["embedding"] = s.result(ctx, "embedding", s.embedding.HealthCheck(ctx))
	}
	if s.index != nil {
		checks["index"] = s.result(ctx, "index", s.index.HealthCheck(ctx))
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) result(ctx context.Context, name string, err error) CheckResult {
	if err == nil {
		return CheckOK
	}
	logger.FromContext(ctx).Warn("Health check failed", zap.String("component", name), zap.Error(err))
	return CheckError
}
