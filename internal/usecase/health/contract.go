package health

import "context"

// DBPinger checks catalog database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Checker is any component that can report its own health.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
