// Package ragconfig reads and updates the single-row RAG configuration.
package ragconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/catalograg/internal/db"
	"github.com/kailas-cloud/catalograg/internal/domain"
)

// configRowID is the only row the table holds.
const configRowID = 1

// DefaultTTL bounds how long a cached config may lag out-of-band edits.
const DefaultTTL = 30 * time.Second

// store is the consumer interface for config persistence (ISP). *sqlx.DB satisfies it.
type store interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const selectQuery = `
SELECT main_instruction, critical_instruction, additional_guideline,
       retriever_instruction, top_k_retrieval
FROM rag_configurations
WHERE id = $1`

const updateQuery = `
UPDATE rag_configurations
SET main_instruction = $1, critical_instruction = $2, additional_guideline = $3,
    retriever_instruction = $4, top_k_retrieval = $5, updated_at = NOW()
WHERE id = $6`

type configRow struct {
	MainInstruction      sql.NullString `db:"main_instruction"`
	CriticalInstruction  sql.NullString `db:"critical_instruction"`
	AdditionalGuideline  sql.NullString `db:"additional_guideline"`
	RetrieverInstruction sql.NullString `db:"retriever_instruction"`
	TopKRetrieval        sql.NullInt64  `db:"top_k_retrieval"`
}

// Repo serves the typed configuration with a short-lived cache.
type Repo struct {
	db       store
	ttl      time.Duration
	fallback domain.RAGConfig
	now      func() time.Time

	mu       sync.RWMutex
	cached   domain.RAGConfig
	cachedAt time.Time
	valid    bool
}

// New creates a config repository. fallback fills columns that are NULL.
func New(s store, ttl time.Duration, fallback domain.RAGConfig) *Repo {
	return &Repo{db: s, ttl: ttl, fallback: fallback, now: time.Now}
}

// Get returns the validated configuration.
func (r *Repo) Get(ctx context.Context) (domain.RAGConfig, error) {
	r.mu.RLock()
	if r.valid && r.now().Sub(r.cachedAt) < r.ttl {
		cfg := r.cached
		r.mu.RUnlock()
		return cfg, nil
	}
	r.mu.RUnlock()

	var row configRow
	if err := r.db.GetContext(ctx, &row, selectQuery, configRowID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RAGConfig{}, fmt.Errorf("rag configuration: %w", domain.ErrNotFound)
		}
		return domain.RAGConfig{}, fmt.Errorf("load rag configuration: %w", &db.Error{Op: db.OpSelect, Err: err})
	}

	cfg := r.merge(row)
	if err := cfg.Validate(); err != nil {
		return domain.RAGConfig{}, err
	}

	r.mu.Lock()
	r.cached, r.cachedAt, r.valid = cfg, r.now(), true
	r.mu.Unlock()
	return cfg, nil
}

// Update validates and persists cfg, then drops the cache.
func (r *Repo) Update(ctx context.Context, cfg domain.RAGConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, updateQuery,
		cfg.MainInstruction, cfg.CriticalInstruction, cfg.AdditionalGuideline,
		cfg.RetrieverInstruction, cfg.TopKRetrieval, configRowID)
	if err != nil {
		return fmt.Errorf("update rag configuration: %w", &db.Error{Op: db.OpUpdate, Err: err})
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("rag configuration: %w", domain.ErrNotFound)
	}
	r.Invalidate()
	return nil
}

// Invalidate drops the cached configuration.
func (r *Repo) Invalidate() {
	r.mu.Lock()
	r.valid = false
	r.mu.Unlock()
}

func (r *Repo) merge(row configRow) domain.RAGConfig {
	cfg := r.fallback
	if row.MainInstruction.Valid {
		cfg.MainInstruction = row.MainInstruction.String
	}
	if row.CriticalInstruction.Valid {
		cfg.CriticalInstruction = row.CriticalInstruction.String
	}
	if row.AdditionalGuideline.Valid {
		cfg.AdditionalGuideline = row.AdditionalGuideline.String
	}
	if row.RetrieverInstruction.Valid && row.RetrieverInstruction.String != "" {
		cfg.RetrieverInstruction = row.RetrieverInstruction.String
	}
	if row.TopKRetrieval.Valid {
		cfg.TopKRetrieval = int(row.TopKRetrieval.Int64)
	}
	return cfg
}
