package domain

import "context"

type requestUsageKey struct{}

// RequestUsage accumulates embedding tokens spent while serving one request.
// Handlers attach it before calling a use case and report it in response headers.
type RequestUsage struct {
	EmbeddingTokens int
	CacheHits       int
}

// ContextWithUsage returns a context carrying a fresh usage collector.
func ContextWithUsage(ctx context.Context) (context.Context, *RequestUsage) {
	u := &RequestUsage{}
	return context.WithValue(ctx, requestUsageKey{}, u), u
}

// UsageFrom returns the collector stored in ctx, or nil.
func UsageFrom(ctx context.Context) *RequestUsage {
	u, _ := ctx.Value(requestUsageKey{}).(*RequestUsage)
	return u
}

// AddTokens records consumed tokens. Safe on a nil receiver.
func (u *RequestUsage) AddTokens(n int) {
	if u != nil {
		u.EmbeddingTokens += n
	}
}

// AddCacheHit records a vector served from cache. Safe on a nil receiver.
func (u *RequestUsage) AddCacheHit() {
	if u != nil {
		u.CacheHits++
	}
}
