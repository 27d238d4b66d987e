package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/auth"
	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/metrics"
	gen "github.com/kailas-cloud/catalograg/internal/transport/generated"
	chatuc "github.com/kailas-cloud/catalograg/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/catalograg/internal/usecase/health"
	indexeruc "github.com/kailas-cloud/catalograg/internal/usecase/indexer"
	retrieveruc "github.com/kailas-cloud/catalograg/internal/usecase/retriever"
	usageuc "github.com/kailas-cloud/catalograg/internal/usecase/usage"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// --- Fakes ---

type fakeChat struct {
	answer   chatuc.Answer
	passages []domain.RetrievedPassage
	err      error
	gotK     int
}

func (f *fakeChat) Ask(ctx context.Context, _ string) (chatuc.Answer, error) {
	domain.UsageFrom(ctx).AddTokens(7)
	return f.answer, f.err
}

func (f *fakeChat) Retrieve(ctx context.Context, _ string, k int) ([]domain.RetrievedPassage, error) {
	f.gotK = k
	domain.UsageFrom(ctx).AddCacheHit()
	return f.passages, f.err
}

type fakeConfig struct {
	cfg     domain.RAGConfig
	updated *domain.RAGConfig
}

func (f *fakeConfig) Get(context.Context) (domain.RAGConfig, error) { return f.cfg, nil }

func (f *fakeConfig) Update(_ context.Context, cfg domain.RAGConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	f.updated = &cfg
	return nil
}

type fakeIndexer struct {
	running bool
	report  indexeruc.Report
	err     error
	builds  int
}

func (f *fakeIndexer) Build(context.Context) (indexeruc.Report, error) {
	f.builds++
	return f.report, f.err
}

func (f *fakeIndexer) Running() bool { return f.running }

type fakeIndex struct {
	status  retrieveruc.Status
	reloads int
}

func (f *fakeIndex) Status() retrieveruc.Status { return f.status }

func (f *fakeIndex) Reload(context.Context) error {
	f.reloads++
	return nil
}

type fakeHealth struct{ report healthuc.Report }

func (f fakeHealth) Check(context.Context) healthuc.Report { return f.report }

type fakeBudget struct{}

func (fakeBudget) DailyLimit() int64       { return 1000 }
func (fakeBudget) MonthlyLimit() int64     { return 0 }
func (fakeBudget) DailyUsed() int64        { return 250 }
func (fakeBudget) MonthlyUsed() int64      { return 250 }
func (fakeBudget) RemainingDaily() int64   { return 750 }
func (fakeBudget) RemainingMonthly() int64 { return -1 }

// --- Helpers ---

type testEnv struct {
	handler http.Handler
	tokens  *auth.Manager
	chat    *fakeChat
	config  *fakeConfig
	indexer *fakeIndexer
	index   *fakeIndex
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		tokens:  auth.NewManager("test-secret", "catalograg", time.Hour),
		chat:    &fakeChat{},
		config:  &fakeConfig{cfg: domain.DefaultRAGConfig()},
		indexer: &fakeIndexer{},
		index:   &fakeIndex{},
	}
	health := fakeHealth{report: healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{
		"database": healthuc.CheckOK,
	}}}
	srv := NewServer(env.chat, env.config, env.indexer, env.index, health, usageuc.New(fakeBudget{}))
	env.handler = NewRouter(srv, env.tokens, zap.NewNop())
	return env
}

func (e *testEnv) token(t *testing.T, role auth.Role) string {
	t.Helper()
	tok, err := e.tokens.Issue(1, role)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// --- Tests ---

func TestQuery_ReturnsEnvelope(t *testing.T) {
	env := newEnv(t)
	env.chat.answer = chatuc.Answer{
		Text:     "Ada, harganya Rp1.299.000",
		Passages: []domain.RetrievedPassage{{Position: 1, ProductID: 9, Text: "Phone", Score: 0.8}},
	}

	rr := env.do(t, http.MethodPost, "/api/query", env.token(t, auth.RoleCustomer), map[string]string{"query": "hp tahan air"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if got := rr.Header().Get("X-Embedding-Tokens"); got != "7" {
		t.Errorf("X-Embedding-Tokens = %q, want 7", got)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	body := decode(t, rr)
	if body["success"] != true || body["status_code"] != float64(200) {
		t.Errorf("envelope = %v", body)
	}
	if body["answer"] != "Ada, harganya Rp1.299.000" {
		t.Errorf("answer = %v", body["answer"])
	}
	sources, _ := body["sources"].([]any)
	if len(sources) != 1 {
		t.Fatalf("sources = %v", body["sources"])
	}
}

func TestRetrieve_PassesTopK(t *testing.T) {
	env := newEnv(t)
	env.chat.passages = []domain.RetrievedPassage{{Position: 2, ProductID: 3, Text: "x", Score: 0.5}}

	rr := env.do(t, http.MethodPost, "/api/retrieve", env.token(t, auth.RoleAdmin),
		map[string]any{"query": "phone", "top_k": 3})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if env.chat.gotK != 3 {
		t.Errorf("k = %d, want 3", env.chat.gotK)
	}
	if got := rr.Header().Get("X-Embedding-Cache-Hits"); got != "1" {
		t.Errorf("X-Embedding-Cache-Hits = %q, want 1", got)
	}
}

func TestQuery_BadBody(t *testing.T) {
	env := newEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString("{"))
	req.Header.Set("Authorization", "Bearer "+env.token(t, auth.RoleCustomer))
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if body := decode(t, rr); body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrIndexUnavailable, http.StatusServiceUnavailable},
		{domain.NewModelMismatch("a", "b"), http.StatusServiceUnavailable},
		{fmt.Errorf("embed: %w", domain.ErrEmbeddingProviderError), http.StatusBadGateway},
		{domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired},
		{domain.ErrInvalidArgument, http.StatusBadRequest},
		{domain.ErrGenerationFailed, http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			env := newEnv(t)
			env.chat.err = tt.err
			rr := env.do(t, http.MethodPost, "/api/query", env.token(t, auth.RoleCustomer), map[string]string{"query": "x"})
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestErrorMapping_HidesInternalDetail(t *testing.T) {
	env := newEnv(t)
	env.chat.err = fmt.Errorf("%w: dial tcp 10.0.0.3:443", domain.ErrEmbeddingProviderError)

	rr := env.do(t, http.MethodPost, "/api/query", env.token(t, auth.RoleCustomer), map[string]string{"query": "x"})
	if msg := decode(t, rr)["message"]; msg != domain.ErrEmbeddingProviderError.Error() {
		t.Errorf("message = %v", msg)
	}
}

func TestAuth(t *testing.T) {
	env := newEnv(t)
	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		UserID: 1,
		Role:   auth.RoleCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "catalograg",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"missing header", "/api/query", "", http.StatusUnauthorized},
		{"basic scheme", "/api/query", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"garbage token", "/api/query", "Bearer nope", http.StatusUnauthorized},
		{"expired token", "/api/query", "Bearer " + stale, http.StatusUnauthorized},
		{"customer on admin route", "/api/admin/rag-config", "Bearer " + env.token(t, auth.RoleCustomer), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodPost
			if tt.path == "/api/admin/rag-config" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, tt.path, bytes.NewBufferString(`{"query":"x"}`))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			env.handler.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestPublicRoutes(t *testing.T) {
	env := newEnv(t)
	env.index.status = retrieveruc.Status{Loaded: true, BuildID: "b1", Model: "hashing", Count: 3, Dimension: 64}

	for _, path := range []string{"/health", "/metrics", "/api/status"} {
		rr := env.do(t, http.MethodGet, path, "", nil)
		if rr.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rr.Code)
		}
	}

	rr := env.do(t, http.MethodGet, "/api/status", "", nil)
	body := decode(t, rr)
	idx, _ := body["index"].(map[string]any)
	if idx["build_id"] != "b1" || idx["passages"] != float64(3) {
		t.Errorf("index = %v", body["index"])
	}
}

func TestHealth_Degraded503(t *testing.T) {
	health := fakeHealth{report: healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{
		"index": healthuc.CheckError,
	}}}
	srv := NewServer(&fakeChat{}, &fakeConfig{}, nil, &fakeIndex{}, health, usageuc.New(nil))
	h := NewRouter(srv, auth.NewManager("s", "", time.Hour), zap.NewNop())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rr.Code)
	}
}

func TestRAGConfig_GetAndUpdate(t *testing.T) {
	env := newEnv(t)
	admin := env.token(t, auth.RoleAdmin)

	rr := env.do(t, http.MethodGet, "/api/admin/rag-config", admin, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}
	cfg, _ := decode(t, rr)["config"].(map[string]any)
	if cfg["top_k_retrieval"] != float64(domain.DefaultTopK) {
		t.Errorf("config = %v", cfg)
	}

	update := domain.DefaultRAGConfig()
	update.TopKRetrieval = 8
	rr = env.do(t, http.MethodPut, "/api/admin/rag-config", admin, update)
	if rr.Code != http.StatusOK {
		t.Fatalf("put status = %d, body = %s", rr.Code, rr.Body)
	}
	if env.config.updated == nil || env.config.updated.TopKRetrieval != 8 {
		t.Errorf("update not applied: %+v", env.config.updated)
	}

	update.TopKRetrieval = 0
	rr = env.do(t, http.MethodPut, "/api/admin/rag-config", admin, update)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid update status = %d, want 400", rr.Code)
	}
}

func TestReindex(t *testing.T) {
	env := newEnv(t)
	env.indexer.report = indexeruc.Report{BuildID: "b2", Passages: 10, Dimension: 64}

	rr := env.do(t, http.MethodPost, "/api/admin/reindex", env.token(t, auth.RoleAdmin), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if env.index.reloads != 1 {
		t.Errorf("reloads = %d, want 1", env.index.reloads)
	}
	if body := decode(t, rr); body["build_id"] != "b2" {
		t.Errorf("build_id = %v", body["build_id"])
	}
}

func TestReindex_RunningIs409(t *testing.T) {
	env := newEnv(t)
	env.indexer.running = true

	rr := env.do(t, http.MethodPost, "/api/admin/reindex", env.token(t, auth.RoleAdmin), nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	if env.indexer.builds != 0 {
		t.Error("build should not start while another is running")
	}
}

func TestReindex_FailureIs500AndSkipsReload(t *testing.T) {
	env := newEnv(t)
	env.indexer.err = fmt.Errorf("%w: %w", domain.ErrIndexBuildFailed, domain.ErrEmbeddingProviderError)

	rr := env.do(t, http.MethodPost, "/api/admin/reindex", env.token(t, auth.RoleAdmin), nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if env.index.reloads != 0 {
		t.Error("reload should not run after a failed build")
	}
}

func TestRecoverer_ReturnsJSON(t *testing.T) {
	h := JSONRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}

func TestUsage(t *testing.T) {
	env := newEnv(t)
	admin := env.token(t, auth.RoleAdmin)

	rr := env.do(t, http.MethodGet, "/api/admin/usage?period=day", admin, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	body := decode(t, rr)
	if body["tokens_used"] != float64(250) || body["tokens_remaining"] != float64(750) {
		t.Errorf("usage = %v", body)
	}

	rr = env.do(t, http.MethodGet, "/api/admin/usage?period=year", admin, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad period status = %d, want 400", rr.Code)
	}
}

func TestBearerAuth_UsesOperationScopes(t *testing.T) {
	tokens := auth.NewManager("test-secret", "catalograg", time.Hour)
	var claims *auth.Claims
	h := BearerAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = ClaimsFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	serve := func(scopes []string, role auth.Role) int {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		if scopes != nil {
			req = req.WithContext(context.WithValue(req.Context(), gen.BearerAuthScopes, scopes))
		}
		if role != "" {
			tok, err := tokens.Issue(7, role)
			if err != nil {
				t.Fatal(err)
			}
			req.Header.Set("Authorization", "Bearer "+tok)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := serve(nil, ""); code != http.StatusNoContent {
		t.Errorf("public operation: status = %d", code)
	}
	if code := serve([]string{"admin"}, ""); code != http.StatusUnauthorized {
		t.Errorf("secured without token: status = %d, want 401", code)
	}
	if code := serve([]string{"admin"}, auth.RoleCustomer); code != http.StatusForbidden {
		t.Errorf("customer on admin scope: status = %d, want 403", code)
	}
	if code := serve([]string{"customer", "admin"}, auth.RoleAdmin); code != http.StatusNoContent {
		t.Errorf("admin on shared scope: status = %d", code)
	}
	if claims == nil || claims.UserID != 7 {
		t.Errorf("claims not stored: %+v", claims)
	}
}

func TestUsage_DefaultPeriodAndUnknownRoute(t *testing.T) {
	env := newEnv(t)
	admin := env.token(t, auth.RoleAdmin)

	rr := env.do(t, http.MethodGet, "/api/admin/usage", admin, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if body := decode(t, rr); body["period"] != "day" {
		t.Errorf("period = %v, want day", body["period"])
	}

	rr = env.do(t, http.MethodGet, "/api/admin/nope", admin, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d, want 404", rr.Code)
	}
}
