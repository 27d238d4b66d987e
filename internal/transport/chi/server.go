package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/domain"
	"github.com/kailas-cloud/catalograg/internal/logger"
	gen "github.com/kailas-cloud/catalograg/internal/transport/generated"
	healthuc "github.com/kailas-cloud/catalograg/internal/usecase/health"
	usageuc "github.com/kailas-cloud/catalograg/internal/usecase/usage"
	"github.com/kailas-cloud/catalograg/internal/version"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server implements generated.ServerInterface for the oapi-codegen chi router.
type Server struct {
	gen.Unimplemented
	chat          Chat
	config        RAGConfigStore
	indexer       Indexer
	index         Index
	health        HealthChecker
	usage         UsageReporter
	errorHandlers []errorHandler
}

var _ gen.ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server. indexer may be nil, in which case
// reindex requests are rejected.
func NewServer(
	chat Chat,
	config RAGConfigStore,
	indexer Indexer,
	index Index,
	health HealthChecker,
	usage UsageReporter,
) *Server {
	return &Server{
		chat:    chat,
		config:  config,
		indexer: indexer,
		index:   index,
		health:  health,
		usage:   usage,
		errorHandlers: []errorHandler{
			sentinelHandler(domain.ErrIndexBuildFailed, http.StatusInternalServerError, ""),
			sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, "index temporarily unavailable"),
			sentinelHandler(domain.ErrModelMismatch, http.StatusServiceUnavailable, "index temporarily unavailable"),
			sentinelHandler(domain.ErrEmbeddingQuotaExceeded, http.StatusPaymentRequired, ""),
			sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ""),
			sentinelHandler(domain.ErrGenerationFailed, http.StatusBadGateway, ""),
			sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ""),
			sentinelHandler(domain.ErrInvalidConfig, http.StatusBadRequest, ""),
			sentinelHandler(domain.ErrIndexBuildInProgress, http.StatusConflict, ""),
			sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, ""),
			sentinelHandler(domain.ErrForbidden, http.StatusForbidden, ""),
			sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ""),
		},
	}
}

// GetStatus handles GET /api/status.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	st := s.index.Status()
	idx := gen.IndexStatus{
		Loaded:    st.Loaded,
		Passages:  st.Count,
		Dimension: st.Dimension,
	}
	if st.BuildID != "" {
		idx.BuildId = &st.BuildID
	}
	if st.Model != "" {
		idx.Model = &st.Model
	}
	if !st.CreatedAt.IsZero() {
		created := st.CreatedAt.UTC()
		idx.CreatedAt = &created
	}
	writeJSON(w, http.StatusOK, gen.StatusResponse{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    "Ready to process query.",
		Status:     "RAG Chatbot API is running.",
		Version:    version.Version,
		Index:      idx,
	})
}

// Query handles POST /api/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	var req gen.QueryJSONRequestBody
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx, usage := domain.ContextWithUsage(r.Context())
	answer, err := s.chat.Ask(ctx, req.Query)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, gen.QueryResponse{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    "Successfully generated answer",
		Answer:     answer.Text,
		Sources:    passagesToGen(answer.Passages),
	})
}

// Retrieve handles POST /api/retrieve.
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	var req gen.RetrieveJSONRequestBody
	if !decodeJSON(w, r, &req) {
		return
	}
	k := 0
	if req.TopK != nil {
		k = *req.TopK
	}

	ctx, usage := domain.ContextWithUsage(r.Context())
	passages, err := s.chat.Retrieve(ctx, req.Query, k)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, gen.RetrieveResponse{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    "Successfully retrieved passages",
		Passages:   passagesToGen(passages),
	})
}

// GetRAGConfig handles GET /api/admin/rag-config.
func (s *Server) GetRAGConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.config.Get(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, gen.RAGConfigResponse{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    "RAG configuration",
		Config:     ragConfigToGen(cfg),
	})
}

// UpdateRAGConfig handles PUT /api/admin/rag-config.
func (s *Server) UpdateRAGConfig(w http.ResponseWriter, r *http.Request) {
	var req gen.UpdateRAGConfigJSONRequestBody
	if !decodeJSON(w, r, &req) {
		return
	}
	cfg := ragConfigFromGen(req)
	if err := s.config.Update(r.Context(), cfg); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("RAG configuration updated",
		zap.Int("top_k_retrieval", cfg.TopKRetrieval),
	)
	writeJSON(w, http.StatusOK, gen.RAGConfigResponse{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    "RAG configuration updated",
		Config:     req,
	})
}

// Reindex handles POST /api/admin/reindex. The build runs in the request
// and the new build is loaded before responding.
func (s *Server) Reindex(w http.ResponseWriter, r *http.Request) {
	if s.indexer == nil {
		writeError(w, http.StatusServiceUnavailable, "indexing is disabled on this instance")
		return
	}
	if s.indexer.Running() {
		s.handleDomainError(w, r, domain.ErrIndexBuildInProgress)
		return
	}

	ctx, usage := domain.ContextWithUsage(r.Context())
	report, err := s.indexer.Build(ctx)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if err := s.index.Reload(ctx); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := gen.ReindexResponse{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    "Index rebuilt",
		BuildId:    report.BuildID,
		Passages:   report.Passages,
		Dimension:  report.Dimension,
		Tokens:     report.Tokens,
		DurationMs: report.Duration.Milliseconds(),
	}
	if len(report.OverBudget) > 0 {
		resp.OverBudget = &report.OverBudget
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetUsage handles GET /api/admin/usage?period=day|month.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request, params gen.GetUsageParams) {
	var raw string
	if params.Period != nil {
		raw = string(*params.Period)
	}
	period, err := usageuc.ParsePeriod(raw)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	rep := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, gen.UsageResponse{
		Success:         true,
		StatusCode:      http.StatusOK,
		Message:         "Embedding usage",
		Period:          string(rep.Period),
		PeriodStart:     rep.Start,
		PeriodEnd:       rep.End,
		TokensLimit:     rep.Limit,
		TokensUsed:      rep.Used,
		TokensRemaining: rep.Remaining,
		Exhausted:       rep.Exhausted,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, gen.HealthResponse{Status: gen.HealthResponseStatus(report.Status), Checks: checks})
}

func passagesToGen(passages []domain.RetrievedPassage) []gen.Passage {
	out := make([]gen.Passage, len(passages))
	for i, p := range passages {
		out[i] = gen.Passage{Position: p.Position, ProductId: p.ProductID, Text: p.Text, Score: p.Score}
	}
	return out
}

func ragConfigToGen(c domain.RAGConfig) gen.RAGConfig {
	return gen.RAGConfig{
		MainInstruction:      c.MainInstruction,
		CriticalInstruction:  c.CriticalInstruction,
		AdditionalGuideline:  c.AdditionalGuideline,
		RetrieverInstruction: c.RetrieverInstruction,
		TopKRetrieval:        c.TopKRetrieval,
	}
}

func ragConfigFromGen(c gen.RAGConfig) domain.RAGConfig {
	return domain.RAGConfig{
		MainInstruction:      c.MainInstruction,
		CriticalInstruction:  c.CriticalInstruction,
		AdditionalGuideline:  c.AdditionalGuideline,
		RetrieverInstruction: c.RetrieverInstruction,
		TopKRetrieval:        c.TopKRetrieval,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.RequestUsage) {
	if usage == nil {
		return
	}
	if usage.EmbeddingTokens > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.CacheHits > 0 {
		w.Header().Set("X-Embedding-Cache-Hits", strconv.Itoa(usage.CacheHits))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, gen.Envelope{StatusCode: status, Message: message})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// An empty message exposes the sentinel text only, never the wrapped detail.
func sentinelHandler(sentinel error, status int, message string) errorHandler {
	if message == "" {
		message = sentinel.Error()
	}
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			if errors.Is(err, domain.ErrModelMismatch) {
				log.Error("Index model mismatch", zap.Error(err))
			} else {
				log.Warn("domain error", zap.Error(err))
			}
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
