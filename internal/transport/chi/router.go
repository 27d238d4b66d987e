package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/catalograg/internal/logger"
	"github.com/kailas-cloud/catalograg/internal/metrics"
	gen "github.com/kailas-cloud/catalograg/internal/transport/generated"
)

// NewRouter mounts the generated API on a chi router with the standard
// middleware stack. Per-operation roles come from the OpenAPI security
// requirements.
func NewRouter(s *Server, verifier TokenVerifier, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(log))
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	gen.HandlerWithOptions(s, gen.ChiServerOptions{
		BaseRouter:  r,
		Middlewares: []gen.MiddlewareFunc{BearerAuth(verifier)},
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.FromContext(r.Context()).Warn("invalid request parameters", zap.Error(err))
			writeError(w, http.StatusBadRequest, "invalid request")
		},
	})

	return r
}
