// Package httpserver exposes the analysis service over HTTP.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appai "github.com/bryanwahyu/deepscan/internal/application/ai"
	"github.com/bryanwahyu/deepscan/internal/domain/analysis"
	"github.com/bryanwahyu/deepscan/internal/domain/analyst"
	"github.com/bryanwahyu/deepscan/internal/domain/failures"
	"github.com/bryanwahyu/deepscan/internal/logging"
	"github.com/bryanwahyu/deepscan/internal/middleware"
)

// genericFailure is the only thing a caller learns about a failed analysis.
const genericFailure = "analysis failed, try again"

// Service is the use-case surface the router needs; *appai.Service
// implements it.
type Service interface {
	Analyze(ctx context.Context, tenant, code, language string) (*analyst.Analysis, error)
	List(ctx context.Context, tenant string, page, pageSize int) ([]*analyst.Analysis, error)
	Get(ctx context.Context, tenant string, id analyst.AnalysisID) (*analyst.Analysis, error)
	ListFailures(ctx context.Context, tenant, analysisID string, limit int) ([]*failures.Failure, error)
	Summary(ctx context.Context, tenant string, days int) (analyst.Summary, error)
}

type Options struct {
	Logger         *zap.Logger
	APIKeys        map[string]string
	CORSOrigins    []string
	RateLimiter    *middleware.RateLimiter
	MaxCodeSize    int
	HealthCheckers map[string]middleware.HealthChecker
}

type Router struct {
	svc    Service
	opts   Options
	logger *zap.Logger
}

func NewRouter(svc Service, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	r := &Router{svc: svc, opts: opts, logger: opts.Logger}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Analysis-ID", "X-Request-Id"},
		MaxAge:         300,
	}))
	mux.Use(middleware.RequestLogger(opts.Logger))
	mux.Use(middleware.MetricsMiddleware)
	if len(opts.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	}
	if opts.RateLimiter != nil {
		mux.Use(opts.RateLimiter.Middleware)
	}

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/healthz", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Use(middleware.RequireValidTenant)
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/analyses", r.wrap(r.handleList))
		rt.Get("/analyses/{id}", r.wrap(r.handleGet))
		rt.Get("/analyses/{id}/failures", r.wrap(r.handleFailures))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br badRequest
		var failed *appai.FailedError
		switch {
		case errors.As(err, &br):
			writeJSON(w, http.StatusBadRequest, errorBody(br.msg))
		case errors.Is(err, analysis.ErrEmptyCode):
			writeJSON(w, http.StatusBadRequest, errorBody("code is required"))
		case errors.As(err, &failed), errors.Is(err, analysis.ErrAnalysisFailed):
			if failed != nil {
				w.Header().Set("X-Analysis-ID", failed.ID)
			}
			writeJSON(w, http.StatusBadGateway, errorBody(genericFailure))
		case errors.Is(err, analyst.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, appai.ErrArchiveDisabled):
			writeJSON(w, http.StatusNotImplemented, errorBody(err.Error()))
		default:
			logging.FromContext(req.Context(), r.logger).Error("request failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
	}
}

func errorBody(msg string) map[string]string { return map[string]string{"error": msg} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// POST /v1/{tenant}/analyze
// Body: {"code": "...", "language": "javascript"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if r.opts.MaxCodeSize > 0 {
		// room for the JSON envelope and escaping
		req.Body = http.MaxBytesReader(w, req.Body, int64(r.opts.MaxCodeSize)*2+4096)
	}
	var body analysis.CodeSubmission
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest{"invalid JSON body"}
	}
	lang := middleware.SanitizeString(body.Language)
	if err := middleware.ValidateLanguage(lang); err != nil {
		return badRequest{err.Error()}
	}
	if err := middleware.ValidateCode(body.Code, r.opts.MaxCodeSize); err != nil {
		return badRequest{err.Error()}
	}

	a, err := r.svc.Analyze(req.Context(), tenant, body.Code, lang)
	if err != nil {
		return err
	}
	w.Header().Set("X-Analysis-ID", string(a.ID))
	writeJSON(w, http.StatusOK, a)
	return nil
}

// GET /v1/{tenant}/analyses?page=&page_size=
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.List(req.Context(), tenant, middleware.ValidatePage(page), middleware.ValidateLimit(size))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*analyst.Analysis{}
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /v1/{tenant}/analyses/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return badRequest{err.Error()}
	}

	a, err := r.svc.Get(req.Context(), tenant, analyst.AnalysisID(id))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, a)
	return nil
}

// GET /v1/{tenant}/analyses/{id}/failures?limit=20
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateAnalysisID(id); err != nil {
		return badRequest{err.Error()}
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.ListFailures(req.Context(), tenant, id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	if list == nil {
		list = []*failures.Failure{}
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.svc.Summary(req.Context(), tenant, middleware.ValidateDays(days))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, summary)
	return nil
}
