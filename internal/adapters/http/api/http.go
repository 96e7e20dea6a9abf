// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/flowfit/internal/adapters/http/swagger"
	"github.com/okian/flowfit/internal/adapters/interchange"
	"github.com/okian/flowfit/internal/adapters/repository"
	service "github.com/okian/flowfit/internal/app"
	"github.com/okian/flowfit/internal/domain/model"
	"github.com/okian/flowfit/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Evaluate(ctx context.Context, p model.Profile) (service.Evaluation, error)
	Submit(ctx context.Context, p model.Profile, key string) (repository.Submission, error)
	Submission(ctx context.Context, id string) (repository.Submission, error)
	TeamReport(ctx context.Context) (service.TeamAnalysis, error)
	TeamReportFrom(ctx context.Context, profiles []model.Profile) (service.TeamAnalysis, error)
	Export(ctx context.Context, f interchange.Format, w io.Writer) error
	Catalog() (service.CatalogView, error)
	GetStats(ctx context.Context) map[string]any
}

// Server wires HTTP routes for the flow-fit API.
type Server struct {
	deps           Dependencies
	maxUploadBytes int64
	corsOrigins    []string
	logger         logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxUploadBytes caps request bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
func WithCORSOrigins(origins []string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.corsOrigins = origins
		}
	}
}

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		maxUploadBytes: 4 << 20,
		corsOrigins:    []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("api")
	}
	return s
}

// Routes returns the router with every endpoint registered.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Idempotency-Key"},
		ExposedHeaders: []string{"Content-Length", "Location"},
		MaxAge:         300,
	}))

	swagger.Register(r)
	r.Get("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	r.Handle("/metrics", metricsHandler())
	r.Get("/stats", MetricsMiddleware(s.handleStats, "stats"))
	r.Get("/catalog", MetricsMiddleware(s.handleCatalog, "catalog"))
	r.Post("/evaluate", MetricsMiddleware(s.handleEvaluate, "evaluate"))

	r.Route("/submissions", func(r chi.Router) {
		r.Post("/", MetricsMiddleware(s.handleSubmit, "submissions"))
		r.Get("/export", MetricsMiddleware(s.handleExport, "submissions_export"))
		r.Get("/{id}", MetricsMiddleware(s.handleGetSubmission, "submission"))
	})

	r.Route("/team", func(r chi.Router) {
		r.Get("/", MetricsMiddleware(s.handleTeam, "team"))
		r.Post("/evaluate", MetricsMiddleware(s.handleTeamUpload, "team_evaluate"))
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, text)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail maps err to a status code and error code and writes it.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
	}
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, interchange.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "unsupported_format"
	case model.IsInvalidInput(err),
		errors.Is(err, interchange.ErrMalformed),
		errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, model.ErrEmptySnapshot):
		return http.StatusUnprocessableEntity, "empty_snapshot"
	case errors.Is(err, service.ErrDuplicateSubmission):
		return http.StatusConflict, "duplicate"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// wantsText reports whether the client asked for the plain text report.
func wantsText(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "text") {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(r.Header.Get("Accept")), "text/plain")
}
