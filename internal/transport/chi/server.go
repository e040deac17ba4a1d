// Package chi serves the lifeos HTTP API on a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lifeos/internal/domain"
	healthuc "github.com/kailas-cloud/lifeos/internal/usecase/health"
)

// maxBodyBytes bounds request bodies; entry content alone may be 160KB.
const maxBodyBytes = 1 << 20

// Error codes returned in the "code" field of error responses.
const (
	codeBadRequest             = "bad_request"
	codeValidationFailed       = "validation_failed"
	codeUnauthorized           = "unauthorized"
	codeNotFound               = "not_found"
	codeEmbeddingQuotaExceeded = "embedding_quota_exceeded"
	codeRateLimited            = "rate_limited"
	codeEmbeddingProviderError = "embedding_provider_error"
	codeEmbeddingUnavailable   = "embedding_unavailable"
	codeInternalError          = "internal_error"
)

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Deps are the services the API is built on. Hub may be nil to disable /ws.
type Deps struct {
	Auth    Authenticator
	Journal JournalService
	Search  Searcher
	Autotag Tagger
	Export  Exporter
	Usage   UsageReporter
	Health  HealthChecker
	Hub     ClientHub
}

// Server holds the HTTP handlers.
type Server struct {
	auth     Authenticator
	journal  JournalService
	searcher Searcher
	tagger   Tagger
	exporter Exporter
	usage    UsageReporter
	health   HealthChecker
	hub      ClientHub

	publicURL     string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. publicURL is used for links in the Atom feed.
func NewServer(deps Deps, publicURL string, logger *zap.Logger) *Server {
	s := &Server{
		auth:      deps.Auth,
		journal:   deps.Journal,
		searcher:  deps.Search,
		tagger:    deps.Autotag,
		exporter:  deps.Export,
		usage:     deps.Usage,
		health:    deps.Health,
		hub:       deps.Hub,
		publicURL: strings.TrimSuffix(publicURL, "/"),
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrUnauthorized, http.StatusUnauthorized, codeUnauthorized),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrEmbeddingQuotaExceeded,
			http.StatusPaymentRequired, codeEmbeddingQuotaExceeded),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, codeEmbeddingProviderError),
		sentinelHandler(domain.ErrEmbeddingUnavailable,
			http.StatusServiceUnavailable, codeEmbeddingUnavailable),
	}
	return s
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth/google", s.SignIn)

	if s.hub != nil {
		r.With(s.requireUser(true)).Get("/ws/{client_id}", s.Connect)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser(false))

		r.Get("/auth/me", s.Me)

		r.Route("/entries", func(r chi.Router) {
			r.Get("/", s.ListEntries)
			r.Post("/", s.CreateEntry)
			r.Get("/{id}", s.GetEntry)
			r.Put("/{id}", s.UpdateEntry)
			r.Delete("/{id}", s.DeleteEntry)
		})
		r.Route("/habits", func(r chi.Router) {
			r.Get("/", s.ListHabits)
			r.Post("/", s.CreateHabit)
			r.Put("/{id}", s.UpdateHabit)
			r.Delete("/{id}", s.DeleteHabit)
		})
		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", s.ListReminders)
			r.Post("/", s.CreateReminder)
			r.Put("/{id}", s.UpdateReminder)
			r.Delete("/{id}", s.DeleteReminder)
		})
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", s.ListTasks)
			r.Post("/", s.CreateTask)
			r.Put("/{id}", s.UpdateTask)
			r.Delete("/{id}", s.DeleteTask)
		})

		r.Route("/search", func(r chi.Router) { r.Post("/", s.Search) })
		r.Route("/autotag", func(r chi.Router) { r.Post("/", s.Autotag) })

		r.Get("/export/json", s.ExportJSON)
		r.Get("/export/feed.atom", s.ExportAtom)
		r.Get("/usage", s.GetUsage)
	})
}

// Router builds a chi router carrying only the API routes, for embedding under middleware.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeBadRequest, "method not allowed")
	})
	s.Routes(r)
	return r
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": string(report.Status),
		"checks": checks,
	})
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used() {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens()))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// decodeBody reads a bounded JSON body into dst and writes a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// safeDomainMessage returns a client-facing message without exposing internals.
func safeDomainMessage(err error) string {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	sentinels := []error{
		domain.ErrInvalidInput,
		domain.ErrUnauthorized,
		domain.ErrNotFound,
		domain.ErrRateLimited,
		domain.ErrEmbeddingQuotaExceeded,
		domain.ErrEmbeddingProviderError,
		domain.ErrEmbeddingUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			s.logger.Warn("domain error", zap.Error(err))
			return
		}
	}
	if errors.Is(err, domain.ErrVectorDimMismatch) {
		s.logger.Error("embedding dimension mismatch, check the configured model", zap.Error(err))
	} else {
		s.logger.Error("internal error", zap.Error(err))
	}
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
