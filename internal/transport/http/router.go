package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"scheme-eligibility-service/internal/app"
	"scheme-eligibility-service/internal/domain"
	"scheme-eligibility-service/internal/telemetry"
)

type Server struct {
	service            *app.EligibilityService
	ws                 *WSHandler
	logger             zerolog.Logger
	rateLimitPerMinute int
}

type ServerOption func(*Server)

// WithRateLimit caps requests per client IP per minute. Zero disables it.
func WithRateLimit(perMinute int) ServerOption {
	return func(s *Server) { s.rateLimitPerMinute = perMinute }
}

func WithLogger(logger zerolog.Logger) ServerOption {
	return func(s *Server) { s.logger = logger }
}

func NewServer(service *app.EligibilityService, opts ...ServerOption) *Server {
	s := &Server{service: service, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.ws = NewWSHandler(service, s.logger)
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(telemetry.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", s.ws.ServeWS)

	r.Route("/v1", func(r chi.Router) {
		if s.rateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(s.rateLimitPerMinute, time.Minute))
		}

		r.Get("/catalog", s.handleCatalog)

		r.Post("/sessions", s.handleStart)
		r.Post("/sessions/import", s.handleImport)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/question", s.handleCurrent)
			r.Post("/answers", s.handleSubmit)
			r.Get("/progress", s.handleProgress)
			r.Post("/reset", s.handleReset)
			r.Get("/results", s.handleResults)
			r.Get("/export", s.handleExport)
			r.Delete("/", s.handleEnd)
		})

		r.Get("/schemes", s.handleSchemes)
		r.Get("/schemes/stats", s.handleStats)
		r.Get("/schemes/{name}", s.handleScheme)
	})
	return r
}

// fail logs unexpected errors before rendering them.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := statusFor(err); status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Str("request_id", middleware.GetReqID(r.Context())).Msg("request failed")
	}
	writeError(w, r, err)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.service.Catalog()
	etag := cat.ETag()
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	writeJSON(w, http.StatusOK, map[string]any{
		"questions": cat.Export(),
		"skipped":   cat.Skipped(),
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	turn, err := s.service.Start(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, turn)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	turn, err := s.service.Current(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

type answerRequest struct {
	QuestionID domain.QuestionID `json:"questionId"`
	Value      any               `json:"value"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "invalid JSON")
		return
	}
	turn, err := s.service.Submit(r.Context(), chi.URLParam(r, "id"), req.QuestionID, req.Value)
	if err != nil {
		if turn.SessionID == "" {
			s.fail(w, r, err)
			return
		}
		// rejected: the body still carries the pending question
		status, _ := statusFor(err)
		writeJSON(w, status, turn)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.service.Progress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	turn, err := s.service.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	onlyEligible, _ := strconv.ParseBool(r.URL.Query().Get("eligible"))

	fetch := s.service.Results
	if onlyEligible {
		fetch = s.service.Eligible
	}
	results, err := fetch(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessionId": id, "results": results})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	state, err := s.service.Export(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var state domain.FlowState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		writeErrorResponse(w, r, http.StatusBadRequest, ErrCodeInvalidJSON, "invalid JSON")
		return
	}
	turn, err := s.service.Import(r.Context(), state)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, turn)
}

func (s *Server) handleEnd(w http.ResponseWriter, r *http.Request) {
	if err := s.service.End(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSchemes(w http.ResponseWriter, r *http.Request) {
	schemes, err := s.service.Schemes(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemes": schemes})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleScheme(w http.ResponseWriter, r *http.Request) {
	scheme, err := s.service.Scheme(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scheme)
}
