package telemetry

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	httpDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	AnswersSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "questionnaire_answers_total",
			Help: "Answers submitted, by outcome",
		},
		[]string{"outcome"},
	)
	SessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "questionnaire_sessions_started_total",
		Help: "Questionnaire sessions started",
	})
	SessionsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "questionnaire_sessions_completed_total",
		Help: "Questionnaire sessions that reached the end of the catalog",
	})
	EligibilityChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eligibility_checks_total",
			Help: "Scheme eligibility checks, by verdict",
		},
		[]string{"verdict"},
	)
	CriteriaClassified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "criteria_classified_total",
			Help: "Eligibility criteria seen by the classifier, by outcome",
		},
		[]string{"outcome"},
	)
	LoadedSchemes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loaded_schemes",
		Help: "Number of compiled schemes currently cached",
	})
	WSClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ws_clients",
		Help: "Number of currently connected websocket clients",
	})

	initOnce sync.Once
)

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			httpReqs, httpDur,
			AnswersSubmitted, SessionsStarted, SessionsCompleted,
			EligibilityChecks, CriteriaClassified, LoadedSchemes, WSClients,
		)
	})
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(ww, r)

		// route pattern is only known after routing
		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		httpReqs.WithLabelValues(route, r.Method, http.StatusText(ww.status)).Inc()
		httpDur.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets websocket upgrades pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
