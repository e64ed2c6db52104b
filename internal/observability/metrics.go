// Package observability owns the Prometheus collectors of the training API.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Request surfaces used as the "surface" label.
const (
	SurfacePublic  = "public"
	SurfaceFresher = "fresher"
	SurfaceAdmin   = "admin"
)

var (
	registerOnce sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	quizSessionsStarted prometheus.Counter
	quizSessionsEnded   *prometheus.CounterVec
	quizScorePercent    prometheus.Histogram
	quizStreamClients   prometheus.Gauge
	quizEventsPublished *prometheus.CounterVec
	cacheLookupsTotal   *prometheus.CounterVec
)

// RegisterMetrics creates and registers every collector once per process.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "training",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by surface, route and status.",
		}, []string{"surface", "method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "training",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by surface and route.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"surface", "method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "training",
			Name:      "http_errors_total",
			Help:      "HTTP responses with a 4xx or 5xx status.",
		}, []string{"surface", "method", "route", "status"})

		quizSessionsStarted = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "training",
			Name:      "quiz_sessions_started_total",
			Help:      "Quiz sessions started.",
		})

		quizSessionsEnded = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "training",
			Name:      "quiz_sessions_completed_total",
			Help:      "Quiz sessions finished, by completion reason.",
		}, []string{"reason"})

		quizScorePercent = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "training",
			Name:      "quiz_score_percent",
			Help:      "Normalised score of finished quiz sessions.",
			Buckets:   []float64{20, 40, 60, 70, 80, 90, 100},
		})

		quizStreamClients = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "training",
			Name:      "quiz_stream_clients",
			Help:      "Websocket clients following a quiz session.",
		})

		quizEventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "training",
			Name:      "quiz_events_published_total",
			Help:      "quiz.completed events published, by transport and outcome.",
		}, []string{"transport", "outcome"})

		cacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "training",
			Name:      "cache_lookups_total",
			Help:      "Redis cache lookups by cache name and outcome.",
		}, []string{"cache", "outcome"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			quizSessionsStarted,
			quizSessionsEnded,
			quizScorePercent,
			quizStreamClients,
			quizEventsPublished,
			cacheLookupsTotal,
		)
	})
}

// HTTPRequests counts served requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency observes request latency.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors counts error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

func QuizSessionsStarted() prometheus.Counter {
	RegisterMetrics()
	return quizSessionsStarted
}

// QuizSessionsCompleted is labelled by submitted, timeout or abandoned.
func QuizSessionsCompleted() *prometheus.CounterVec {
	RegisterMetrics()
	return quizSessionsEnded
}

func QuizScorePercent() prometheus.Histogram {
	RegisterMetrics()
	return quizScorePercent
}

func QuizStreamClients() prometheus.Gauge {
	RegisterMetrics()
	return quizStreamClients
}

// QuizEventsPublished is labelled by transport (local, nats, redis) and outcome (ok, error).
func QuizEventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return quizEventsPublished
}

func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookupsTotal
}
