package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120, 300},
		},
		[]string{"route", "method"},
	)

	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of text-generation requests by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "Text-generation request duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"operation"},
	)
	AIPromptTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_prompt_tokens_total",
			Help: "Estimated prompt tokens sent by operation",
		},
		[]string{"operation"},
	)

	CallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_callbacks_total",
			Help: "Completion callbacks by outcome",
		},
		[]string{"outcome"},
	)
	EvaluationsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "interview_evaluations_in_flight",
			Help: "Evaluations currently claimed by this process",
		},
	)
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_evaluations_total",
			Help: "Evaluation transitions by resulting status",
		},
		[]string{"status"},
	)
	DegradedStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_evaluation_degraded_total",
			Help: "Steps that fell back to a default value, by stage",
		},
		[]string{"stage"},
	)
	RecommendationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interview_recommendations_total",
			Help: "Completed evaluations by recommendation tier",
		},
		[]string{"recommendation"},
	)
	OverallScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_overall_score",
			Help:    "Distribution of overall scores ([0,100])",
			Buckets: []float64{10, 20, 30, 35, 40, 50, 60, 65, 70, 75, 80, 90, 100},
		},
	)
	EvaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interview_evaluation_duration_seconds",
			Help:    "Wall time of one evaluation attempt",
			Buckets: []float64{5, 10, 20, 40, 60, 120, 180, 300},
		},
	)

	initOnce sync.Once
)

// InitMetrics registers collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(AIRequestsTotal)
		prometheus.MustRegister(AIRequestDuration)
		prometheus.MustRegister(AIPromptTokens)
		prometheus.MustRegister(CallbacksTotal)
		prometheus.MustRegister(EvaluationsInFlight)
		prometheus.MustRegister(EvaluationsTotal)
		prometheus.MustRegister(DegradedStepsTotal)
		prometheus.MustRegister(RecommendationsTotal)
		prometheus.MustRegister(OverallScoreHistogram)
		prometheus.MustRegister(EvaluationDuration)
	})
}

// HTTPMetricsMiddleware records Prometheus metrics for each request.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start).Seconds()
		// Route pattern may be unavailable outside chi router; guard nil
		var route string
		if rc := chi.RouteContext(r.Context()); rc != nil {
			route = rc.RoutePattern()
		}
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, http.StatusText(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(dur)
	})
}

// ObserveAIRequest records one text-generation call.
func ObserveAIRequest(operation, outcome string, dur time.Duration, promptTokens int) {
	AIRequestsTotal.WithLabelValues(operation, outcome).Inc()
	AIRequestDuration.WithLabelValues(operation).Observe(dur.Seconds())
	if promptTokens > 0 {
		AIPromptTokens.WithLabelValues(operation).Add(float64(promptTokens))
	}
}

// RecordCallback counts a completion callback by how it was handled.
func RecordCallback(outcome string) {
	CallbacksTotal.WithLabelValues(outcome).Inc()
}

// QueueEvaluation counts an interview entering the queue.
func QueueEvaluation() {
	EvaluationsTotal.WithLabelValues("queued").Inc()
}

// StartEvaluation marks a claimed attempt as running.
func StartEvaluation() {
	EvaluationsInFlight.Inc()
	EvaluationsTotal.WithLabelValues("claimed").Inc()
}

// CompleteEvaluation closes a running attempt successfully.
func CompleteEvaluation(recommendation string, overall int, dur time.Duration) {
	EvaluationsInFlight.Dec()
	EvaluationsTotal.WithLabelValues("completed").Inc()
	RecommendationsTotal.WithLabelValues(recommendation).Inc()
	if overall >= 0 && overall <= 100 {
		OverallScoreHistogram.Observe(float64(overall))
	}
	EvaluationDuration.Observe(dur.Seconds())
}

// FailEvaluation closes a running attempt with an error.
func FailEvaluation(dur time.Duration) {
	EvaluationsInFlight.Dec()
	EvaluationsTotal.WithLabelValues("failed").Inc()
	EvaluationDuration.Observe(dur.Seconds())
}

// ExpireEvaluations counts claims failed by the stale-claim sweeper.
func ExpireEvaluations(n int) {
	if n > 0 {
		EvaluationsTotal.WithLabelValues("expired").Add(float64(n))
	}
}

// RecordDegraded counts a step that substituted a default.
func RecordDegraded(stage string) {
	DegradedStepsTotal.WithLabelValues(stage).Inc()
}
