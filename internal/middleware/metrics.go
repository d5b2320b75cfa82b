package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "judge_companion_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"route", "method", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "judge_companion_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// Chat metrics
	chatTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "judge_companion_chat_turns_total",
		Help: "Total number of chat turns by outcome",
	}, []string{"outcome"})

	cooldownRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "judge_companion_cooldown_rejections_total",
		Help: "Total number of chat requests rejected by the per-session cooldown",
	})

	throughputRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "judge_companion_throughput_rejections_total",
		Help: "Total number of chat requests rejected by the global throughput guard",
	})

	// Provider metrics
	providerRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "judge_companion_provider_request_duration_seconds",
		Help:    "Duration of LLM provider requests",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"provider", "purpose", "status"})

	providerRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "judge_companion_provider_requests_total",
		Help: "Total number of LLM provider requests",
	}, []string{"provider", "purpose", "status"})

	// Analytics / speech metrics
	analyticsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "judge_companion_analytics_total",
		Help: "Case analytics attempts by result",
	}, []string{"result"})

	speechTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "judge_companion_speech_requests_total",
		Help: "Speech synthesis requests by status",
	}, []string{"status"})
)

// Metrics provides methods to record metrics
type Metrics struct{}

// NewMetrics creates a new metrics instance
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordChatTurn records the outcome of one POST /api/chat
func (m *Metrics) RecordChatTurn(outcome string) {
	chatTurnsTotal.WithLabelValues(outcome).Inc()
}

// RecordCooldownRejected records a per-session cooldown rejection
func (m *Metrics) RecordCooldownRejected() {
	cooldownRejections.Inc()
}

// RecordThroughputRejected records a global throughput rejection
func (m *Metrics) RecordThroughputRejected() {
	throughputRejections.Inc()
}

// RecordProviderCall records one LLM provider request
func (m *Metrics) RecordProviderCall(provider, purpose, status string, duration time.Duration) {
	providerRequestDuration.WithLabelValues(provider, purpose, status).Observe(duration.Seconds())
	providerRequestsTotal.WithLabelValues(provider, purpose, status).Inc()
}

// RecordAnalytics records an analytics attempt result
func (m *Metrics) RecordAnalytics(result string) {
	analyticsTotal.WithLabelValues(result).Inc()
}

// RecordSpeech records a speech synthesis attempt
func (m *Metrics) RecordSpeech(status string) {
	speechTotal.WithLabelValues(status).Inc()
}

// HTTPMetrics 记录每个路由的请求量与耗时，路由使用 chi 的路由模板避免高基数。
func HTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// NewMetricsServer 创建独立的指标服务（/metrics 与 /health）。
func NewMetricsServer(addr string) *http.Server {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	return &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
