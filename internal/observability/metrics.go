package observability

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestsActive  prometheus.Gauge

	// Competitor analysis metrics
	ScrapesTotal           *prometheus.CounterVec
	ScrapeDuration         *prometheus.HistogramVec
	AnalysesTotal          *prometheus.CounterVec
	RecommendationsEmitted *prometheus.HistogramVec

	// Strategy parsing metrics
	StrategiesParsedTotal *prometheus.CounterVec

	// LLM API metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration *prometheus.HistogramVec
	LLMTokensUsed      *prometheus.CounterVec
	LLMCacheHits       prometheus.Counter
	LLMCacheMisses     prometheus.Counter

	// Social publishing metrics
	PublishTotal *prometheus.CounterVec
	PollAttempts *prometheus.HistogramVec

	// Influencer search metrics
	SearchRequestsTotal *prometheus.CounterVec

	// System metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
	CacheSize           prometheus.Gauge
	GoroutinesActive    prometheus.Gauge
}

// NewMetrics creates a new metrics instance with all Prometheus metrics registered
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "brandpulse"
	}

	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_active",
				Help:      "Number of active HTTP requests",
			},
		),

		// Competitor analysis metrics
		ScrapesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scrapes_total",
				Help:      "Total number of competitor scrape attempts",
			},
			[]string{"mode", "status"}, // mode: live, mock; status: ok, error
		),
		ScrapeDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scrape_duration_seconds",
				Help:      "Competitor scrape duration in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 15, 30},
			},
			[]string{"mode"},
		),
		AnalysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of competitor analyses",
			},
			[]string{"source"}, // source: explicit, discovered
		),
		RecommendationsEmitted: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "recommendations_emitted",
				Help:      "Number of recommendations produced per analysis",
				Buckets:   []float64{0, 1, 2, 3, 4, 5, 6},
			},
			[]string{"source"},
		),

		// Strategy parsing metrics
		StrategiesParsedTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "strategies_parsed_total",
				Help:      "Total number of strategies parsed",
			},
			[]string{"source", "confidence"}, // source: llm, fallback
		),

		// LLM API metrics
		LLMRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_requests_total",
				Help:      "Total number of LLM API requests",
			},
			[]string{"model", "purpose", "status"},
		),
		LLMRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "llm_request_duration_seconds",
				Help:      "LLM API request duration in seconds",
				Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"model", "purpose"},
		),
		LLMTokensUsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_tokens_used_total",
				Help:      "Total number of tokens used",
			},
			[]string{"model", "type"}, // type: input, output
		),
		LLMCacheHits: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_cache_hits_total",
				Help:      "Total number of cache hits",
			},
		),
		LLMCacheMisses: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "llm_cache_misses_total",
				Help:      "Total number of cache misses",
			},
		),

		// Social publishing metrics
		PublishTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "social_publish_total",
				Help:      "Total number of social publish attempts",
			},
			[]string{"platform", "status"},
		),
		PollAttempts: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "social_poll_attempts",
				Help:      "Poll attempts needed for media processing to finish",
				Buckets:   []float64{1, 2, 3, 5, 8, 10, 15},
			},
			[]string{"platform"},
		),

		// Influencer search metrics
		SearchRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_requests_total",
				Help:      "Total number of influencer search requests",
			},
			[]string{"provider", "status"},
		),

		// System metrics
		DBConnectionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_active",
				Help:      "Number of active database connections",
			},
		),
		DBConnectionsIdle: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "db_connections_idle",
				Help:      "Number of idle database connections",
			},
		),
		CacheSize: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_size",
				Help:      "Current cache size (number of entries)",
			},
		),
		GoroutinesActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "goroutines_active",
				Help:      "Number of active goroutines",
			},
		),
	}

	return m
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records HTTP request metrics
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordScrape records a single competitor scrape attempt
func (m *Metrics) RecordScrape(mode, status string, duration time.Duration) {
	m.ScrapesTotal.WithLabelValues(mode, status).Inc()
	m.ScrapeDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

// RecordAnalysis records an assembled competitor analysis
func (m *Metrics) RecordAnalysis(source string, recommendations int) {
	m.AnalysesTotal.WithLabelValues(source).Inc()
	m.RecommendationsEmitted.WithLabelValues(source).Observe(float64(recommendations))
}

// RecordStrategyParse records a parsed campaign strategy
func (m *Metrics) RecordStrategyParse(source, confidence string) {
	m.StrategiesParsedTotal.WithLabelValues(source, confidence).Inc()
}

// RecordLLMRequest records LLM API metrics
func (m *Metrics) RecordLLMRequest(model, purpose, status string, duration time.Duration, inputTokens, outputTokens int) {
	m.LLMRequestsTotal.WithLabelValues(model, purpose, status).Inc()
	m.LLMRequestDuration.WithLabelValues(model, purpose).Observe(duration.Seconds())
	m.LLMTokensUsed.WithLabelValues(model, "input").Add(float64(inputTokens))
	m.LLMTokensUsed.WithLabelValues(model, "output").Add(float64(outputTokens))
}

// RecordPublish records a social publish attempt
func (m *Metrics) RecordPublish(platform, status string) {
	m.PublishTotal.WithLabelValues(platform, status).Inc()
}

// RecordPollAttempts records how many polls media processing needed
func (m *Metrics) RecordPollAttempts(platform string, attempts int) {
	m.PollAttempts.WithLabelValues(platform).Observe(float64(attempts))
}

// RecordSearch records an influencer search request
func (m *Metrics) RecordSearch(provider, status string) {
	m.SearchRequestsTotal.WithLabelValues(provider, status).Inc()
}

// StartSystemCollector samples the connection pool and runtime gauges on an
// interval until ctx is cancelled. db may be nil.
func (m *Metrics) StartSystemCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.SampleSystem(db)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// SampleSystem takes a single gauge sample
func (m *Metrics) SampleSystem(db *sql.DB) {
	if db != nil {
		stats := db.Stats()
		m.DBConnectionsActive.Set(float64(stats.InUse))
		m.DBConnectionsIdle.Set(float64(stats.Idle))
	}
	m.GoroutinesActive.Set(float64(runtime.NumGoroutine()))
}

// HTTPMiddleware returns middleware for recording HTTP metrics
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPRequestsActive.Inc()
		defer m.HTTPRequestsActive.Dec()

		start := time.Now()

		// Wrap response writer to capture status code
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		m.RecordHTTPRequest(r.Method, r.URL.Path, wrapped.statusCode, duration)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Global metrics instance
var globalMetrics *Metrics

// InitMetrics initializes the global metrics instance
func InitMetrics(namespace string) *Metrics {
	globalMetrics = NewMetrics(namespace)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		globalMetrics = NewMetrics("brandpulse")
	}
	return globalMetrics
}
