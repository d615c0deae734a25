// Package metrics holds the engine's Prometheus collectors. A nil *Recorder
// is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gm"

// Recorder owns a private registry so tests can create as many as they like.
type Recorder struct {
	registry *prometheus.Registry

	tradeGrades         *prometheus.HistogramVec
	dangerousTrades     *prometheus.CounterVec
	tradeDecisions      *prometheus.CounterVec
	simulationFailures  prometheus.Counter
	simulationLatency   prometheus.Histogram
	mockDraftsStarted   *prometheus.CounterVec
	mockDraftsCompleted *prometheus.CounterVec
	mockScores          prometheus.Histogram
	persistFallbacks    *prometheus.CounterVec
	rateLimited         *prometheus.CounterVec
	limiterErrors       prometheus.Counter
	outboxEvents        *prometheus.CounterVec
	outboxLatency       *prometheus.HistogramVec
	outboxBatch         prometheus.Histogram
	outboxLag           prometheus.Gauge
	publishAttempts     *prometheus.CounterVec
	wsConnections       prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		tradeGrades: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trade_grade",
			Help:      "Composite grade of submitted trades.",
			Buckets:   []float64{10, 20, 30, 40, 50, 55, 60, 70, 80, 85, 90, 100},
		}, []string{"sport"}),
		dangerousTrades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dangerous_trades_total",
			Help:      "Trades flagged as giving up too much value.",
		}, []string{"sport"}),
		tradeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trade_decisions_total",
			Help:      "Accepted and rejected trades.",
		}, []string{"status"}),
		simulationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "season_simulation_failures_total",
			Help:      "Season simulations that failed or timed out.",
		}),
		simulationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "season_simulation_duration_seconds",
			Help:      "Wall time of season simulation calls, retries included.",
			Buckets:   prometheus.DefBuckets,
		}),
		mockDraftsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mock_drafts_started_total",
			Help:      "Mock drafts started.",
		}, []string{"sport"}),
		mockDraftsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mock_drafts_completed_total",
			Help:      "Mock drafts that reached completion.",
		}, []string{"sport", "letter"}),
		mockScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mock_draft_score",
			Help:      "Mock score at completion.",
			Buckets:   []float64{40, 55, 70, 85, 100},
		}),
		persistFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mock_draft_persist_attempts_total",
			Help:      "Mock draft persistence attempts by strategy and outcome.",
		}, []string{"strategy", "status"}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"action"}),
		limiterErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limiter_errors_total",
			Help:      "Limiter backend errors; requests were allowed.",
		}),
		outboxEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_events_total",
			Help:      "Outbox events processed by type and outcome.",
		}, []string{"event_type", "status"}),
		outboxLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_publish_duration_seconds",
			Help:      "Time to publish a single outbox event.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
		outboxBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "outbox_batch_size",
			Help:      "Events per outbox batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		}),
		outboxLag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_unsent_events",
			Help:      "Events waiting in the outbox.",
		}),
		publishAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_publish_attempts_total",
			Help:      "JetStream publish attempts.",
		}, []string{"event_type", "attempt", "status"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mockdraft_ws_connections",
			Help:      "Open mock draft websocket connections.",
		}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.tradeGrades, r.dangerousTrades, r.tradeDecisions,
		r.simulationFailures, r.simulationLatency,
		r.mockDraftsStarted, r.mockDraftsCompleted, r.mockScores, r.persistFallbacks,
		r.rateLimited, r.limiterErrors,
		r.outboxEvents, r.outboxLatency, r.outboxBatch, r.outboxLag, r.publishAttempts,
		r.wsConnections,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) RecordTradeGraded(sport string, grade float64, dangerous bool) {
	if r == nil {
		return
	}
	r.tradeGrades.WithLabelValues(sport).Observe(grade)
	if dangerous {
		r.dangerousTrades.WithLabelValues(sport).Inc()
	}
}

func (r *Recorder) RecordTradeDecision(status string) {
	if r == nil {
		return
	}
	r.tradeDecisions.WithLabelValues(status).Inc()
}

func (r *Recorder) RecordSimulation(duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.simulationLatency.Observe(duration.Seconds())
	if err != nil {
		r.simulationFailures.Inc()
	}
}

func (r *Recorder) RecordMockDraftStarted(sport string) {
	if r == nil {
		return
	}
	r.mockDraftsStarted.WithLabelValues(sport).Inc()
}

func (r *Recorder) RecordMockDraftCompleted(sport, letter string, score float64) {
	if r == nil {
		return
	}
	r.mockDraftsCompleted.WithLabelValues(sport, letter).Inc()
	r.mockScores.Observe(score)
}

func (r *Recorder) RecordPersistAttempt(strategy string, err error) {
	if r == nil {
		return
	}
	r.persistFallbacks.WithLabelValues(strategy, status(err == nil)).Inc()
}

func (r *Recorder) RecordRateLimited(action string) {
	if r == nil {
		return
	}
	r.rateLimited.WithLabelValues(action).Inc()
}

func (r *Recorder) RecordLimiterError() {
	if r == nil {
		return
	}
	r.limiterErrors.Inc()
}

func (r *Recorder) RecordEventProcessed(eventType string, success bool, duration time.Duration) {
	if r == nil {
		return
	}
	r.outboxEvents.WithLabelValues(eventType, status(success)).Inc()
	r.outboxLatency.WithLabelValues(eventType).Observe(duration.Seconds())
}

func (r *Recorder) RecordBatchProcessed(count int, duration time.Duration) {
	if r == nil {
		return
	}
	r.outboxBatch.Observe(float64(count))
}

func (r *Recorder) RecordOutboxLag(lag int) {
	if r == nil {
		return
	}
	r.outboxLag.Set(float64(lag))
}

func (r *Recorder) RecordPublishAttempt(eventType string, attempt int, success bool) {
	if r == nil {
		return
	}
	r.publishAttempts.WithLabelValues(eventType, strconv.Itoa(attempt), status(success)).Inc()
}

func (r *Recorder) ConnectionOpened() {
	if r == nil {
		return
	}
	r.wsConnections.Inc()
}

func (r *Recorder) ConnectionClosed() {
	if r == nil {
		return
	}
	r.wsConnections.Dec()
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
