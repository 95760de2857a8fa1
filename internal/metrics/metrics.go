// Package metrics exposes Prometheus counters for webhook processing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for clerk_webhook_requests_total.
const (
	OutcomeProcessed          = "processed"
	OutcomeIgnored            = "ignored"
	OutcomeMissingHeaders     = "missing_headers"
	OutcomeVerificationFailed = "verification_failed"
	OutcomeInvalidPayload     = "invalid_payload"
	OutcomeNoEmail            = "no_email"
	OutcomeSyncFailed         = "sync_failed"
	OutcomeMisconfigured      = "misconfigured"
)

// Recorder is the subset of metrics the webhook handler reports.
type Recorder interface {
	RecordOutcome(eventType, outcome string)
	RecordSyncLatency(d time.Duration)
}

// Collector is the Prometheus-backed Recorder.
type Collector struct {
	requests    *prometheus.CounterVec
	syncLatency prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clerk_webhook_requests_total",
			Help: "Clerk webhook deliveries by event type and outcome.",
		}, []string{"event_type", "outcome"}),
		syncLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clerk_webhook_sync_duration_seconds",
			Help:    "Latency of the downstream user sync.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(c.requests, c.syncLatency)
	return c
}

// RecordOutcome counts one webhook delivery. eventType is empty when the body was never decoded.
func (c *Collector) RecordOutcome(eventType, outcome string) {
	if eventType == "" {
		eventType = "unknown"
	}
	c.requests.WithLabelValues(eventType, outcome).Inc()
}

func (c *Collector) RecordSyncLatency(d time.Duration) {
	c.syncLatency.Observe(d.Seconds())
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordOutcome(string, string) {}
func (Nop) RecordSyncLatency(time.Duration) {}

// Handler serves the Prometheus scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
