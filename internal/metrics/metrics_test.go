package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorRecordOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordOutcome("user.created", OutcomeProcessed)
	c.RecordOutcome("user.created", OutcomeProcessed)
	c.RecordOutcome("", OutcomeMissingHeaders)

	if got := testutil.ToFloat64(c.requests.WithLabelValues("user.created", OutcomeProcessed)); got != 2 {
		t.Fatalf("expected 2 processed, got %v", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues("unknown", OutcomeMissingHeaders)); got != 1 {
		t.Fatalf("expected unknown event type label, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordOutcome("user.updated", OutcomeIgnored)
	c.RecordSyncLatency(20 * time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"clerk_webhook_requests_total", "clerk_webhook_sync_duration_seconds"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("expected %s in scrape output", want)
		}
	}
}
