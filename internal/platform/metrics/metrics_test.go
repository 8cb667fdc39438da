package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := New()
	m.Merged("pnp", 10*time.Millisecond)
	m.Merged("pnp", 20*time.Millisecond)
	m.Merged("cec", time.Millisecond)
	m.IngestFailed("normalize")
	m.RenderFailed()
	m.Transition("applied")

	if got := testutil.ToFloat64(m.merges.WithLabelValues("pnp")); got != 2 {
		t.Fatalf("merges{pnp} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ingestFailures.WithLabelValues("normalize")); got != 1 {
		t.Fatalf("ingest_failures{normalize} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.renderFailures); got != 1 {
		t.Fatalf("render_failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("applied")); got != 1 {
		t.Fatalf("transitions{applied} = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.Merged("cec", time.Second)
	m.IngestFailed("x")
	m.RenderFailed()
	m.Transition("x")
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.Merged("stem", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`immiwatch_merges_total{program="stem"} 1`,
		"immiwatch_merge_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("scrape missing %q", want)
		}
	}
}
