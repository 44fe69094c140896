package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRun(t *testing.T) {
	c := NewCollector(nil, prometheus.NewRegistry())

	c.RecordRun("check", "incompatible", 120*time.Millisecond, 42, 2, 1, 3)

	if got := testutil.ToFloat64(c.runsTotal.WithLabelValues("check", "incompatible")); got != 1 {
		t.Errorf("runs_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.packagesScanned); got != 42 {
		t.Errorf("packages_scanned = %v, want 42", got)
	}
	if got := testutil.ToFloat64(c.conflicts); got != 2 {
		t.Errorf("conflicts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.undetermined); got != 1 {
		t.Errorf("undetermined = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.malformed); got != 3 {
		t.Errorf("malformed_expressions = %v, want 3", got)
	}
}

func TestRecordRun_EmptyStatus(t *testing.T) {
	// List-mode runs have no verdict; the status label must not be empty.
	c := NewCollector(nil, prometheus.NewRegistry())
	c.RecordRun("list", "", time.Millisecond, 1, 0, 0, 0)
	if got := testutil.ToFloat64(c.runsTotal.WithLabelValues("list", "none")); got != 1 {
		t.Errorf("runs_total{status=none} = %v, want 1", got)
	}
}

func TestRecordCacheOutcomes(t *testing.T) {
	c := NewCollector(nil, prometheus.NewRegistry())

	c.RecordCacheMiss()
	c.RecordCacheHit()
	c.RecordCacheHit()

	if got := testutil.ToFloat64(c.parseCacheHits); got != 2 {
		t.Errorf("parse_cache_hits_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.parseCacheMisses); got != 1 {
		t.Errorf("parse_cache_misses_total = %v, want 1", got)
	}
}

func TestDisabledCollectorIsNoop(t *testing.T) {
	c := NewCollector(&Config{Enabled: false}, prometheus.NewRegistry())

	c.RecordRun("check", "compatible", time.Second, 10, 0, 0, 0)
	c.RecordCacheHit()
	c.RecordRecheck("fsevent")

	if got := testutil.ToFloat64(c.packagesScanned); got != 0 {
		t.Errorf("packages_scanned = %v, want 0 when disabled", got)
	}
	if got := testutil.ToFloat64(c.parseCacheHits); got != 0 {
		t.Errorf("parse_cache_hits_total = %v, want 0 when disabled", got)
	}
}

func TestHandler(t *testing.T) {
	c := NewCollector(nil, prometheus.NewRegistry())
	c.RecordRecheck("schedule")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `callisto_rechecks_total{trigger="schedule"} 1`) {
		t.Errorf("metrics output missing recheck counter:\n%s", rec.Body.String())
	}
}
