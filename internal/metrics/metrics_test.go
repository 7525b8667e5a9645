package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountAndServe(t *testing.T) {
	m := New(nil)
	m.Requests.WithLabelValues("/", "ok").Inc()
	m.Requests.WithLabelValues("/", "ok").Inc()
	m.CacheHits.Inc()
	m.DirectorySize.Set(2500)

	if got := testutil.ToFloat64(m.Requests.WithLabelValues("/", "ok")); got != 2 {
		t.Errorf("expected 2 requests, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`dashboard_requests_total{outcome="ok",route="/"} 2`,
		"dashboard_price_cache_hits_total 1",
		"dashboard_directory_companies 2500",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	New(nil)
	New(nil)
}
