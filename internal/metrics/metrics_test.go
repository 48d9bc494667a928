package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.OracleRequest("jupiter", "ok", 0.1)
	r.OracleRequest("jupiter", "ok", 0.2)
	r.OracleCache("spot", true)
	r.ContextSignal("bins", false)
	r.Recommendation("Curve")
	r.RebalanceAnalysis("high")

	if got := testutil.ToFloat64(r.oracleRequests.WithLabelValues("jupiter", "ok")); got != 2 {
		t.Fatalf("oracle requests = %v", got)
	}
	if got := testutil.ToFloat64(r.oracleCache.WithLabelValues("spot", "hit")); got != 1 {
		t.Fatalf("cache hits = %v", got)
	}
	if got := testutil.ToFloat64(r.contextSignals.WithLabelValues("bins", "degraded")); got != 1 {
		t.Fatalf("degraded signals = %v", got)
	}
	if got := testutil.ToFloat64(r.recommendations.WithLabelValues("Curve")); got != 1 {
		t.Fatalf("recommendations = %v", got)
	}
	if got := testutil.ToFloat64(r.rebalances.WithLabelValues("high")); got != 1 {
		t.Fatalf("rebalances = %v", got)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.OracleRequest("birdeye", "error", 1)
	r.OracleCache("series", false)
	r.ContextSignal("series_x", true)
	r.Recommendation("Spot")
	r.RebalanceAnalysis("none")
	if r.Registry() != nil {
		t.Fatalf("nil recorder should have no registry")
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.Recommendation("BidAsk")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `dlmm_recommendations_total{strategy="BidAsk"} 1`) {
		t.Fatalf("metric missing from output:\n%s", body)
	}
}
