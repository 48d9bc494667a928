package recommend

import (
	"context"
	"strings"
	"testing"

	"dlmmScope/internal/model"
)

func TestApplyAdviceClampsWidth(t *testing.T) {
	r := newTestRecommender(nil)
	pool := pairPool("SOL", "USDC", 10)
	rec, _ := r.SuggestRange(context.Background(), model.StrategySpot, pool, nil)

	out, err := r.ApplyAdvice(pool, rec, &model.Advice{
		Strategy:    "spot",
		BinsPerSide: model.IntPtr(90),
		Confidence:  0.8,
		Rationale:   []string{"trend is strong"},
		Model:       "gpt-4o-mini",
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if *out.RecommendedBinsPerSide != 34 || out.MinBinID != -24 || out.MaxBinID != 44 {
		t.Fatalf("advice not clamped: %+v", out)
	}
	joined := strings.Join(out.Rationale, "\n")
	if !strings.Contains(joined, "Advisor (gpt-4o-mini): trend is strong") {
		t.Fatalf("advisor rationale missing: %v", out.Rationale)
	}
	if len(rec.Rationale) == len(out.Rationale) {
		t.Fatalf("input rationale should be left untouched and output extended")
	}
}

func TestApplyAdviceIgnoresMismatchAndLowConfidence(t *testing.T) {
	r := newTestRecommender(nil)
	pool := pairPool("SOL", "USDC", 10)
	rec, _ := r.SuggestRange(context.Background(), model.StrategyCurve, pool, nil)

	out, _ := r.ApplyAdvice(pool, rec, &model.Advice{Strategy: "bid-ask", BidBins: model.IntPtr(20), Confidence: 0.9})
	if out.MinBinID != rec.MinBinID || out.MaxBinID != rec.MaxBinID {
		t.Fatalf("mismatched strategy must not change the range")
	}

	out, _ = r.ApplyAdvice(pool, rec, &model.Advice{Strategy: "curve", BinsPerSide: model.IntPtr(34), Confidence: 0.2})
	if out.MinBinID != rec.MinBinID || !strings.Contains(strings.Join(out.Rationale, "\n"), "below") {
		t.Fatalf("low confidence advice must be ignored with a note: %v", out.Rationale)
	}
}

func TestApplyAdviceBidAsk(t *testing.T) {
	r := newTestRecommender(nil)
	pool := pairPool("USDC", "USDT", 0)
	rec, _ := r.SuggestRange(context.Background(), model.StrategyBidAsk, pool, nil)

	out, err := r.ApplyAdvice(pool, rec, &model.Advice{Strategy: "BidAsk", BidBins: model.IntPtr(3), AskBins: model.IntPtr(25), Confidence: 0.7})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if *out.RecommendedBidBins != 15 || *out.RecommendedAskBins != 25 {
		t.Fatalf("bid=%d ask=%d, want 15/25", *out.RecommendedBidBins, *out.RecommendedAskBins)
	}
	if out.MinBinID != -15 || out.MaxBinID != 25 {
		t.Fatalf("unexpected range [%d, %d]", out.MinBinID, out.MaxBinID)
	}
}
