package rebalance

import (
	"math"
	"strings"
	"testing"
	"time"

	"dlmmScope/internal/model"
)

func TestBreakEven(t *testing.T) {
	days, label := BreakEven(2.0, 0.5)
	if label != "4 days" || days == nil || *days != 4 {
		t.Fatalf("got %v %q, want 4 days", days, label)
	}

	cases := []struct {
		cost, gain float64
		want       string
	}{
		{2, 0, "never"},
		{2, -1, "never"},
		{2, math.NaN(), "never"},
		{2, math.Inf(1), "never"},
		{0, 1, "immediately"},
		{1, 1, "1 day"},
		{3, 2, "1.5 days"},
		{1, 4, "6 hours"},
		{1, 1000, "less than an hour"},
	}
	for _, tc := range cases {
		_, got := BreakEven(tc.cost, tc.gain)
		if got != tc.want {
			t.Fatalf("BreakEven(%v, %v) = %q, want %q", tc.cost, tc.gain, got, tc.want)
		}
		if strings.Contains(got, "Inf") || strings.Contains(got, "NaN") {
			t.Fatalf("label leaks non-finite value: %q", got)
		}
	}

	if days, _ := BreakEven(1, -1); days != nil {
		t.Fatalf("never must not report days")
	}
}

func TestRebalanceCostUSD(t *testing.T) {
	got := RebalanceCostUSD(RebalanceTxCount, 0, 150)
	if math.Abs(got-0.00225) > 1e-12 {
		t.Fatalf("cost = %v, want 0.00225", got)
	}
	got = RebalanceCostUSD(RebalanceTxCount, 95_000, 200)
	if math.Abs(got-0.06) > 1e-12 {
		t.Fatalf("cost = %v, want 0.06", got)
	}
}

func TestBaselineDailyFees(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	pos := model.Position{ValueUSD: 3650, CreatedAt: now.AddDate(0, 0, -2)}
	claims := []model.FeeClaim{
		{Timestamp: now.AddDate(0, 0, -1), ClaimedUSD: 3},
		{Timestamp: now, ClaimedUSD: 5},
	}

	fees, source := BaselineDailyFees(pos, nil, claims, now, 7)
	if source != FeeSourceHistory || fees != 4 {
		t.Fatalf("got %v %s, want 4 from history over two days", fees, source)
	}

	young := pos
	young.CreatedAt = now.Add(-6 * time.Hour)
	fees, _ = BaselineDailyFees(young, nil, claims, now, 7)
	if fees != 8 {
		t.Fatalf("observed window must be at least one day, got %v", fees)
	}

	pool := &model.PoolState{APR: 36.5}
	fees, source = BaselineDailyFees(pos, pool, nil, now, 7)
	if source != FeeSourcePoolAPR || math.Abs(fees-3.65) > 1e-9 {
		t.Fatalf("got %v %s, want 3.65 from apr", fees, source)
	}

	if _, source = BaselineDailyFees(pos, nil, nil, now, 7); source != FeeSourceNone {
		t.Fatalf("expected no fee source, got %s", source)
	}
}

func TestCostBenefitOutOfRange(t *testing.T) {
	pos := model.Position{LowerBinID: 90, UpperBinID: 110}
	preview := BuildPreview(pos, 130, 0)

	cb := CostBenefit(2, FeeSourceHistory, model.RangeStatusOutOfRange, pos, preview, 0.5)
	if cb.CurrentDailyFees != 0 || cb.ProjectedDailyFees != 2 || cb.NetDailyGain != 2 {
		t.Fatalf("unexpected fees %+v", cb)
	}
	if cb.BreakEvenLabel != "6 hours" {
		t.Fatalf("label = %q", cb.BreakEvenLabel)
	}

	healthy := CostBenefit(2, FeeSourceHistory, model.RangeStatusInRange, pos, preview, 0.5)
	if healthy.NetDailyGain != 0 || healthy.BreakEvenLabel != "never" {
		t.Fatalf("same-width move of a healthy position should never pay off: %+v", healthy)
	}

	edge := CostBenefit(2, FeeSourceHistory, model.RangeStatusEdgeRange, pos, BuildPreview(pos, 91, 5), 0.5)
	// 21 bins now, 11 after: projected 2*21/11, current 1.
	if math.Abs(edge.ProjectedDailyFees-42.0/11) > 1e-12 || edge.CurrentDailyFees != 1 {
		t.Fatalf("unexpected edge projection %+v", edge)
	}
}

func TestSnapshotMetrics(t *testing.T) {
	if SnapshotMetrics(model.SnapshotRange{}) != nil {
		t.Fatalf("expected nil metrics without snapshots")
	}

	snaps := []model.PositionSnapshot{
		{InRange: true, ValueUSD: 1000, HodlValueUSD: 1000},
		{InRange: true, ValueUSD: 990, HodlValueUSD: 1005},
		{InRange: false, ValueUSD: 950, HodlValueUSD: 1000},
		{InRange: true, ValueUSD: 960, HodlValueUSD: 1000},
	}
	m := SnapshotMetrics(model.SnapshotRange{First: &snaps[0], Latest: &snaps[3], Snapshots: snaps})
	if m.Snapshots != 4 || *m.TimeInRangePercent != 75 {
		t.Fatalf("unexpected metrics %+v", m)
	}
	if *m.ImpermanentLossUSD != 40 || *m.ImpermanentLossPct != 4 {
		t.Fatalf("unexpected il %v %v", *m.ImpermanentLossUSD, *m.ImpermanentLossPct)
	}
}
