package rebalance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dlmmScope/internal/model"
)

type stubPools struct {
	pool model.PoolState
	err  error
}

func (s stubPools) GetPoolState(context.Context, string) (model.PoolState, error) {
	return s.pool, s.err
}

type stubHistory struct {
	claims    []model.FeeClaim
	snapshots model.SnapshotRange
	err       error
}

func (s stubHistory) GetPositionFeeClaims(context.Context, string, int) ([]model.FeeClaim, error) {
	return s.claims, s.err
}

func (s stubHistory) GetPositionSnapshotRange(context.Context, string, int) (model.SnapshotRange, error) {
	return s.snapshots, s.err
}

type stubPrice struct {
	price float64
	err   error
}

func (s stubPrice) GetUsdPrice(context.Context, string) (float64, error) {
	return s.price, s.err
}

var testNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func testPosition() model.Position {
	return model.Position{
		Address:     "pos",
		PoolAddress: "pool",
		LowerBinID:  90,
		UpperBinID:  110,
		ValueUSD:    1000,
		CreatedAt:   testNow.AddDate(0, 0, -30),
	}
}

func newTestAnalyzer(pools PoolSource, history HistorySource, prices PriceSource, logger *zap.Logger) *Analyzer {
	a := NewAnalyzer(pools, history, prices, Config{EdgeBuffer: model.IntPtr(2), FallbackSOLPrice: 100}, nil, logger)
	a.now = func() time.Time { return testNow }
	return a
}

func TestAnalyzeOutOfRangePosition(t *testing.T) {
	pool := model.PoolState{ActiveBin: model.IntPtr(125), APR: 50}
	history := stubHistory{
		claims: []model.FeeClaim{{Timestamp: testNow.AddDate(0, 0, -1), ClaimedUSD: 7}},
		snapshots: model.SnapshotRange{Snapshots: []model.PositionSnapshot{
			{InRange: true, ValueUSD: 1000, HodlValueUSD: 1000},
			{InRange: false, ValueUSD: 980, HodlValueUSD: 1000},
		}},
	}
	a := newTestAnalyzer(stubPools{pool: pool}, history, stubPrice{price: 150}, nil)

	report := a.Analyze(context.Background(), testPosition(), Options{})
	if report.Analysis.Status != model.RangeStatusOutOfRange || report.Analysis.Priority != model.PriorityHigh {
		t.Fatalf("unexpected analysis %+v", report.Analysis)
	}
	if report.Preview == nil || report.Preview.CenterBin != 125 || report.Preview.BinsPerSide != 10 {
		t.Fatalf("unexpected preview %+v", report.Preview)
	}
	cb := report.CostBenefit
	if cb == nil || cb.FeeSource != FeeSourceHistory {
		t.Fatalf("expected history based cost benefit, got %+v", cb)
	}
	// 7 USD over 7 lookback days, fully lost while out of range.
	if cb.CurrentDailyFees != 0 || cb.ProjectedDailyFees != 1 || cb.NetDailyGain != 1 {
		t.Fatalf("unexpected fees %+v", cb)
	}
	if cb.BreakEvenLabel != "less than an hour" {
		t.Fatalf("label = %q", cb.BreakEvenLabel)
	}
	if report.Metrics == nil || *report.Metrics.TimeInRangePercent != 50 {
		t.Fatalf("unexpected metrics %+v", report.Metrics)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", report.Warnings)
	}
}

func TestAnalyzeDegradesToCachedActiveBin(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	a := newTestAnalyzer(
		stubPools{err: errors.New("rpc down")},
		stubHistory{err: errors.New("db down")},
		stubPrice{err: errors.New("oracle down")},
		zap.New(core),
	)

	pos := testPosition()
	pos.LastActiveBin = model.IntPtr(109)
	seen := testNow.Add(-time.Hour)
	pos.LastSeenAt = &seen

	report := a.Analyze(context.Background(), pos, Options{BinsPerSide: 8})
	if !report.ActiveBinCached || report.ActiveBin == nil || *report.ActiveBin != 109 {
		t.Fatalf("expected cached active bin, got %v cached=%v", report.ActiveBin, report.ActiveBinCached)
	}
	if report.Analysis.Status != model.RangeStatusEdgeRange || report.Analysis.Priority != model.PriorityMedium {
		t.Fatalf("unexpected analysis %+v", report.Analysis)
	}
	if report.Preview == nil || report.Preview.BinsPerSide != 8 {
		t.Fatalf("unexpected preview %+v", report.Preview)
	}
	if report.CostBenefit == nil || report.CostBenefit.FeeSource != FeeSourceNone || report.CostBenefit.BreakEvenLabel != "never" {
		t.Fatalf("unexpected cost benefit %+v", report.CostBenefit)
	}
	if report.CostBenefit.RebalanceCostUSD != RebalanceCostUSD(RebalanceTxCount, 0, 100) {
		t.Fatalf("fallback sol price not used: %v", report.CostBenefit.RebalanceCostUSD)
	}

	warnings := strings.Join(report.Warnings, "\n")
	for _, want := range []string{"cached at", "fallback", "no fee history"} {
		if !strings.Contains(warnings, want) {
			t.Fatalf("missing warning %q in %v", want, report.Warnings)
		}
	}
	for _, signal := range []string{"pool", "fee_claims", "snapshots", "sol_price"} {
		if logs.FilterField(zap.String("signal", signal)).Len() != 1 {
			t.Fatalf("expected a %s warning log", signal)
		}
	}
}

func TestAnalyzeWithoutAnyActiveBin(t *testing.T) {
	a := newTestAnalyzer(stubPools{err: errors.New("rpc down")}, nil, nil, nil)
	report := a.Analyze(context.Background(), testPosition(), Options{})
	if report.Analysis.Status != model.RangeStatusUnknown || report.Analysis.Priority != model.PriorityUnknown {
		t.Fatalf("unexpected analysis %+v", report.Analysis)
	}
	if report.Preview != nil || report.CostBenefit != nil {
		t.Fatalf("no preview without an active bin")
	}
	if len(report.Warnings) == 0 {
		t.Fatalf("expected a warning")
	}
}

func TestAnalyzeUsesPoolAPRWithoutHistory(t *testing.T) {
	pool := model.PoolState{ActiveBin: model.IntPtr(100), APR: 36.5}
	a := newTestAnalyzer(stubPools{pool: pool}, nil, stubPrice{price: 100}, nil)

	report := a.Analyze(context.Background(), testPosition(), Options{BinsPerSide: 5})
	cb := report.CostBenefit
	if cb == nil || cb.FeeSource != FeeSourcePoolAPR {
		t.Fatalf("expected apr estimate, got %+v", cb)
	}
	if report.Analysis.Priority != model.PriorityNone {
		t.Fatalf("centered position should need no action: %+v", report.Analysis)
	}
	// Baseline 1 USD/day; 21 bins concentrated into 11.
	if cb.CurrentDailyFees != 1 || cb.ProjectedDailyFees <= cb.CurrentDailyFees {
		t.Fatalf("unexpected projection %+v", cb)
	}
	if cb.BreakEvenDays == nil || *cb.BreakEvenDays <= 0 {
		t.Fatalf("expected finite break even, got %+v", cb)
	}
}

func TestAnalyzeZeroConfigUsesDefaults(t *testing.T) {
	pool := model.PoolState{ActiveBin: model.IntPtr(91)}
	a := NewAnalyzer(stubPools{pool: pool}, nil, stubPrice{err: errors.New("oracle down")}, Config{}, nil, nil)

	report := a.Analyze(context.Background(), testPosition(), Options{})
	if report.Analysis.Status != model.RangeStatusEdgeRange {
		t.Fatalf("status = %s, want edge range with the default buffer", report.Analysis.Status)
	}
	if report.CostBenefit == nil {
		t.Fatalf("expected a cost benefit")
	}
	want := RebalanceCostUSD(RebalanceTxCount, 0, DefaultFallbackSOLPrice)
	if report.CostBenefit.RebalanceCostUSD != want || want <= 0 {
		t.Fatalf("cost = %v, want %v from the default SOL price", report.CostBenefit.RebalanceCostUSD, want)
	}
}

func TestAnalyzeExplicitZeroEdgeBuffer(t *testing.T) {
	pool := model.PoolState{ActiveBin: model.IntPtr(91)}
	a := NewAnalyzer(stubPools{pool: pool}, nil, nil, Config{EdgeBuffer: model.IntPtr(0)}, nil, nil)

	report := a.Analyze(context.Background(), testPosition(), Options{})
	if report.Analysis.Status != model.RangeStatusInRange {
		t.Fatalf("status = %s, want in range with a zero buffer", report.Analysis.Status)
	}
}
