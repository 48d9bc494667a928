package recommend

import (
	"testing"

	"dlmmScope/internal/model"
)

func TestApplyOverrides(t *testing.T) {
	p, err := DefaultParams().ApplyOverrides(map[string]float64{
		"curve_base_bins":   24,
		"Bid-Coverage-Base": 0.6,
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.CurveBaseBins != 24 || p.BidCoverageBase != 0.6 {
		t.Fatalf("overrides not applied: %+v", p)
	}
	if DefaultParams().CurveBaseBins != 20 {
		t.Fatalf("defaults must not change")
	}

	if _, err := DefaultParams().ApplyOverrides(map[string]float64{"warp-factor": 9}); err == nil {
		t.Fatalf("expected unknown parameter error")
	}
	if _, err := DefaultParams().ApplyOverrides(map[string]float64{"max-bins-per-side": 40}); err == nil {
		t.Fatalf("expected ceiling validation error")
	}
	if _, err := DefaultParams().ApplyOverrides(map[string]float64{"ask-coverage-min": 0.99}); err == nil {
		t.Fatalf("expected bounds validation error")
	}
}

func TestTunableNamesCoverParams(t *testing.T) {
	names := TunableNames()
	if len(names) != 28 {
		t.Fatalf("expected 28 tunables, got %d", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

func TestParamsValues(t *testing.T) {
	values := DefaultParams().Values()
	if len(values) != len(TunableNames()) {
		t.Fatalf("values %d != names %d", len(values), len(TunableNames()))
	}
	if values["max-bins-per-side"] != MaxBinsPerSide || values["volume-bias-threshold"] != 1.2 {
		t.Fatalf("unexpected values %v", values)
	}

	p, err := DefaultParams().ApplyOverrides(map[string]float64{"curve-base-bins": 21.6})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.CurveBaseBins != 22 || p.Values()["curve-base-bins"] != 22 {
		t.Fatalf("integer override not rounded: %d", p.CurveBaseBins)
	}
}

func TestClassifier(t *testing.T) {
	c := NewClassifier(nil, nil)
	cases := []struct {
		x, y    model.TokenMeta
		want    PairClass
		minBins int
	}{
		{model.TokenMeta{Symbol: "usdc"}, model.TokenMeta{Symbol: "USDT"}, PairStable, 10},
		{model.TokenMeta{Symbol: "BONK"}, model.TokenMeta{Symbol: "USDC"}, PairVolatile, 80},
		{model.TokenMeta{Symbol: "SOL"}, model.TokenMeta{Mint: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}, PairOneStable, 50},
		{model.TokenMeta{Symbol: "JUP"}, model.TokenMeta{Symbol: "SOL"}, PairStandard, 30},
	}
	for _, tc := range cases {
		minBins, class := c.MinBins(tc.x, tc.y)
		if class != tc.want || minBins != tc.minBins {
			t.Fatalf("%s/%s: got %s %d, want %s %d", tc.x.Symbol, tc.y.Symbol, class, minBins, tc.want, tc.minBins)
		}
	}

	custom := NewClassifier([]string{"EURC"}, []string{"JUP"})
	if got := custom.Classify(model.TokenMeta{Symbol: "JUP"}, model.TokenMeta{Symbol: "EURC"}); got != PairVolatile {
		t.Fatalf("custom table not used: %s", got)
	}
}
