package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// MaxBinsPerSide keeps one-sided and symmetric ranges inside the 69-bin single transaction limit.
const MaxBinsPerSide = 34

// Params holds the tunable constants of range sizing. Changing a default changes recommendations.
type Params struct {
	MaxBinsPerSide int

	ContextVolatilityMin  float64
	ContextVolatilityMax  float64
	TurnoverScale         float64
	TurnoverVolatilityMin float64
	TurnoverVolatilityMax float64
	DefaultVolatility     float64
	VolumeBiasThreshold   float64

	SpotVolatilityMultiplier float64
	SpotDeviationThreshold   float64
	SpotDeviationWidening    int

	CurveBaseBins             int
	CurveVolatilityMultiplier float64
	CurveShiftDeviationScale  float64
	LargeDeviationThreshold   float64

	BidAskBaseBins             int
	BidAskVolatilityMultiplier float64
	BidCoverageBase            float64
	BidCoverageMin             float64
	BidCoverageMax             float64
	AskCoverageBase            float64
	AskCoverageMin             float64
	AskCoverageMax             float64
	CoverageBiasAdjustment     float64
	ATRExpandingThreshold      float64
	ATRContractingThreshold    float64
	ATRAdjustment              float64
	DirectionalDeviationScale  float64
}

// DefaultParams returns the calibrated defaults.
func DefaultParams() Params {
	return Params{
		MaxBinsPerSide: MaxBinsPerSide,

		ContextVolatilityMin:  0.02,
		ContextVolatilityMax:  0.35,
		TurnoverScale:         0.15,
		TurnoverVolatilityMin: 0.025,
		TurnoverVolatilityMax: 0.3,
		DefaultVolatility:     0.06,
		VolumeBiasThreshold:   1.2,

		SpotVolatilityMultiplier: 20,
		SpotDeviationThreshold:   0.25,
		SpotDeviationWidening:    3,

		CurveBaseBins:             20,
		CurveVolatilityMultiplier: 25,
		CurveShiftDeviationScale:  10,
		LargeDeviationThreshold:   0.5,

		BidAskBaseBins:             15,
		BidAskVolatilityMultiplier: 15,
		BidCoverageBase:            0.55,
		BidCoverageMin:             0.35,
		BidCoverageMax:             0.9,
		AskCoverageBase:            0.65,
		AskCoverageMin:             0.4,
		AskCoverageMax:             0.95,
		CoverageBiasAdjustment:     0.1,
		ATRExpandingThreshold:      0.02,
		ATRContractingThreshold:    0.008,
		ATRAdjustment:              0.15,
		DirectionalDeviationScale:  10,
	}
}

type field struct {
	get func() float64
	set func(float64)
}

func (p *Params) fields() map[string]field {
	intField := func(dst *int) field {
		return field{
			get: func() float64 { return float64(*dst) },
			set: func(v float64) { *dst = int(math.Round(v)) },
		}
	}
	floatField := func(dst *float64) field {
		return field{
			get: func() float64 { return *dst },
			set: func(v float64) { *dst = v },
		}
	}
	return map[string]field{
		"max-bins-per-side":            intField(&p.MaxBinsPerSide),
		"context-volatility-min":       floatField(&p.ContextVolatilityMin),
		"context-volatility-max":       floatField(&p.ContextVolatilityMax),
		"turnover-scale":               floatField(&p.TurnoverScale),
		"turnover-volatility-min":      floatField(&p.TurnoverVolatilityMin),
		"turnover-volatility-max":      floatField(&p.TurnoverVolatilityMax),
		"default-volatility":           floatField(&p.DefaultVolatility),
		"volume-bias-threshold":        floatField(&p.VolumeBiasThreshold),
		"spot-volatility-multiplier":   floatField(&p.SpotVolatilityMultiplier),
		"spot-deviation-threshold":     floatField(&p.SpotDeviationThreshold),
		"spot-deviation-widening":      intField(&p.SpotDeviationWidening),
		"curve-base-bins":              intField(&p.CurveBaseBins),
		"curve-volatility-multiplier":  floatField(&p.CurveVolatilityMultiplier),
		"curve-shift-deviation-scale":  floatField(&p.CurveShiftDeviationScale),
		"large-deviation-threshold":    floatField(&p.LargeDeviationThreshold),
		"bidask-base-bins":             intField(&p.BidAskBaseBins),
		"bidask-volatility-multiplier": floatField(&p.BidAskVolatilityMultiplier),
		"bid-coverage-base":            floatField(&p.BidCoverageBase),
		"bid-coverage-min":             floatField(&p.BidCoverageMin),
		"bid-coverage-max":             floatField(&p.BidCoverageMax),
		"ask-coverage-base":            floatField(&p.AskCoverageBase),
		"ask-coverage-min":             floatField(&p.AskCoverageMin),
		"ask-coverage-max":             floatField(&p.AskCoverageMax),
		"coverage-bias-adjustment":     floatField(&p.CoverageBiasAdjustment),
		"atr-expanding-threshold":      floatField(&p.ATRExpandingThreshold),
		"atr-contracting-threshold":    floatField(&p.ATRContractingThreshold),
		"atr-adjustment":               floatField(&p.ATRAdjustment),
		"directional-deviation-scale":  floatField(&p.DirectionalDeviationScale),
	}
}

// TunableNames lists the keys accepted by ApplyOverrides.
func TunableNames() []string {
	var p Params
	names := make([]string, 0, 32)
	for name := range p.fields() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Values returns every tunable keyed by its override name.
func (p Params) Values() map[string]float64 {
	fields := p.fields()
	out := make(map[string]float64, len(fields))
	for name, f := range fields {
		out[name] = f.get()
	}
	return out
}

// ApplyOverrides returns a copy of p with the named values replaced, then validates it.
func (p Params) ApplyOverrides(overrides map[string]float64) (Params, error) {
	out := p
	fields := out.fields()
	for name, value := range overrides {
		f, ok := fields[strings.ToLower(strings.ReplaceAll(name, "_", "-"))]
		if !ok {
			return p, fmt.Errorf("unknown tuning parameter %q", name)
		}
		f.set(value)
	}
	if err := out.Validate(); err != nil {
		return p, err
	}
	return out, nil
}

// Validate checks that the parameters describe a usable sizing model.
func (p Params) Validate() error {
	if p.MaxBinsPerSide < 1 || p.MaxBinsPerSide > MaxBinsPerSide {
		return fmt.Errorf("max-bins-per-side must be in [1, %d], got %d", MaxBinsPerSide, p.MaxBinsPerSide)
	}
	bounds := []struct {
		name   string
		lo, hi float64
	}{
		{"context-volatility", p.ContextVolatilityMin, p.ContextVolatilityMax},
		{"turnover-volatility", p.TurnoverVolatilityMin, p.TurnoverVolatilityMax},
		{"bid-coverage", p.BidCoverageMin, p.BidCoverageMax},
		{"ask-coverage", p.AskCoverageMin, p.AskCoverageMax},
		{"atr-threshold", p.ATRContractingThreshold, p.ATRExpandingThreshold},
	}
	for _, b := range bounds {
		if b.lo < 0 || b.lo > b.hi {
			return fmt.Errorf("%s bounds invalid: [%v, %v]", b.name, b.lo, b.hi)
		}
	}
	if p.BidCoverageMax > 1 || p.AskCoverageMax > 1 {
		return fmt.Errorf("coverage targets must not exceed 1")
	}
	if p.CurveBaseBins < 0 || p.BidAskBaseBins < 0 || p.SpotDeviationWidening < 0 {
		return fmt.Errorf("bin counts must be non-negative")
	}
	return nil
}
