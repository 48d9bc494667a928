package market

import (
	"math"
	"time"

	"dlmmScope/internal/model"
)

const (
	minVolatilityScore = 0.02
	maxVolatilityScore = 0.5
)

// SeriesMetrics summarizes the spread of a price series.
type SeriesMetrics struct {
	VolatilityScore float64
	ATRPercent      float64
	High            float64
	Low             float64
}

// ComputeSeriesMetrics derives volatility, ATR and high/low from an ordered price series.
// It returns false when fewer than two positive prices are available.
func ComputeSeriesMetrics(prices []float64) (SeriesMetrics, bool) {
	clean := make([]float64, 0, len(prices))
	for _, p := range prices {
		if p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p) {
			clean = append(clean, p)
		}
	}
	if len(clean) < 2 {
		return SeriesMetrics{}, false
	}

	high, low := clean[0], clean[0]
	var trueRange float64
	for i, p := range clean {
		high = math.Max(high, p)
		low = math.Min(low, p)
		if i > 0 {
			trueRange += math.Abs(p - clean[i-1])
		}
	}
	last := clean[len(clean)-1]

	return SeriesMetrics{
		VolatilityScore: clamp((high-low)/low, minVolatilityScore, maxVolatilityScore),
		ATRPercent:      trueRange / float64(len(clean)-1) / last,
		High:            high,
		Low:             low,
	}, true
}

// AlignRatioSeries pairs each point of x with the nearest point of y within tolerance and
// returns the x/y ratios in time order. Both series must be sorted by timestamp.
func AlignRatioSeries(x, y []model.PricePoint, tolerance time.Duration) []float64 {
	if len(x) == 0 || len(y) == 0 {
		return nil
	}

	out := make([]float64, 0, len(x))
	j := 0
	for _, px := range x {
		for j+1 < len(y) && absDuration(y[j+1].Timestamp.Sub(px.Timestamp)) <= absDuration(y[j].Timestamp.Sub(px.Timestamp)) {
			j++
		}
		if absDuration(y[j].Timestamp.Sub(px.Timestamp)) > tolerance || y[j].Price <= 0 {
			continue
		}
		out = append(out, px.Price/y[j].Price)
	}
	return out
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
