package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"dlmmScope/internal/market"
	"dlmmScope/internal/metrics"
	"dlmmScope/internal/model"
)

// ErrNoActiveBin is returned when the pool has no active bin to center a range on.
var ErrNoActiveBin = errors.New("pool has no active bin")

// RatioSource returns the USD price ratio of two mints.
type RatioSource interface {
	GetPriceRatio(ctx context.Context, mintA, mintB string) (float64, error)
}

// Recommender sizes bin ranges for new positions.
type Recommender struct {
	params     Params
	classifier *Classifier
	oracle     RatioSource
	guard      market.Guard
	metrics    *metrics.Recorder
	logger     *zap.Logger
}

// NewRecommender creates a Recommender. classifier and oracle may be nil.
func NewRecommender(params Params, classifier *Classifier, oracle RatioSource, fetchTimeout time.Duration, recorder *metrics.Recorder, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if classifier == nil {
		classifier = NewClassifier(nil, nil)
	}
	if params.MaxBinsPerSide <= 0 {
		params = DefaultParams()
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 5 * time.Second
	}
	return &Recommender{
		params:     params,
		classifier: classifier,
		oracle:     oracle,
		guard:      market.Guard{Timeout: fetchTimeout, Logger: logger, Metrics: recorder},
		metrics:    recorder,
		logger:     logger,
	}
}

// Params returns the active sizing parameters.
func (r *Recommender) Params() Params {
	return r.params
}

type signals struct {
	activeBin   int
	volatility  float64
	volSource   string
	poolPrice   float64
	oraclePrice float64
	deviation   float64
	bias        int
	biasSource  string
	pairMin     int
	class       PairClass
	atr         *float64
}

// SuggestRange computes a bin range for strategy. rctx may be nil. The only error is ErrNoActiveBin.
func (r *Recommender) SuggestRange(ctx context.Context, strategy model.Strategy, pool model.PoolState, rctx *model.RangeRecommendationContext) (model.RangeRecommendation, error) {
	if !pool.HasActiveBin() {
		return model.RangeRecommendation{}, ErrNoActiveBin
	}
	if rctx == nil {
		rctx = &model.RangeRecommendationContext{}
	}

	s := r.collectSignals(ctx, pool, *rctx)
	rec := model.RangeRecommendation{
		Strategy: strategy,
		Rationale: []string{
			fmt.Sprintf("%s is a %s pair: minimum %d bins per side", pool.Name(), s.class, s.pairMin),
		},
		Metrics: model.RecommendationMetrics{
			VolatilityScore: s.volatility,
			PriceDeviation:  s.deviation,
			VolumeBias:      s.bias,
		},
	}

	switch strategy {
	case model.StrategyCurve:
		r.sizeCurve(&rec, s)
	case model.StrategyBidAsk:
		r.sizeBidAsk(&rec, s, *rctx)
	default:
		rec.Strategy = model.StrategySpot
		r.sizeSpot(&rec, s)
	}

	r.metrics.Recommendation(rec.Strategy.String())
	r.logger.Debug("range suggested",
		zap.String("pool", pool.Address),
		zap.String("strategy", rec.Strategy.String()),
		zap.Int("min_bin", rec.MinBinID),
		zap.Int("max_bin", rec.MaxBinID),
		zap.Float64("volatility", s.volatility),
		zap.Float64("deviation", s.deviation),
		zap.Int("bias", s.bias),
	)
	return rec, nil
}

func (r *Recommender) collectSignals(ctx context.Context, pool model.PoolState, rctx model.RangeRecommendationContext) signals {
	p := r.params
	s := signals{activeBin: *pool.ActiveBin, atr: rctx.ATRPercent}
	s.pairMin, s.class = r.classifier.MinBins(pool.TokenX, pool.TokenY)

	switch {
	case rctx.VolatilityScore != nil:
		s.volatility = clamp(*rctx.VolatilityScore, p.ContextVolatilityMin, p.ContextVolatilityMax)
		s.volSource = "market context"
	case rctx.RecentHighPrice != nil && rctx.RecentLowPrice != nil && *rctx.RecentLowPrice > 0:
		spread := (*rctx.RecentHighPrice - *rctx.RecentLowPrice) / *rctx.RecentLowPrice
		s.volatility = clamp(spread, p.ContextVolatilityMin, p.ContextVolatilityMax)
		s.volSource = "recent high/low"
	case pool.TVL > 0 && pool.Volume24h > 0:
		s.volatility = clamp(pool.Volume24h/pool.TVL*p.TurnoverScale, p.TurnoverVolatilityMin, p.TurnoverVolatilityMax)
		s.volSource = "24h turnover"
	default:
		s.volatility = p.DefaultVolatility
		s.volSource = "default"
	}

	s.poolPrice = pool.Price
	if rctx.PoolPrice != nil && *rctx.PoolPrice > 0 {
		s.poolPrice = *rctx.PoolPrice
	}

	if rctx.OraclePrice != nil && *rctx.OraclePrice > 0 {
		s.oraclePrice = *rctx.OraclePrice
	} else if r.oracle != nil && pool.TokenX.Mint != "" && pool.TokenY.Mint != "" {
		ratio, ok := market.TryFetch(ctx, r.guard, "oracle_ratio", func(ctx context.Context) (float64, error) {
			return r.oracle.GetPriceRatio(ctx, pool.TokenX.Mint, pool.TokenY.Mint)
		})
		if ok && ratio > 0 && !math.IsInf(ratio, 0) {
			s.oraclePrice = ratio
		}
	}
	if s.oraclePrice > 0 && s.poolPrice > 0 {
		s.deviation = math.Abs(s.poolPrice-s.oraclePrice) / s.oraclePrice
		if math.IsNaN(s.deviation) || math.IsInf(s.deviation, 0) {
			s.deviation = 0
		}
	}

	switch {
	case rctx.VolumeBias != nil:
		s.bias = sign(*rctx.VolumeBias)
		s.biasSource = "market context"
	case len(rctx.VolumeNodes) > 0 && s.poolPrice > 0:
		s.bias = volumeBias(rctx.VolumeNodes, s.poolPrice, p.VolumeBiasThreshold)
		s.biasSource = "volume nodes"
	}
	return s
}

// volumeBias compares node weight above and below the pool price.
func volumeBias(nodes []model.VolumeNode, poolPrice, threshold float64) int {
	var above, below float64
	for _, n := range nodes {
		switch {
		case n.Price > poolPrice:
			above += n.Weight
		case n.Price < poolPrice:
			below += n.Weight
		}
	}
	switch {
	case above > below*threshold:
		return 1
	case below > above*threshold:
		return -1
	default:
		return 0
	}
}

func (r *Recommender) sizeSpot(rec *model.RangeRecommendation, s signals) {
	p := r.params
	floor := minInt(s.pairMin, p.MaxBinsPerSide)
	bins := clampBins(roundInt(float64(s.pairMin)+s.volatility*p.SpotVolatilityMultiplier), floor, p.MaxBinsPerSide)
	rec.Rationale = append(rec.Rationale, fmt.Sprintf("Volatility %.1f%% (%s) sets %d bins per side", s.volatility*100, s.volSource, bins))

	if s.deviation > p.SpotDeviationThreshold {
		widened := minInt(bins+p.SpotDeviationWidening, p.MaxBinsPerSide)
		rec.Rationale = append(rec.Rationale, fmt.Sprintf("Pool price deviates %.1f%% from oracle: widened to %d bins per side", s.deviation*100, widened))
		bins = widened
	}
	if s.bias != 0 {
		rec.Rationale = append(rec.Rationale, fmt.Sprintf("Liquidity leans %s (%s); Spot keeps the range centered", biasWord(s.bias), s.biasSource))
	}
	r.noteCeiling(rec, s.pairMin, p.SpotVolatilityMultiplier, s.volatility, bins)

	rec.RecommendedBinsPerSide = model.IntPtr(bins)
	rec.CenterBin = s.activeBin
	rec.MinBinID = s.activeBin - bins
	rec.MaxBinID = s.activeBin + bins
}

func (r *Recommender) sizeCurve(rec *model.RangeRecommendation, s signals) {
	p := r.params
	base := maxInt(s.pairMin, p.CurveBaseBins)
	floor := minInt(base, p.MaxBinsPerSide)
	bins := clampBins(roundInt(float64(base)+s.volatility*p.CurveVolatilityMultiplier), floor, p.MaxBinsPerSide)
	rec.Rationale = append(rec.Rationale, fmt.Sprintf("Curve base %d bins plus volatility %.1f%% (%s) gives %d bins per side", base, s.volatility*100, s.volSource, bins))

	shift := 0
	if s.bias != 0 {
		shift = boundedShift(float64(s.bias)*math.Max(1, s.deviation*p.CurveShiftDeviationScale), 2*p.MaxBinsPerSide)
	}
	if shift != 0 {
		maxShift := 2*p.MaxBinsPerSide - 2*bins
		if absInt(shift) > maxShift {
			capped := maxShift * sign(shift)
			rec.Rationale = append(rec.Rationale, fmt.Sprintf("Center shift capped from %d to %d bins to stay within %d total bins", shift, capped, 2*p.MaxBinsPerSide+1))
			shift = capped
		}
	}
	if shift != 0 {
		rec.Rationale = append(rec.Rationale, fmt.Sprintf("Liquidity leans %s (%s): center shifted %+d bins", biasWord(shift), s.biasSource, shift))
	}
	if s.deviation > p.LargeDeviationThreshold {
		rec.Rationale = append(rec.Rationale, fmt.Sprintf("Pool price deviates %.1f%% from oracle: coverage extended toward the mean-reversion zone", s.deviation*100))
	}
	r.noteCeiling(rec, base, p.CurveVolatilityMultiplier, s.volatility, bins)

	rec.RecommendedBinsPerSide = model.IntPtr(bins)
	rec.CenterBin, rec.MinBinID, rec.MaxBinID = curveRange(s.activeBin, bins, shift)
}

// curveRange extends only the boundary on the side of the shift.
func curveRange(activeBin, bins, shift int) (center, lower, upper int) {
	center = activeBin + shift
	lower = activeBin - bins
	upper = activeBin + bins
	if shift > 0 {
		upper += shift
	} else {
		lower += shift
	}
	return center, lower, upper
}

func (r *Recommender) bidAskFloor(pairMin int) int {
	return minInt(maxInt(pairMin, r.params.BidAskBaseBins), r.params.MaxBinsPerSide)
}

func (r *Recommender) sizeBidAsk(rec *model.RangeRecommendation, s signals, rctx model.RangeRecommendationContext) {
	p := r.params

	atrAdj := 0.0
	atrState := "flat"
	if s.atr != nil {
		switch {
		case *s.atr > p.ATRExpandingThreshold:
			atrAdj, atrState = p.ATRAdjustment, "expanding"
		case *s.atr < p.ATRContractingThreshold:
			atrAdj, atrState = -p.ATRAdjustment, "contracting"
		}
	}

	bidTarget := p.BidCoverageBase + atrAdj
	if s.bias < 0 {
		bidTarget -= p.CoverageBiasAdjustment
	}
	bidTarget = clamp(bidTarget, p.BidCoverageMin, p.BidCoverageMax)

	askTarget := p.AskCoverageBase + atrAdj
	if s.bias > 0 {
		askTarget += p.CoverageBiasAdjustment
	}
	askTarget = clamp(askTarget, p.AskCoverageMin, p.AskCoverageMax)

	minBins := maxInt(s.pairMin, p.BidAskBaseBins)
	floor := r.bidAskFloor(s.pairMin)
	fallback := clampBins(roundInt(float64(minBins)+s.volatility*p.BidAskVolatilityMultiplier), floor, p.MaxBinsPerSide)

	bidBins, bidNote := r.sideSpan("Bid", rctx.BidCoverageNodes, s.activeBin, bidTarget, fallback, floor)
	askBins, askNote := r.sideSpan("Ask", rctx.AskCoverageNodes, s.activeBin, askTarget, fallback, floor)
	rec.Rationale = append(rec.Rationale, bidNote, askNote,
		fmt.Sprintf("Volatility %.1f%% (%s)", s.volatility*100, s.volSource))

	shift := boundedShift((s.deviation*p.DirectionalDeviationScale+1)*float64(s.bias), p.MaxBinsPerSide)
	switch {
	case shift > 0:
		askBins = minInt(askBins+shift, p.MaxBinsPerSide)
		rec.Rationale = append(rec.Rationale, fmt.Sprintf("Liquidity leans up (%s): ask side extended by %d bins to %d", s.biasSource, shift, askBins))
	case shift < 0:
		bidBins = minInt(bidBins-shift, p.MaxBinsPerSide)
		rec.Rationale = append(rec.Rationale, fmt.Sprintf("Liquidity leans down (%s): bid side extended by %d bins to %d", s.biasSource, -shift, bidBins))
	}
	if s.deviation > p.LargeDeviationThreshold {
		rec.Rationale = append(rec.Rationale, fmt.Sprintf("Pool price deviates %.1f%% from oracle: expect mean reversion", s.deviation*100))
	}
	if s.atr != nil {
		rec.Rationale = append(rec.Rationale, fmt.Sprintf("ATR %.2f%% is %s: coverage targets adjusted by %+.0f%%", *s.atr*100, atrState, atrAdj*100))
	}

	rec.RecommendedBidBins = model.IntPtr(bidBins)
	rec.RecommendedAskBins = model.IntPtr(askBins)
	rec.CenterBin = s.activeBin
	rec.MinBinID = s.activeBin - bidBins
	rec.MaxBinID = s.activeBin + askBins
}

// sideSpan walks depth nodes, nearest first, until target coverage is reached.
func (r *Recommender) sideSpan(side string, nodes []model.SideDepthNode, activeBin int, target float64, fallback, floor int) (int, string) {
	if len(nodes) == 0 {
		return fallback, fmt.Sprintf("%s side: %d bins from volatility (no depth data)", side, fallback)
	}

	var covered float64
	span := 0
	for _, n := range nodes {
		covered += n.Weight
		if d := absInt(n.BinID - activeBin); d > span {
			span = d
		}
		if covered >= target-1e-9 {
			break
		}
	}
	bins := clampBins(span, floor, r.params.MaxBinsPerSide)
	return bins, fmt.Sprintf("%s side: %d bins covering %.0f%% of depth (target %.0f%%)", side, bins, math.Min(covered, 1)*100, target*100)
}

func (r *Recommender) noteCeiling(rec *model.RangeRecommendation, base int, multiplier, volatility float64, bins int) {
	raw := roundInt(float64(base) + volatility*multiplier)
	if raw > r.params.MaxBinsPerSide && bins == r.params.MaxBinsPerSide {
		rec.Rationale = append(rec.Rationale, fmt.Sprintf("Capped at %d bins per side (from %d) by the %d-bin transaction limit", bins, raw, 2*r.params.MaxBinsPerSide+1))
	}
}

func biasWord(v int) string {
	if v > 0 {
		return "up"
	}
	return "down"
}
