package market

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"dlmmScope/internal/chain"
	"dlmmScope/internal/metrics"
	"dlmmScope/internal/model"
)

// BinSource samples bin liquidity around the active bin.
type BinSource interface {
	GetActiveBinAndNeighbors(ctx context.Context, address string, binsEachSide int) ([]model.BinLiquidity, error)
}

// PriceSource serves USD quotes and history.
type PriceSource interface {
	GetUsdPrices(ctx context.Context, mints []string) (map[string]float64, error)
	GetUsdPriceSeries(ctx context.Context, mint string, lookback time.Duration) ([]model.PricePoint, error)
}

// Config holds builder defaults.
type Config struct {
	BinsToSample   int
	Lookback       time.Duration
	FetchTimeout   time.Duration
	AlignTolerance time.Duration
}

// Options override Config for a single build.
type Options struct {
	BinsToSample int
	Lookback     time.Duration
}

// Builder assembles a RangeRecommendationContext from bins and prices.
type Builder struct {
	bins   BinSource
	prices PriceSource
	cfg    Config
	guard  Guard
	logger *zap.Logger
}

// NewBuilder creates a Builder. bins and prices may be nil; the matching signals are then skipped.
func NewBuilder(bins BinSource, prices PriceSource, cfg Config, recorder *metrics.Recorder, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BinsToSample <= 0 {
		cfg.BinsToSample = 24
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 6 * time.Hour
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.AlignTolerance <= 0 {
		cfg.AlignTolerance = 5 * time.Minute
	}
	return &Builder{
		bins:   bins,
		prices: prices,
		cfg:    cfg,
		guard:  Guard{Timeout: cfg.FetchTimeout, Logger: logger, Metrics: recorder},
		logger: logger,
	}
}

// Guard returns the fetch guard shared with other components.
func (b *Builder) Guard() Guard {
	return b.guard
}

// BuildRangeContext samples the pool and price history. Every signal is fetched independently;
// failures leave the matching fields empty.
func (b *Builder) BuildRangeContext(ctx context.Context, pool model.PoolState, opts Options) model.RangeRecommendationContext {
	binsToSample := opts.BinsToSample
	if binsToSample <= 0 {
		binsToSample = b.cfg.BinsToSample
	}
	lookback := opts.Lookback
	if lookback <= 0 {
		lookback = b.cfg.Lookback
	}

	var out model.RangeRecommendationContext
	if pool.Price > 0 {
		out.PoolPrice = model.FloatPtr(pool.Price)
	}

	var (
		bins             []model.BinLiquidity
		binsOK           bool
		usd              map[string]float64
		seriesX, seriesY []model.PricePoint
		seriesOK         [2]bool
	)

	var wg sync.WaitGroup
	if b.bins != nil && pool.HasActiveBin() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bins, binsOK = TryFetch(ctx, b.guard, "bins", func(ctx context.Context) ([]model.BinLiquidity, error) {
				return b.bins.GetActiveBinAndNeighbors(ctx, pool.Address, binsToSample)
			})
		}()
	} else if !pool.HasActiveBin() {
		b.logger.Warn("signal unavailable", zap.String("signal", "bins"), zap.String("pool", pool.Address), zap.String("reason", "no active bin"))
	}
	if b.prices != nil {
		mints := []string{pool.TokenX.Mint, pool.TokenY.Mint}
		wg.Add(1 + len(mints))
		go func() {
			defer wg.Done()
			usd, _ = TryFetch(ctx, b.guard, "usd_prices", func(ctx context.Context) (map[string]float64, error) {
				return b.prices.GetUsdPrices(ctx, mints)
			})
		}()
		for i, mint := range mints {
			i, mint := i, mint
			signal := [2]string{"series_x", "series_y"}[i]
			go func() {
				defer wg.Done()
				series, ok := TryFetch(ctx, b.guard, signal, func(ctx context.Context) ([]model.PricePoint, error) {
					return b.prices.GetUsdPriceSeries(ctx, mint, lookback)
				})
				if i == 0 {
					seriesX = series
				} else {
					seriesY = series
				}
				seriesOK[i] = ok
			}()
		}
	}
	wg.Wait()

	var priced []PricedBin
	if binsOK && len(bins) > 0 {
		priced = priceBins(pool, bins, usd)
		out.VolumeNodes = BuildVolumeNodes(priced, TopVolumeNodes)
		out.BidCoverageNodes, out.AskCoverageNodes = PartitionSides(priced, *pool.ActiveBin)
	}

	px, okX := usd[pool.TokenX.Mint]
	py, okY := usd[pool.TokenY.Mint]
	if okX && okY && px > 0 && py > 0 {
		out.OraclePrice = model.FloatPtr(px / py)
	}

	var stats SeriesMetrics
	var statsOK bool
	if seriesOK[0] && seriesOK[1] {
		stats, statsOK = ComputeSeriesMetrics(AlignRatioSeries(seriesX, seriesY, b.cfg.AlignTolerance))
		if !statsOK {
			b.logger.Warn("signal unavailable", zap.String("signal", "series_ratio"), zap.String("pool", pool.Address),
				zap.Int("points_x", len(seriesX)), zap.Int("points_y", len(seriesY)))
		}
	}
	if !statsOK && len(priced) > 0 {
		stats, statsOK = ComputeSeriesMetrics(binPriceSeries(priced))
	}
	if statsOK {
		out.VolatilityScore = model.FloatPtr(stats.VolatilityScore)
		out.ATRPercent = model.FloatPtr(stats.ATRPercent)
		out.RecentHighPrice = model.FloatPtr(stats.High)
		out.RecentLowPrice = model.FloatPtr(stats.Low)
	}

	b.logger.Debug("range context built",
		zap.String("pool", pool.Address),
		zap.Int("bins", len(bins)),
		zap.Int("volume_nodes", len(out.VolumeNodes)),
		zap.Bool("from_series", seriesOK[0] && seriesOK[1] && statsOK),
	)
	return out
}

// priceBins prices every sampled bin relative to the active bin and values it in USD. A token
// without a quote is valued through the pool price; with no quote at all bins are valued in token Y.
func priceBins(pool model.PoolState, bins []model.BinLiquidity, usd map[string]float64) []PricedBin {
	active := *pool.ActiveBin
	px, okX := usd[pool.TokenX.Mint]
	py, okY := usd[pool.TokenY.Mint]
	okX = okX && px > 0
	okY = okY && py > 0

	switch {
	case okX && okY:
	case okX && pool.Price > 0:
		py = px / pool.Price
	case okY && pool.Price > 0:
		px = py * pool.Price
	default:
		px, py = pool.Price, 1
	}

	out := make([]PricedBin, 0, len(bins))
	for _, bin := range bins {
		var price float64
		if pool.Price > 0 {
			price = chain.PriceAtOffset(pool.Price, bin.BinID-active, pool.BinStep)
		} else {
			price = chain.BinPrice(bin.BinID, pool.BinStep, pool.TokenX.Decimals, pool.TokenY.Decimals)
		}
		notional := chain.UIAmount(bin.AmountX, pool.TokenX.Decimals)*px + chain.UIAmount(bin.AmountY, pool.TokenY.Decimals)*py
		out = append(out, PricedBin{BinID: bin.BinID, Price: price, Notional: notional})
	}
	return out
}

func binPriceSeries(bins []PricedBin) []float64 {
	sorted := make([]PricedBin, len(bins))
	copy(sorted, bins)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].BinID < sorted[j].BinID })

	prices := make([]float64, 0, len(sorted))
	for _, b := range sorted {
		prices = append(prices, b.Price)
	}
	return prices
}
