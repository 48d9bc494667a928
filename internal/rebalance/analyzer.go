package rebalance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"dlmmScope/internal/market"
	"dlmmScope/internal/metrics"
	"dlmmScope/internal/model"
)

// SOLMint is the wrapped SOL mint used to price transaction fees.
const SOLMint = "So11111111111111111111111111111111111111112"

// PoolSource returns a fresh pool snapshot.
type PoolSource interface {
	GetPoolState(ctx context.Context, address string) (model.PoolState, error)
}

// HistorySource serves fee claims and snapshots of a position.
type HistorySource interface {
	GetPositionFeeClaims(ctx context.Context, positionAddress string, lookbackDays int) ([]model.FeeClaim, error)
	GetPositionSnapshotRange(ctx context.Context, positionAddress string, days int) (model.SnapshotRange, error)
}

// PriceSource quotes USD prices.
type PriceSource interface {
	GetUsdPrice(ctx context.Context, mint string) (float64, error)
}

// DefaultFallbackSOLPrice prices transaction fees when the oracle has no SOL quote.
const DefaultFallbackSOLPrice = 150.0

// Config tunes the analyzer. Zero values select the defaults of DefaultConfig;
// EdgeBuffer is a pointer so that an explicit 0 stays distinguishable from unset.
type Config struct {
	EdgeBuffer          *int
	FeeLookbackDays     int
	SnapshotDays        int
	PriorityFeeLamports uint64
	FallbackSOLPrice    float64
	FetchTimeout        time.Duration
}

// DefaultConfig returns the analyzer defaults.
func DefaultConfig() Config {
	return Config{
		EdgeBuffer:       model.IntPtr(DefaultEdgeBuffer),
		FeeLookbackDays:  7,
		SnapshotDays:     30,
		FallbackSOLPrice: DefaultFallbackSOLPrice,
		FetchTimeout:     5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.EdgeBuffer == nil || *c.EdgeBuffer < 0 {
		c.EdgeBuffer = def.EdgeBuffer
	}
	if c.FeeLookbackDays <= 0 {
		c.FeeLookbackDays = def.FeeLookbackDays
	}
	if c.SnapshotDays <= 0 {
		c.SnapshotDays = def.SnapshotDays
	}
	if c.FallbackSOLPrice <= 0 {
		c.FallbackSOLPrice = def.FallbackSOLPrice
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = def.FetchTimeout
	}
	return c
}

// Options override the preview width for a single analysis.
type Options struct {
	BinsPerSide int
}

// Analyzer produces rebalance reports for existing positions.
type Analyzer struct {
	pools   PoolSource
	history HistorySource
	prices  PriceSource
	cfg     Config
	guard   market.Guard
	metrics *metrics.Recorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewAnalyzer creates an Analyzer. Any source may be nil; the analysis then degrades.
func NewAnalyzer(pools PoolSource, history HistorySource, prices PriceSource, cfg Config, recorder *metrics.Recorder, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Analyzer{
		pools:   pools,
		history: history,
		prices:  prices,
		cfg:     cfg,
		guard:   market.Guard{Timeout: cfg.FetchTimeout, Logger: logger, Metrics: recorder},
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// Analyze classifies the position, previews a re-centered range and weighs its cost.
// Failures of any collaborator degrade the report and are listed in Warnings.
func (a *Analyzer) Analyze(ctx context.Context, pos model.Position, opts Options) model.RebalanceReport {
	report := model.RebalanceReport{Position: pos}

	var pool *model.PoolState
	if a.pools != nil {
		if state, ok := market.TryFetch(ctx, a.guard, "pool", func(ctx context.Context) (model.PoolState, error) {
			return a.pools.GetPoolState(ctx, pos.PoolAddress)
		}); ok {
			pool = &state
		}
	}

	var activeBin *int
	switch {
	case pool != nil && pool.HasActiveBin():
		activeBin = pool.ActiveBin
	case pos.LastActiveBin != nil:
		activeBin = pos.LastActiveBin
		report.ActiveBinCached = true
		seen := "an unknown time"
		if pos.LastSeenAt != nil {
			seen = pos.LastSeenAt.UTC().Format(time.RFC3339)
		}
		report.Warnings = append(report.Warnings, fmt.Sprintf("pool data unavailable; using active bin cached at %s", seen))
	default:
		report.Warnings = append(report.Warnings, "pool data unavailable and no cached active bin")
	}

	report.ActiveBin = activeBin
	report.Analysis = AnalyzeRange(pos, activeBin, *a.cfg.EdgeBuffer)
	a.metrics.RebalanceAnalysis(string(report.Analysis.Priority))

	var (
		claims   []model.FeeClaim
		history  model.SnapshotRange
		solPrice float64
		solOK    bool
	)
	var wg sync.WaitGroup
	if a.history != nil && pos.Address != "" {
		wg.Add(2)
		go func() {
			defer wg.Done()
			claims, _ = market.TryFetch(ctx, a.guard, "fee_claims", func(ctx context.Context) ([]model.FeeClaim, error) {
				return a.history.GetPositionFeeClaims(ctx, pos.Address, a.cfg.FeeLookbackDays)
			})
		}()
		go func() {
			defer wg.Done()
			history, _ = market.TryFetch(ctx, a.guard, "snapshots", func(ctx context.Context) (model.SnapshotRange, error) {
				return a.history.GetPositionSnapshotRange(ctx, pos.Address, a.cfg.SnapshotDays)
			})
		}()
	}
	if a.prices != nil && activeBin != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			solPrice, solOK = market.TryFetch(ctx, a.guard, "sol_price", func(ctx context.Context) (float64, error) {
				return a.prices.GetUsdPrice(ctx, SOLMint)
			})
		}()
	}
	wg.Wait()

	report.Metrics = SnapshotMetrics(history)

	if activeBin == nil {
		return report
	}

	preview := BuildPreview(pos, *activeBin, opts.BinsPerSide)
	report.Preview = &preview

	if !solOK || solPrice <= 0 {
		solPrice = a.cfg.FallbackSOLPrice
		report.Warnings = append(report.Warnings, fmt.Sprintf("SOL price unavailable; rebalance cost uses fallback $%.2f", solPrice))
	}
	cost := RebalanceCostUSD(RebalanceTxCount, a.cfg.PriorityFeeLamports, solPrice)

	baseline, source := BaselineDailyFees(pos, pool, claims, a.now(), a.cfg.FeeLookbackDays)
	switch source {
	case FeeSourcePoolAPR:
		report.Warnings = append(report.Warnings, "no fee history; fees estimated from pool APR")
	case FeeSourceNone:
		report.Warnings = append(report.Warnings, "no fee history or pool APR; fee estimates are zero")
	}

	cb := CostBenefit(baseline, source, report.Analysis.Status, pos, preview, cost)
	report.CostBenefit = &cb

	a.logger.Debug("rebalance analyzed",
		zap.String("position", pos.Address),
		zap.String("status", string(report.Analysis.Status)),
		zap.String("priority", string(report.Analysis.Priority)),
		zap.String("break_even", cb.BreakEvenLabel),
		zap.Int("warnings", len(report.Warnings)),
	)
	return report
}
