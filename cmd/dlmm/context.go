package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dlmmScope/internal/market"
	"dlmmScope/internal/model"
)

func newContextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context <pool>",
		Short: "Build the market context for a pool",
		Args:  cobra.ExactArgs(1),
		RunE:  runContext,
	}
	cmd.Flags().Int("bins-to-sample", 24, "bins sampled on each side of the active bin")
	cmd.Flags().Int("lookback-hours", 6, "price history window in hours")
	return cmd
}

func runContext(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signalContext()
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	pool, err := a.pools.GetPoolState(ctx, args[0])
	if err != nil {
		return err
	}
	rctx := a.builder.BuildRangeContext(ctx, pool, market.Options{})

	logger.Info("context built",
		zap.String("pool", pool.Address),
		zap.String("pair", pool.Name()),
		zap.Int("volume_nodes", len(rctx.VolumeNodes)),
		zap.Bool("empty", rctx.IsEmpty()),
	)
	a.record(model.DecisionRecord{Kind: model.DecisionContext, PoolAddress: pool.Address, Payload: rctx})

	return writeJSON(cmd.OutOrStdout(), struct {
		Pool    model.PoolState                  `json:"pool"`
		Context model.RangeRecommendationContext `json:"context"`
	}{pool, rctx})
}
