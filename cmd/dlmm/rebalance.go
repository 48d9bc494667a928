package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dlmmScope/internal/model"
	"dlmmScope/internal/rebalance"
	"dlmmScope/internal/storage/postgres"
)

func newRebalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebalance <position>",
		Short: "Assess whether a position should be re-centered and what it would cost",
		Long:  "Loads the position from Postgres when pg-dsn is set, otherwise from --pool, --lower and --upper.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRebalance,
	}
	cmd.Flags().String("pool", "", "pool address (when the position is not registered)")
	cmd.Flags().Int("lower", 0, "lower bin id")
	cmd.Flags().Int("upper", 0, "upper bin id")
	cmd.Flags().Float64("value", 0, "position value in USD")
	cmd.Flags().Int("bins-per-side", 0, "preview half-width override (default keeps the current width)")
	cmd.Flags().Int("edge-buffer", 2, "bins from either edge that count as near the edge")
	cmd.Flags().Uint64("priority-fee-lamports", 0, "priority fee per transaction")
	cmd.Flags().Float64("fallback-sol-price", 150, "SOL/USD used when the oracle is unavailable")
	return cmd
}

func runRebalance(cmd *cobra.Command, args []string) error {
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

	pos, err := resolvePosition(ctx, cmd, a.store, args[0])
	if err != nil {
		return err
	}
	binsPerSide, _ := cmd.Flags().GetInt("bins-per-side")

	report := a.analyzer.Analyze(ctx, pos, rebalance.Options{BinsPerSide: binsPerSide})

	if a.store != nil && report.ActiveBin != nil && !report.ActiveBinCached {
		if err := a.store.TouchActiveBin(ctx, pos.Address, *report.ActiveBin, time.Now()); err != nil && !errors.Is(err, postgres.ErrPositionNotFound) {
			logger.Warn("cache active bin failed", zap.String("position", pos.Address), zap.Error(err))
		}
	}

	logger.Info("rebalance analyzed",
		zap.String("position", pos.Address),
		zap.String("status", string(report.Analysis.Status)),
		zap.String("priority", string(report.Analysis.Priority)),
		zap.Strings("warnings", report.Warnings),
	)
	a.record(model.DecisionRecord{
		Kind:            model.DecisionRebalance,
		PoolAddress:     pos.PoolAddress,
		PositionAddress: pos.Address,
		Payload:         report,
	})

	return writeJSON(cmd.OutOrStdout(), report)
}

// resolvePosition prefers the registered position and falls back to flags.
func resolvePosition(ctx context.Context, cmd *cobra.Command, store *postgres.Store, address string) (model.Position, error) {
	if store != nil {
		pos, err := store.LoadPosition(ctx, address)
		if err == nil {
			return pos, nil
		}
		if !errors.Is(err, postgres.ErrPositionNotFound) {
			return model.Position{}, err
		}
	}

	pool, _ := cmd.Flags().GetString("pool")
	lower, _ := cmd.Flags().GetInt("lower")
	upper, _ := cmd.Flags().GetInt("upper")
	value, _ := cmd.Flags().GetFloat64("value")
	if pool == "" {
		return model.Position{}, fmt.Errorf("position %s is not registered; pass --pool, --lower and --upper", address)
	}
	if upper < lower {
		return model.Position{}, fmt.Errorf("upper bin %d is below lower bin %d", upper, lower)
	}
	return model.Position{
		Address:     address,
		PoolAddress: pool,
		LowerBinID:  lower,
		UpperBinID:  upper,
		ValueUSD:    value,
		CreatedAt:   time.Now(),
	}, nil
}
