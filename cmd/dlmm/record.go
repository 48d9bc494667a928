package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dlmmScope/internal/model"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Register positions and their fee and snapshot history in Postgres",
	}

	positionCmd := &cobra.Command{
		Use:   "position <address>",
		Short: "Register or update a position",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecordPosition,
	}
	positionCmd.Flags().String("pool", "", "pool address")
	positionCmd.Flags().Int("lower", 0, "lower bin id")
	positionCmd.Flags().Int("upper", 0, "upper bin id")
	positionCmd.Flags().Float64("value", 0, "position value in USD")
	positionCmd.Flags().String("created-at", "", "creation time (unix seconds or RFC3339, default now)")
	_ = positionCmd.MarkFlagRequired("pool")

	claimCmd := &cobra.Command{
		Use:   "claim <position>",
		Short: "Record a fee harvest",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecordClaim,
	}
	claimCmd.Flags().Float64("usd", 0, "claimed fees in USD")
	claimCmd.Flags().String("at", "", "claim time (unix seconds or RFC3339, default now)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot <position>",
		Short: "Record a position valuation",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecordSnapshot,
	}
	snapshotCmd.Flags().Int("active-bin", 0, "active bin at snapshot time")
	snapshotCmd.Flags().Float64("value", 0, "position value in USD")
	snapshotCmd.Flags().Float64("hodl-value", 0, "value of the deposited tokens if held")
	snapshotCmd.Flags().String("at", "", "snapshot time (unix seconds or RFC3339, default now)")

	cmd.AddCommand(positionCmd, claimCmd, snapshotCmd)
	return cmd
}

func runRecordPosition(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pool, _ := cmd.Flags().GetString("pool")
	lower, _ := cmd.Flags().GetInt("lower")
	upper, _ := cmd.Flags().GetInt("upper")
	value, _ := cmd.Flags().GetFloat64("value")
	createdRaw, _ := cmd.Flags().GetString("created-at")
	if upper < lower {
		return fmt.Errorf("upper bin %d is below lower bin %d", upper, lower)
	}
	createdAt, err := parseTimestamp(createdRaw)
	if err != nil {
		return fmt.Errorf("parse created-at: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	store, err := openStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	pos := model.Position{
		Address:     args[0],
		PoolAddress: pool,
		LowerBinID:  lower,
		UpperBinID:  upper,
		ValueUSD:    value,
		CreatedAt:   createdAt,
	}
	if err := store.UpsertPositions(ctx, []model.Position{pos}); err != nil {
		return err
	}
	logger.Info("position recorded", zap.String("position", pos.Address), zap.String("pool", pos.PoolAddress))
	return nil
}

func runRecordClaim(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	usd, _ := cmd.Flags().GetFloat64("usd")
	atRaw, _ := cmd.Flags().GetString("at")
	if usd < 0 {
		return fmt.Errorf("claimed usd must not be negative")
	}
	at, err := parseTimestamp(atRaw)
	if err != nil {
		return fmt.Errorf("parse at: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	store, err := openStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InsertFeeClaims(ctx, args[0], []model.FeeClaim{{Timestamp: at, ClaimedUSD: usd}}); err != nil {
		return err
	}
	logger.Info("fee claim recorded", zap.String("position", args[0]), zap.Float64("usd", usd))
	return nil
}

func runRecordSnapshot(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	activeBin, _ := cmd.Flags().GetInt("active-bin")
	value, _ := cmd.Flags().GetFloat64("value")
	hodl, _ := cmd.Flags().GetFloat64("hodl-value")
	atRaw, _ := cmd.Flags().GetString("at")
	at, err := parseTimestamp(atRaw)
	if err != nil {
		return fmt.Errorf("parse at: %w", err)
	}

	ctx, stop := signalContext()
	defer stop()

	store, err := openStore(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	pos, err := store.LoadPosition(ctx, args[0])
	if err != nil {
		return err
	}
	snap := model.PositionSnapshot{
		Timestamp:    at,
		ActiveBin:    activeBin,
		InRange:      activeBin >= pos.LowerBinID && activeBin <= pos.UpperBinID,
		ValueUSD:     value,
		HodlValueUSD: hodl,
	}
	if err := store.InsertSnapshots(ctx, pos.Address, []model.PositionSnapshot{snap}); err != nil {
		return err
	}
	if err := store.TouchActiveBin(ctx, pos.Address, activeBin, at); err != nil {
		return err
	}
	logger.Info("snapshot recorded", zap.String("position", pos.Address), zap.Bool("in_range", snap.InRange))
	return nil
}

// parseTimestamp accepts unix seconds or RFC3339; empty means now.
func parseTimestamp(input string) (time.Time, error) {
	if input == "" {
		return time.Now().UTC(), nil
	}
	if secs, err := strconv.ParseInt(input, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
