package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dlmmScope/internal/recommend"
	"dlmmScope/internal/storage"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print recorded decisions",
		Args:  cobra.NoArgs,
		RunE:  runJournal,
	}
	cmd.Flags().String("kind", "", "only show this kind (context, recommendation, rebalance)")
	cmd.Flags().String("pool", "", "only show decisions for this pool")
	cmd.Flags().String("since", "", "only show decisions at or after this time (RFC3339 or unix seconds)")
	return cmd
}

func runJournal(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Journal == "" {
		return fmt.Errorf("journal path is required")
	}
	kind, _ := cmd.Flags().GetString("kind")
	pool, _ := cmd.Flags().GetString("pool")
	since, _ := cmd.Flags().GetString("since")

	filter := storage.JournalFilter{Kind: kind, Pool: pool}
	if since != "" {
		if filter.Since, err = parseTimestamp(since); err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
	}
	out, err := storage.NewJournal(cfg.Journal).Entries(filter)
	if err != nil {
		return err
	}
	if out == nil {
		out = []storage.JournalEntry{}
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func newTunablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tunables",
		Short: "List recommender parameters accepted by --tuning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defaults := recommend.DefaultParams()
			values := defaults.Values()
			for _, name := range recommend.TunableNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", name, values[name])
			}
			return nil
		},
	}
}
