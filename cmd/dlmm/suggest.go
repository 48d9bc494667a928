package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dlmmScope/internal/advisor"
	"dlmmScope/internal/market"
	"dlmmScope/internal/model"
)

func newSuggestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest <pool>",
		Short: "Recommend a bin range for a new position",
		Args:  cobra.ExactArgs(1),
		RunE:  runSuggest,
	}
	cmd.Flags().String("strategy", "spot", "liquidity strategy (spot, curve, bidask)")
	cmd.Flags().Bool("advisor", false, "ask the LLM advisor to refine the range (requires openai-key)")
	cmd.Flags().String("openai-key", "", "OpenAI API key")
	cmd.Flags().String("openai-model", "", "OpenAI chat model")
	cmd.Flags().String("openai-base-url", "", "OpenAI compatible API base URL")
	cmd.Flags().Int("bins-to-sample", 24, "bins sampled on each side of the active bin")
	return cmd
}

func runSuggest(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	strategyName, _ := cmd.Flags().GetString("strategy")
	strategy, err := model.ParseStrategy(strategyName)
	if err != nil {
		return err
	}
	useAdvisor, _ := cmd.Flags().GetBool("advisor")

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

	rec, err := a.recommender.SuggestRange(ctx, strategy, pool, &rctx)
	if err != nil {
		return err
	}

	if useAdvisor {
		if a.advisor == nil {
			logger.Warn("advisor requested without openai-key; using algorithmic range")
		} else {
			advice, err := a.advisor.Advise(ctx, advisor.Request{Strategy: strategy, Pool: pool, Context: &rctx, Algorithmic: &rec})
			if err != nil {
				logger.Warn("advisor unavailable; using algorithmic range", zap.Error(err))
			} else if rec, err = a.recommender.ApplyAdvice(pool, rec, advice); err != nil {
				return err
			}
		}
	}

	logger.Info("range suggested",
		zap.String("pool", pool.Address),
		zap.String("strategy", rec.Strategy.String()),
		zap.Int("min_bin", rec.MinBinID),
		zap.Int("max_bin", rec.MaxBinID),
	)
	a.record(
		model.DecisionRecord{Kind: model.DecisionContext, PoolAddress: pool.Address, Payload: rctx},
		model.DecisionRecord{Kind: model.DecisionRecommendation, PoolAddress: pool.Address, Payload: rec},
	)

	return writeJSON(cmd.OutOrStdout(), rec)
}
