package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "dlmm",
		Short:        "Range recommendations and rebalance analysis for Meteora DLMM pools",
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file path")
	pf.String("rpc", "", "Solana RPC URL")
	pf.String("pool-api", "", "DLMM pair statistics API base URL")
	pf.String("jupiter-url", "", "Jupiter price API base URL")
	pf.String("birdeye-url", "", "Birdeye API base URL")
	pf.String("birdeye-key", "", "Birdeye API key (enables price history)")
	pf.String("pg-dsn", "", "Postgres DSN for position history")
	pf.String("journal", "", "decision journal JSONL path (empty disables)")
	pf.String("metrics-addr", "", "serve Prometheus metrics on this address while running")
	pf.String("tuning", "", "recommender overrides (comma-separated name=value)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newContextCmd())
	root.AddCommand(newSuggestCmd())
	root.AddCommand(newRebalanceCmd())
	root.AddCommand(newRecordCmd())
	root.AddCommand(newJournalCmd())
	root.AddCommand(newTunablesCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
