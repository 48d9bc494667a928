package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dlmmScope/internal/advisor"
	"dlmmScope/internal/chain"
	"dlmmScope/internal/config"
	"dlmmScope/internal/market"
	"dlmmScope/internal/metrics"
	"dlmmScope/internal/model"
	"dlmmScope/internal/oracle"
	"dlmmScope/internal/rebalance"
	"dlmmScope/internal/recommend"
	"dlmmScope/internal/storage"
	"dlmmScope/internal/storage/postgres"
)

// app holds the wired components shared by subcommands.
type app struct {
	cfg         config.Config
	logger      *zap.Logger
	metrics     *metrics.Recorder
	chain       *chain.Client
	pools       *chain.PoolProvider
	oracle      *oracle.Client
	builder     *market.Builder
	recommender *recommend.Recommender
	analyzer    *rebalance.Analyzer
	store       *postgres.Store
	journal     storage.DecisionSink
	advisor     *advisor.Advisor

	metricsServer *http.Server
}

// setup loads config and builds the logger; it is shared by every subcommand.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	params, err := recommend.DefaultParams().ApplyOverrides(cfg.Tuning)
	if err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, metrics: metrics.New()}

	a.chain, err = chain.NewClient(ctx, cfg.RPCURL, chain.ClientOptions{
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	stats := chain.NewStatsClient(cfg.PoolAPIURL, cfg.OracleTimeout, cfg.MaxRetries, cfg.RetryBackoff)
	a.pools = chain.NewPoolProvider(a.chain, stats, logger)

	a.oracle = oracle.New(oracle.Options{
		JupiterURL:     cfg.JupiterURL,
		BirdeyeURL:     cfg.BirdeyeURL,
		BirdeyeAPIKey:  cfg.BirdeyeKey,
		Timeout:        cfg.OracleTimeout,
		SpotTTL:        cfg.SpotTTL,
		SeriesTTL:      cfg.SeriesTTL,
		RequestsPerSec: cfg.RequestsPerSec,
		MaxRetries:     cfg.MaxRetries,
		RetryBackoff:   cfg.RetryBackoff,
	}, a.metrics, logger)

	a.builder = market.NewBuilder(a.pools, a.oracle, market.Config{
		BinsToSample: cfg.BinsToSample,
		Lookback:     cfg.Lookback(),
		FetchTimeout: cfg.OracleTimeout,
	}, a.metrics, logger)

	classifier := recommend.NewClassifier(cfg.Stablecoins, cfg.VolatileTokens)
	a.recommender = recommend.NewRecommender(params, classifier, a.oracle, cfg.OracleTimeout, a.metrics, logger)

	var history rebalance.HistorySource
	if cfg.PGDSN != "" {
		if a.store, err = openStore(ctx, cfg.PGDSN); err != nil {
			a.Close()
			return nil, err
		}
		history = a.store
	}
	a.analyzer = rebalance.NewAnalyzer(a.pools, history, a.oracle, rebalance.Config{
		EdgeBuffer:          &cfg.EdgeBuffer,
		FeeLookbackDays:     cfg.FeeLookbackDays,
		SnapshotDays:        cfg.SnapshotDays,
		PriorityFeeLamports: cfg.PriorityFeeLamports,
		FallbackSOLPrice:    cfg.FallbackSOLPrice,
		FetchTimeout:        cfg.OracleTimeout,
	}, a.metrics, logger)

	if cfg.Journal != "" {
		a.journal = storage.NewJournal(cfg.Journal)
	}

	if cfg.OpenAIKey != "" {
		a.advisor, err = advisor.New(advisor.Options{
			APIKey:  cfg.OpenAIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, logger)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	if cfg.MetricsAddr != "" {
		a.serveMetrics(cfg.MetricsAddr)
	}
	return a, nil
}

func openStore(ctx context.Context, dsn string) (*postgres.Store, error) {
	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func (a *app) serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := a.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()
	a.logger.Info("metrics server start", zap.String("addr", addr))
}

func (a *app) Close() {
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = a.metricsServer.Shutdown(ctx)
		cancel()
	}
	if a.store != nil {
		a.store.Close()
	}
	if a.chain != nil {
		a.chain.Close()
	}
}

// record appends decisions to the journal when one is configured.
func (a *app) record(records ...model.DecisionRecord) {
	if a.journal == nil {
		return
	}
	if err := a.journal.Append(records...); err != nil {
		a.logger.Warn("journal write failed", zap.String("path", a.cfg.Journal), zap.Error(err))
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
