package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL        string `validate:"required,url"`
	PoolAPIURL    string `validate:"required,url"`
	JupiterURL    string `validate:"required,url"`
	BirdeyeURL    string `validate:"required,url"`
	BirdeyeKey    string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string `validate:"omitempty,url"`
	PGDSN         string
	Journal       string
	MetricsAddr   string `validate:"omitempty,hostname_port"`
	LogLevel      string `validate:"oneof=debug info warn error"`

	OracleTimeout  time.Duration `validate:"gt=0"`
	SpotTTL        time.Duration `validate:"gt=0"`
	SeriesTTL      time.Duration `validate:"gt=0"`
	RequestsPerSec float64       `validate:"gt=0"`
	MaxRetries     int           `validate:"gte=0,lte=10"`
	RetryBackoff   time.Duration `validate:"gt=0"`

	BinsToSample        int `validate:"gte=1,lte=200"`
	LookbackHours       int `validate:"gte=1,lte=720"`
	EdgeBuffer          int `validate:"gte=0,lte=34"`
	FeeLookbackDays     int `validate:"gte=1"`
	SnapshotDays        int `validate:"gte=1"`
	PriorityFeeLamports uint64
	FallbackSOLPrice    float64 `validate:"gt=0"`

	Stablecoins    []string
	VolatileTokens []string
	Tuning         map[string]float64
}

// Lookback returns the price history window.
func (c Config) Lookback() time.Duration {
	return time.Duration(c.LookbackHours) * time.Hour
}

var validate = validator.New()

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DLMM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", "https://api.mainnet-beta.solana.com")
	v.SetDefault("pool-api", "https://dlmm-api.meteora.ag")
	v.SetDefault("jupiter-url", "https://lite-api.jup.ag")
	v.SetDefault("birdeye-url", "https://public-api.birdeye.so")
	v.SetDefault("openai-model", "gpt-4o-mini")
	v.SetDefault("journal", "./data/decisions.jsonl")
	v.SetDefault("log-level", "info")
	v.SetDefault("oracle-timeout", 5*time.Second)
	v.SetDefault("spot-ttl", time.Minute)
	v.SetDefault("series-ttl", 5*time.Minute)
	v.SetDefault("requests-per-sec", 5.0)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 250*time.Millisecond)
	v.SetDefault("bins-to-sample", 24)
	v.SetDefault("lookback-hours", 6)
	v.SetDefault("edge-buffer", 2)
	v.SetDefault("fee-lookback-days", 7)
	v.SetDefault("snapshot-days", 30)
	v.SetDefault("priority-fee-lamports", uint64(0))
	v.SetDefault("fallback-sol-price", 150.0)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	tuning, err := getFloatMap(v, "tuning")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		RPCURL:        v.GetString("rpc"),
		PoolAPIURL:    v.GetString("pool-api"),
		JupiterURL:    v.GetString("jupiter-url"),
		BirdeyeURL:    v.GetString("birdeye-url"),
		BirdeyeKey:    v.GetString("birdeye-key"),
		OpenAIKey:     v.GetString("openai-key"),
		OpenAIModel:   v.GetString("openai-model"),
		OpenAIBaseURL: v.GetString("openai-base-url"),
		PGDSN:         v.GetString("pg-dsn"),
		Journal:       v.GetString("journal"),
		MetricsAddr:   v.GetString("metrics-addr"),
		LogLevel:      strings.ToLower(v.GetString("log-level")),

		OracleTimeout:  v.GetDuration("oracle-timeout"),
		SpotTTL:        v.GetDuration("spot-ttl"),
		SeriesTTL:      v.GetDuration("series-ttl"),
		RequestsPerSec: v.GetFloat64("requests-per-sec"),
		MaxRetries:     v.GetInt("max-retries"),
		RetryBackoff:   v.GetDuration("retry-backoff"),

		BinsToSample:        v.GetInt("bins-to-sample"),
		LookbackHours:       v.GetInt("lookback-hours"),
		EdgeBuffer:          v.GetInt("edge-buffer"),
		FeeLookbackDays:     v.GetInt("fee-lookback-days"),
		SnapshotDays:        v.GetInt("snapshot-days"),
		PriorityFeeLamports: v.GetUint64("priority-fee-lamports"),
		FallbackSOLPrice:    v.GetFloat64("fallback-sol-price"),

		Stablecoins:    getStringSlice(v, "stablecoins"),
		VolatileTokens: getStringSlice(v, "volatile-tokens"),
		Tuning:         tuning,
	}

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
