package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"dlmmScope/internal/metrics"
	"dlmmScope/internal/model"
)

var (
	// ErrNoPrice is returned when the oracle has no USD quote for a mint.
	ErrNoPrice = errors.New("no usd price")
	// ErrSeriesUnavailable is returned when no historical series can be served.
	ErrSeriesUnavailable = errors.New("price series unavailable")
)

const (
	sourceJupiter = "jupiter"
	sourceBirdeye = "birdeye"

	defaultJupiterURL = "https://lite-api.jup.ag"
	defaultBirdeyeURL = "https://public-api.birdeye.so"

	cacheSize = 1024
)

// Options configures the oracle client.
type Options struct {
	JupiterURL     string
	BirdeyeURL     string
	BirdeyeAPIKey  string
	Timeout        time.Duration
	SpotTTL        time.Duration
	SeriesTTL      time.Duration
	RequestsPerSec float64
	MaxRetries     int
	RetryBackoff   time.Duration
}

func (o Options) withDefaults() Options {
	if o.JupiterURL == "" {
		o.JupiterURL = defaultJupiterURL
	}
	if o.BirdeyeURL == "" {
		o.BirdeyeURL = defaultBirdeyeURL
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.SpotTTL <= 0 {
		o.SpotTTL = time.Minute
	}
	if o.SeriesTTL <= 0 {
		o.SeriesTTL = 5 * time.Minute
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 250 * time.Millisecond
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	o.JupiterURL = strings.TrimRight(o.JupiterURL, "/")
	o.BirdeyeURL = strings.TrimRight(o.BirdeyeURL, "/")
	return o
}

// Client serves spot and historical USD prices with caching, rate limiting and retries.
type Client struct {
	opts       Options
	httpClient *http.Client
	limiter    *rate.Limiter
	spot       *expirable.LRU[string, float64]
	series     *expirable.LRU[string, []model.PricePoint]
	group      singleflight.Group
	metrics    *metrics.Recorder
	logger     *zap.Logger
	now        func() time.Time
}

// New builds an oracle client. recorder may be nil.
func New(opts Options, recorder *metrics.Recorder, logger *zap.Logger) *Client {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
		if b := int(opts.RequestsPerSec); b > burst {
			burst = b
		}
	}

	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		spot:       expirable.NewLRU[string, float64](cacheSize, nil, opts.SpotTTL),
		series:     expirable.NewLRU[string, []model.PricePoint](cacheSize, nil, opts.SeriesTTL),
		metrics:    recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// StatusError is a non-200 response from an oracle API.
type StatusError struct {
	Source     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Source, e.StatusCode, e.Body)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// getJSON issues a GET request and decodes the JSON body into out. Rate limits (429) and
// server errors are retried with exponential backoff; other failures are returned at once.
func (c *Client) getJSON(ctx context.Context, source, url string, header http.Header, out interface{}) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.opts.RetryBackoff
	policy.MaxElapsedTime = 0
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.opts.MaxRetries)), ctx)

	operation := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		for key, values := range header {
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
		req.Header.Set("Accept", "application/json")

		started := time.Now()
		resp, err := c.httpClient.Do(req)
		elapsed := time.Since(started).Seconds()
		if err != nil {
			c.metrics.OracleRequest(source, "error", elapsed)
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			c.metrics.OracleRequest(source, fmt.Sprintf("http_%d", resp.StatusCode), elapsed)
			statusErr := &StatusError{Source: source, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
			if retryable(resp.StatusCode) {
				c.logger.Debug("oracle request retry", zap.String("source", source), zap.Int("status", resp.StatusCode))
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.metrics.OracleRequest(source, "decode_error", elapsed)
			return backoff.Permanent(fmt.Errorf("%s: decode response: %w", source, err))
		}
		c.metrics.OracleRequest(source, "ok", elapsed)
		return nil
	}

	return backoff.Retry(operation, retry)
}
