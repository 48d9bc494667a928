package oracle

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// maxIDsPerRequest is the Jupiter price API limit on ids per call.
const maxIDsPerRequest = 50

type jupiterQuote struct {
	USDPrice float64 `json:"usdPrice"`
}

// GetUsdPrice returns the USD price of a mint.
func (c *Client) GetUsdPrice(ctx context.Context, mint string) (float64, error) {
	prices, err := c.GetUsdPrices(ctx, []string{mint})
	if err != nil {
		return 0, err
	}
	price, ok := prices[mint]
	if !ok {
		return 0, fmt.Errorf("%s: %w", mint, ErrNoPrice)
	}
	return price, nil
}

// GetUsdPrices returns USD prices for the mints the oracle can quote. Mints without a quote are
// absent from the result. An error is returned only when no requested price could be served.
func (c *Client) GetUsdPrices(ctx context.Context, mints []string) (map[string]float64, error) {
	out := make(map[string]float64, len(mints))
	missing := make([]string, 0, len(mints))
	seen := make(map[string]struct{}, len(mints))

	for _, mint := range mints {
		mint = strings.TrimSpace(mint)
		if mint == "" {
			continue
		}
		if _, dup := seen[mint]; dup {
			continue
		}
		seen[mint] = struct{}{}

		if price, ok := c.spot.Get(mint); ok {
			c.metrics.OracleCache("spot", true)
			out[mint] = price
			continue
		}
		c.metrics.OracleCache("spot", false)
		missing = append(missing, mint)
	}
	if len(missing) == 0 {
		return out, nil
	}

	sort.Strings(missing)
	var lastErr error
	for start := 0; start < len(missing); start += maxIDsPerRequest {
		end := start + maxIDsPerRequest
		if end > len(missing) {
			end = len(missing)
		}
		batch := missing[start:end]

		quotes, err := c.fetchSpot(ctx, batch)
		if err != nil {
			c.logger.Warn("spot price batch failed", zap.Strings("mints", batch), zap.Error(err))
			lastErr = err
			continue
		}
		for mint, price := range quotes {
			out[mint] = price
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("usd prices: %w", lastErr)
	}
	return out, nil
}

func (c *Client) fetchSpot(ctx context.Context, mints []string) (map[string]float64, error) {
	ids := strings.Join(mints, ",")
	v, err, _ := c.group.Do("spot:"+ids, func() (interface{}, error) {
		endpoint := fmt.Sprintf("%s/price/v3?ids=%s", c.opts.JupiterURL, url.QueryEscape(ids))
		var resp map[string]*jupiterQuote
		if err := c.getJSON(ctx, sourceJupiter, endpoint, nil, &resp); err != nil {
			return nil, err
		}

		quotes := make(map[string]float64, len(resp))
		for mint, quote := range resp {
			if quote == nil || quote.USDPrice <= 0 {
				continue
			}
			quotes[mint] = quote.USDPrice
			c.spot.Add(mint, quote.USDPrice)
		}
		return quotes, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]float64), nil
}

// GetPriceRatio returns price(mintA) / price(mintB) in USD terms.
func (c *Client) GetPriceRatio(ctx context.Context, mintA, mintB string) (float64, error) {
	prices, err := c.GetUsdPrices(ctx, []string{mintA, mintB})
	if err != nil {
		return 0, err
	}
	a, okA := prices[mintA]
	b, okB := prices[mintB]
	if !okA {
		return 0, fmt.Errorf("%s: %w", mintA, ErrNoPrice)
	}
	if !okB {
		return 0, fmt.Errorf("%s: %w", mintB, ErrNoPrice)
	}
	return a / b, nil
}
