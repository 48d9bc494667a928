package oracle

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"dlmmScope/internal/model"
)

type birdeyeHistory struct {
	Success bool `json:"success"`
	Data    struct {
		Items []struct {
			UnixTime int64   `json:"unixTime"`
			Value    float64 `json:"value"`
		} `json:"items"`
	} `json:"data"`
}

// seriesInterval picks the Birdeye bucket size for a lookback window.
func seriesInterval(lookback time.Duration) string {
	switch {
	case lookback <= 12*time.Hour:
		return "5m"
	case lookback <= 3*24*time.Hour:
		return "1H"
	default:
		return "4H"
	}
}

// GetUsdPriceSeries returns the USD price history of a mint over the lookback window, oldest first.
func (c *Client) GetUsdPriceSeries(ctx context.Context, mint string, lookback time.Duration) ([]model.PricePoint, error) {
	if c.opts.BirdeyeAPIKey == "" {
		return nil, fmt.Errorf("%s: birdeye api key not configured: %w", mint, ErrSeriesUnavailable)
	}
	if lookback <= 0 {
		lookback = 6 * time.Hour
	}

	key := mint + "|" + lookback.String()
	if points, ok := c.series.Get(key); ok {
		c.metrics.OracleCache("series", true)
		return points, nil
	}
	c.metrics.OracleCache("series", false)

	v, err, _ := c.group.Do("series:"+key, func() (interface{}, error) {
		to := c.now()
		from := to.Add(-lookback)

		query := url.Values{}
		query.Set("address", mint)
		query.Set("address_type", "token")
		query.Set("type", seriesInterval(lookback))
		query.Set("time_from", strconv.FormatInt(from.Unix(), 10))
		query.Set("time_to", strconv.FormatInt(to.Unix(), 10))

		header := http.Header{}
		header.Set("X-API-KEY", c.opts.BirdeyeAPIKey)
		header.Set("x-chain", "solana")

		var resp birdeyeHistory
		if err := c.getJSON(ctx, sourceBirdeye, c.opts.BirdeyeURL+"/defi/history_price?"+query.Encode(), header, &resp); err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, fmt.Errorf("%s: birdeye reported failure: %w", mint, ErrSeriesUnavailable)
		}

		points := make([]model.PricePoint, 0, len(resp.Data.Items))
		for _, item := range resp.Data.Items {
			if item.Value <= 0 {
				continue
			}
			points = append(points, model.PricePoint{Timestamp: time.Unix(item.UnixTime, 0).UTC(), Price: item.Value})
		}
		if len(points) == 0 {
			return nil, fmt.Errorf("%s: empty history: %w", mint, ErrSeriesUnavailable)
		}
		sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })

		c.series.Add(key, points)
		return points, nil
	})
	if err != nil {
		return nil, fmt.Errorf("price series %s: %w", mint, err)
	}
	return v.([]model.PricePoint), nil
}
