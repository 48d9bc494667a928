package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// PairStats is the market summary of a pair from the DLMM stats API.
type PairStats struct {
	Address      string
	Name         string
	MintX        string
	MintY        string
	BinStep      uint16
	CurrentPrice float64
	TVL          float64
	Volume24h    float64
	APR          float64
}

// Symbols splits the pair name into token symbols.
func (s PairStats) Symbols() (string, string) {
	parts := strings.SplitN(s.Name, "-", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// flexFloat accepts numbers, numeric strings, empty strings and null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(text)
		if err != nil {
			return err
		}
		text = strings.TrimSpace(unquoted)
		if text == "" {
			*f = 0
			return nil
		}
	}
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", text, err)
	}
	*f = flexFloat(val)
	return nil
}

type pairResponse struct {
	Address        string    `json:"address"`
	Name           string    `json:"name"`
	MintX          string    `json:"mint_x"`
	MintY          string    `json:"mint_y"`
	BinStep        uint16    `json:"bin_step"`
	CurrentPrice   flexFloat `json:"current_price"`
	Liquidity      flexFloat `json:"liquidity"`
	TradeVolume24h flexFloat `json:"trade_volume_24h"`
	APR            flexFloat `json:"apr"`
}

// StatsClient reads pair statistics over HTTP.
type StatsClient struct {
	baseURL      string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
}

// NewStatsClient builds a StatsClient. A zero timeout defaults to five seconds.
func NewStatsClient(baseURL string, timeout time.Duration, maxRetries int, retryBackoff time.Duration) *StatsClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &StatsClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
	}
}

// GetPair fetches the stats for one pair address.
func (c *StatsClient) GetPair(ctx context.Context, address string) (PairStats, error) {
	var resp pairResponse
	err := withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context) error {
		return c.getJSON(ctx, "/pair/"+address, &resp)
	})
	if err != nil {
		return PairStats{}, fmt.Errorf("pair stats %s: %w", address, err)
	}

	return PairStats{
		Address:      resp.Address,
		Name:         resp.Name,
		MintX:        resp.MintX,
		MintY:        resp.MintY,
		BinStep:      resp.BinStep,
		CurrentPrice: float64(resp.CurrentPrice),
		TVL:          float64(resp.Liquidity),
		Volume24h:    float64(resp.TradeVolume24h),
		APR:          float64(resp.APR),
	}, nil
}

func (c *StatsClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return backoff.Permanent(fmt.Errorf("decode response: %w", err))
	}
	return nil
}
