package model

import "time"

// Position is a DLMM liquidity position as known to the client.
// LastActiveBin and LastSeenAt are cached from the most recent observation of the pool.
type Position struct {
	Address       string     `json:"address"`
	PoolAddress   string     `json:"pool_address"`
	LowerBinID    int        `json:"lower_bin_id"`
	UpperBinID    int        `json:"upper_bin_id"`
	ValueUSD      float64    `json:"value_usd"`
	LastActiveBin *int       `json:"last_active_bin,omitempty"`
	LastSeenAt    *time.Time `json:"last_seen_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HalfWidth returns half of the position's bin span.
func (p Position) HalfWidth() int {
	return (p.UpperBinID - p.LowerBinID) / 2
}

// Center returns the middle bin of the position.
func (p Position) Center() int {
	return p.LowerBinID + p.HalfWidth()
}

// FeeClaim is a single historical fee harvest.
type FeeClaim struct {
	Timestamp  time.Time `json:"timestamp"`
	ClaimedUSD float64   `json:"claimed_usd"`
}

// PositionSnapshot is a periodic valuation of a position.
type PositionSnapshot struct {
	Timestamp    time.Time `json:"timestamp"`
	ActiveBin    int       `json:"active_bin"`
	InRange      bool      `json:"in_range"`
	ValueUSD     float64   `json:"value_usd"`
	HodlValueUSD float64   `json:"hodl_value_usd"`
}

// SnapshotRange is the snapshot history of a position over a lookback window.
type SnapshotRange struct {
	First     *PositionSnapshot  `json:"first,omitempty"`
	Latest    *PositionSnapshot  `json:"latest,omitempty"`
	Snapshots []PositionSnapshot `json:"snapshots"`
}
