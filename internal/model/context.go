package model

// VolumeNode marks a price level where liquidity concentrates. Weights in a node set sum to 1.
type VolumeNode struct {
	Price  float64 `json:"price"`
	Weight float64 `json:"weight"`
}

// SideDepthNode is a VolumeNode tied to a bin on one side of the active bin.
type SideDepthNode struct {
	VolumeNode
	BinID int `json:"bin_id"`
}

// RangeRecommendationContext bundles the market signals used to size a range.
// Every field is optional; consumers fall back to defaults when a field is nil or empty.
type RangeRecommendationContext struct {
	PoolPrice        *float64        `json:"pool_price,omitempty"`
	OraclePrice      *float64        `json:"oracle_price,omitempty"`
	VolatilityScore  *float64        `json:"volatility_score,omitempty"`
	VolumeBias       *int            `json:"volume_bias,omitempty"`
	VolumeNodes      []VolumeNode    `json:"volume_nodes,omitempty"`
	RecentHighPrice  *float64        `json:"recent_high_price,omitempty"`
	RecentLowPrice   *float64        `json:"recent_low_price,omitempty"`
	ATRPercent       *float64        `json:"atr_percent,omitempty"`
	BidCoverageNodes []SideDepthNode `json:"bid_coverage_nodes,omitempty"`
	AskCoverageNodes []SideDepthNode `json:"ask_coverage_nodes,omitempty"`
}

// IsEmpty reports whether no signal could be computed.
func (c RangeRecommendationContext) IsEmpty() bool {
	return c.PoolPrice == nil &&
		c.OraclePrice == nil &&
		c.VolatilityScore == nil &&
		c.VolumeBias == nil &&
		len(c.VolumeNodes) == 0 &&
		c.RecentHighPrice == nil &&
		c.RecentLowPrice == nil &&
		c.ATRPercent == nil &&
		len(c.BidCoverageNodes) == 0 &&
		len(c.AskCoverageNodes) == 0
}
