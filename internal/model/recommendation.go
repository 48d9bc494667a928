package model

// RecommendationMetrics echoes the signals that drove a recommendation.
type RecommendationMetrics struct {
	VolatilityScore float64 `json:"volatility_score"`
	PriceDeviation  float64 `json:"price_deviation"`
	VolumeBias      int     `json:"volume_bias"`
}

// RangeRecommendation is a concrete bin range proposal.
// Symmetric strategies set RecommendedBinsPerSide; BidAsk sets the bid and ask spans.
type RangeRecommendation struct {
	Strategy               Strategy              `json:"strategy"`
	RecommendedBinsPerSide *int                  `json:"recommended_bins_per_side,omitempty"`
	RecommendedBidBins     *int                  `json:"recommended_bid_bins,omitempty"`
	RecommendedAskBins     *int                  `json:"recommended_ask_bins,omitempty"`
	MinBinID               int                   `json:"min_bin_id"`
	MaxBinID               int                   `json:"max_bin_id"`
	CenterBin              int                   `json:"center_bin"`
	Rationale              []string              `json:"rationale"`
	Metrics                RecommendationMetrics `json:"metrics"`
}

// Width returns the number of bins spanned by the range minus one.
func (r RangeRecommendation) Width() int {
	return r.MaxBinID - r.MinBinID
}
