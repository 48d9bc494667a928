package model

// Advice is a structured range suggestion returned by an LLM advisor.
// It is advisory only; the recommender clamps it to the same bounds as its own output.
type Advice struct {
	Strategy    string   `json:"strategy"`
	BinsPerSide *int     `json:"bins_per_side,omitempty"`
	BidBins     *int     `json:"bid_bins,omitempty"`
	AskBins     *int     `json:"ask_bins,omitempty"`
	Confidence  float64  `json:"confidence"`
	Rationale   []string `json:"rationale"`
	Model       string   `json:"model,omitempty"`
}
