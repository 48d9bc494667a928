package model

// RangeStatus classifies where the active bin sits relative to a position.
type RangeStatus string

const (
	RangeStatusInRange    RangeStatus = "IN_RANGE"
	RangeStatusEdgeRange  RangeStatus = "EDGE_RANGE"
	RangeStatusOutOfRange RangeStatus = "OUT_OF_RANGE"
	RangeStatusUnknown    RangeStatus = "UNKNOWN"
)

// RebalancePriority is how urgently a position should be moved.
type RebalancePriority string

const (
	PriorityNone    RebalancePriority = "none"
	PriorityLow     RebalancePriority = "low"
	PriorityMedium  RebalancePriority = "medium"
	PriorityHigh    RebalancePriority = "high"
	PriorityUnknown RebalancePriority = "unknown"
)

// RebalanceAnalysis is the range health verdict for a position.
type RebalanceAnalysis struct {
	Priority           RebalancePriority `json:"priority"`
	Status             RangeStatus       `json:"status"`
	Reason             string            `json:"reason"`
	CurrentInRange     bool              `json:"current_in_range"`
	DistanceFromCenter int               `json:"distance_from_center"`
	Recommendation     string            `json:"recommendation"`
}

// RebalancePreview is a proposed replacement range centered on the active bin.
type RebalancePreview struct {
	CurrentLowerBinID int `json:"current_lower_bin_id"`
	CurrentUpperBinID int `json:"current_upper_bin_id"`
	NewLowerBinID     int `json:"new_lower_bin_id"`
	NewUpperBinID     int `json:"new_upper_bin_id"`
	CenterBin         int `json:"center_bin"`
	BinsPerSide       int `json:"bins_per_side"`
}

// CostBenefitAnalysis compares fee income before and after a rebalance with its cost.
type CostBenefitAnalysis struct {
	CurrentDailyFees   float64  `json:"current_daily_fees"`
	ProjectedDailyFees float64  `json:"projected_daily_fees"`
	NetDailyGain       float64  `json:"net_daily_gain"`
	RebalanceCostUSD   float64  `json:"rebalance_cost_usd"`
	BreakEvenDays      *float64 `json:"break_even_days,omitempty"`
	BreakEvenLabel     string   `json:"break_even_label"`
	FeeSource          string   `json:"fee_source"`
}

// PositionMetrics summarises a position's snapshot history.
type PositionMetrics struct {
	Snapshots          int      `json:"snapshots"`
	TimeInRangePercent *float64 `json:"time_in_range_percent,omitempty"`
	ImpermanentLossUSD *float64 `json:"impermanent_loss_usd,omitempty"`
	ImpermanentLossPct *float64 `json:"impermanent_loss_pct,omitempty"`
}

// RebalanceReport is the full output of a rebalance analysis.
// ActiveBinCached is set when ActiveBin came from the position cache instead of the pool.
type RebalanceReport struct {
	Position        Position             `json:"position"`
	ActiveBin       *int                 `json:"active_bin,omitempty"`
	ActiveBinCached bool                 `json:"active_bin_cached,omitempty"`
	Analysis        RebalanceAnalysis    `json:"analysis"`
	Preview         *RebalancePreview    `json:"preview,omitempty"`
	CostBenefit     *CostBenefitAnalysis `json:"cost_benefit,omitempty"`
	Metrics         *PositionMetrics     `json:"metrics,omitempty"`
	Warnings        []string             `json:"warnings,omitempty"`
}
