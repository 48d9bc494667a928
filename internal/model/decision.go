package model

import (
	"encoding/json"
	"time"
)

// Decision kinds written to the journal.
const (
	DecisionContext        = "context"
	DecisionRecommendation = "recommendation"
	DecisionRebalance      = "rebalance"
)

// DecisionRecord is a journal entry for any produced decision object.
type DecisionRecord struct {
	Kind            string      `json:"kind"`
	PoolAddress     string      `json:"pool_address,omitempty"`
	PositionAddress string      `json:"position_address,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	Payload         interface{} `json:"payload"`
}

// MarshalJSON ensures CreatedAt is always encoded in UTC.
func (dr DecisionRecord) MarshalJSON() ([]byte, error) {
	type Alias DecisionRecord
	a := Alias(dr)
	a.CreatedAt = a.CreatedAt.UTC()
	return json.Marshal(a)
}
