package model

import "time"

// PricePoint is a single observation of a USD price series.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
}
