package model

// BinLiquidity is the raw reserve held by a single DLMM bin.
type BinLiquidity struct {
	BinID   int    `json:"bin_id"`
	AmountX uint64 `json:"amount_x"`
	AmountY uint64 `json:"amount_y"`
}
