package model

// PoolState is a read-only snapshot of a DLMM pool. It is replaced, never mutated.
type PoolState struct {
	Address   string    `json:"address"`
	TokenX    TokenMeta `json:"token_x"`
	TokenY    TokenMeta `json:"token_y"`
	BinStep   uint16    `json:"bin_step"`
	ActiveBin *int      `json:"active_bin"`

	// Price is the spot price of token X in units of token Y.
	Price     float64 `json:"price"`
	TVL       float64 `json:"tvl"`
	Volume24h float64 `json:"volume_24h"`

	// APR is expressed in percent.
	APR float64 `json:"apr"`
}

// HasActiveBin reports whether the pool is actively trading.
func (p PoolState) HasActiveBin() bool {
	return p.ActiveBin != nil
}

// Name returns a human readable pair label.
func (p PoolState) Name() string {
	x, y := p.TokenX.Symbol, p.TokenY.Symbol
	if x == "" {
		x = shortMint(p.TokenX.Mint)
	}
	if y == "" {
		y = shortMint(p.TokenY.Mint)
	}
	return x + "-" + y
}

func shortMint(mint string) string {
	if len(mint) <= 8 {
		return mint
	}
	return mint[:4] + ".." + mint[len(mint)-4:]
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 {
	return &v
}
