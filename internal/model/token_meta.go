package model

// TokenMeta captures SPL token metadata.
type TokenMeta struct {
	Mint     string `json:"mint"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}
