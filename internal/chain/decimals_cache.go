package chain

import (
	"sync"

	"github.com/gagliardetto/solana-go"
)

// MintDecimalsCache caches mint decimals by address.
type MintDecimalsCache struct {
	mu   sync.RWMutex
	data map[solana.PublicKey]uint8
}

func NewMintDecimalsCache() *MintDecimalsCache {
	return &MintDecimalsCache{data: make(map[solana.PublicKey]uint8)}
}

func (c *MintDecimalsCache) Get(mint solana.PublicKey) (uint8, bool) {
	c.mu.RLock()
	decimals, ok := c.data[mint]
	c.mu.RUnlock()
	return decimals, ok
}

func (c *MintDecimalsCache) Set(mint solana.PublicKey, decimals uint8) {
	c.mu.Lock()
	c.data[mint] = decimals
	c.mu.Unlock()
}
