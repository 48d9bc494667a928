package recommend

import (
	"strings"

	"dlmmScope/internal/model"
)

// PairClass groups pairs by how fast their price can leave a range.
type PairClass int

const (
	PairStandard PairClass = iota
	PairStable
	PairOneStable
	PairVolatile
)

func (c PairClass) String() string {
	switch c {
	case PairStable:
		return "stable/stable"
	case PairOneStable:
		return "stable/volatile"
	case PairVolatile:
		return "high-volatility"
	default:
		return "standard"
	}
}

// Minimum bins per side before the MaxBinsPerSide ceiling is applied.
const (
	StablePairMinBins    = 10
	VolatilePairMinBins  = 80
	OneStablePairMinBins = 50
	StandardPairMinBins  = 30
)

// DefaultStablecoins are matched by symbol or mint.
var DefaultStablecoins = []string{
	"USDC", "USDT", "PYUSD", "USDS", "USDH", "UXD", "DAI", "USDE", "USDY", "FDUSD",
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
}

// DefaultVolatileTokens are meme and other high-volatility tokens matched by symbol or mint.
var DefaultVolatileTokens = []string{
	"BONK", "WIF", "POPCAT", "MEW", "BOME", "SLERF", "MYRO", "PNUT", "GOAT",
	"FARTCOIN", "TRUMP", "MOODENG", "CHILLGUY", "PENGU", "AI16Z", "GIGA",
}

// Classifier maps token pairs to minimum range widths.
type Classifier struct {
	stable   map[string]struct{}
	volatile map[string]struct{}
}

// NewClassifier builds a classifier from token symbols or mints. Empty lists fall back to the defaults.
func NewClassifier(stablecoins, volatileTokens []string) *Classifier {
	if len(stablecoins) == 0 {
		stablecoins = DefaultStablecoins
	}
	if len(volatileTokens) == 0 {
		volatileTokens = DefaultVolatileTokens
	}
	return &Classifier{
		stable:   toSet(stablecoins),
		volatile: toSet(volatileTokens),
	}
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out[normalizeToken(item)] = struct{}{}
	}
	return out
}

// Symbols are case-insensitive; mints are base58 and kept verbatim.
func normalizeToken(s string) string {
	if len(s) >= 32 {
		return s
	}
	return strings.ToUpper(s)
}

func (c *Classifier) matches(set map[string]struct{}, token model.TokenMeta) bool {
	if token.Mint != "" {
		if _, ok := set[token.Mint]; ok {
			return true
		}
	}
	if token.Symbol != "" {
		if _, ok := set[normalizeToken(token.Symbol)]; ok {
			return true
		}
	}
	return false
}

// Classify returns the pair class of x/y.
func (c *Classifier) Classify(x, y model.TokenMeta) PairClass {
	stableX, stableY := c.matches(c.stable, x), c.matches(c.stable, y)
	switch {
	case stableX && stableY:
		return PairStable
	case c.matches(c.volatile, x) || c.matches(c.volatile, y):
		return PairVolatile
	case stableX || stableY:
		return PairOneStable
	default:
		return PairStandard
	}
}

// MinBins returns the minimum bins per side for the pair, before the ceiling.
func (c *Classifier) MinBins(x, y model.TokenMeta) (int, PairClass) {
	class := c.Classify(x, y)
	switch class {
	case PairStable:
		return StablePairMinBins, class
	case PairVolatile:
		return VolatilePairMinBins, class
	case PairOneStable:
		return OneStablePairMinBins, class
	default:
		return StandardPairMinBins, class
	}
}
