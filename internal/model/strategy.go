package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Strategy is the liquidity distribution shape of a DLMM position.
type Strategy int

const (
	StrategySpot Strategy = iota
	StrategyCurve
	StrategyBidAsk
)

var strategyNames = map[Strategy]string{
	StrategySpot:   "Spot",
	StrategyCurve:  "Curve",
	StrategyBidAsk: "BidAsk",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// IsSymmetric reports whether the strategy uses a single bins-per-side width.
func (s Strategy) IsSymmetric() bool {
	return s != StrategyBidAsk
}

// ParseStrategy resolves a user supplied strategy name or numeric id.
func ParseStrategy(input string) (Strategy, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer("-", "", "_", "", "/", "", " ", "").Replace(normalized)
	switch normalized {
	case "spot", "0":
		return StrategySpot, nil
	case "curve", "1":
		return StrategyCurve, nil
	case "bidask", "2":
		return StrategyBidAsk, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q", input)
	}
}

func (s Strategy) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Strategy) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		var id int
		if errNum := json.Unmarshal(data, &id); errNum != nil {
			return fmt.Errorf("strategy: %w", err)
		}
		text = fmt.Sprintf("%d", id)
	}
	parsed, err := ParseStrategy(text)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
