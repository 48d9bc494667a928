package model

import (
	"encoding/json"
	"testing"
)

func TestParseStrategy(t *testing.T) {
	cases := map[string]Strategy{
		"spot":    StrategySpot,
		"Spot":    StrategySpot,
		"0":       StrategySpot,
		"curve":   StrategyCurve,
		"1":       StrategyCurve,
		"BidAsk":  StrategyBidAsk,
		"bid-ask": StrategyBidAsk,
		"bid_ask": StrategyBidAsk,
		" 2 ":     StrategyBidAsk,
	}
	for input, want := range cases {
		got, err := ParseStrategy(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %s want %s", input, got, want)
		}
	}

	if _, err := ParseStrategy("wide"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestStrategyJSON(t *testing.T) {
	data, err := json.Marshal(StrategyBidAsk)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"BidAsk"` {
		t.Fatalf("unexpected encoding %s", data)
	}

	var decoded Strategy
	if err := json.Unmarshal([]byte(`1`), &decoded); err != nil {
		t.Fatalf("unmarshal numeric failed: %v", err)
	}
	if decoded != StrategyCurve {
		t.Fatalf("numeric strategy decoded as %s", decoded)
	}
	if err := json.Unmarshal([]byte(`"spot"`), &decoded); err != nil {
		t.Fatalf("unmarshal name failed: %v", err)
	}
	if decoded != StrategySpot {
		t.Fatalf("named strategy decoded as %s", decoded)
	}
}
