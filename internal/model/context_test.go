package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestEmptyContextEncodesAsEmptyObject(t *testing.T) {
	var ctx RangeRecommendationContext
	if !ctx.IsEmpty() {
		t.Fatalf("zero context should be empty")
	}

	data, err := json.Marshal(ctx)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("expected {}, got %s", data)
	}
}

func TestSideDepthNodeFlattensVolumeNode(t *testing.T) {
	node := SideDepthNode{VolumeNode: VolumeNode{Price: 1.5, Weight: 0.25}, BinID: -12}

	data, err := json.Marshal(node)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"price", "weight", "bin_id"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %s in %s", key, data)
		}
	}
}

func TestDecisionRecordUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	record := DecisionRecord{
		Kind:      DecisionRecommendation,
		CreatedAt: time.Date(2024, 1, 1, 8, 0, 0, 0, loc),
		Payload:   map[string]int{"bins": 20},
	}

	data, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded struct {
		CreatedAt string `json:"created_at"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded.CreatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("created_at not UTC: %s", decoded.CreatedAt)
	}
}
