package rebalance

import (
	"testing"

	"dlmmScope/internal/model"
)

func TestDetermineRangeStatus(t *testing.T) {
	pos := model.Position{LowerBinID: 90, UpperBinID: 110}
	cases := []struct {
		active int
		want   model.RangeStatus
	}{
		{80, model.RangeStatusOutOfRange},
		{89, model.RangeStatusOutOfRange},
		{90, model.RangeStatusEdgeRange},
		{91, model.RangeStatusEdgeRange},
		{92, model.RangeStatusEdgeRange},
		{93, model.RangeStatusInRange},
		{100, model.RangeStatusInRange},
		{107, model.RangeStatusInRange},
		{109, model.RangeStatusEdgeRange},
		{110, model.RangeStatusEdgeRange},
		{111, model.RangeStatusOutOfRange},
	}
	for _, tc := range cases {
		if got := DetermineRangeStatus(pos, tc.active, 2); got != tc.want {
			t.Fatalf("active %d: got %s, want %s", tc.active, got, tc.want)
		}
	}
}

func TestAnalyzeRangePriorities(t *testing.T) {
	pos := model.Position{LowerBinID: 90, UpperBinID: 110}
	cases := []struct {
		active   *int
		priority model.RebalancePriority
		inRange  bool
		distance int
	}{
		{model.IntPtr(120), model.PriorityHigh, false, 20},
		{model.IntPtr(91), model.PriorityMedium, true, 9},
		{model.IntPtr(106), model.PriorityLow, true, 6},
		{model.IntPtr(102), model.PriorityNone, true, 2},
		{nil, model.PriorityUnknown, false, 0},
	}
	for _, tc := range cases {
		got := AnalyzeRange(pos, tc.active, 2)
		if got.Priority != tc.priority || got.CurrentInRange != tc.inRange || got.DistanceFromCenter != tc.distance {
			t.Fatalf("active %v: got %+v", tc.active, got)
		}
		if got.Reason == "" || got.Recommendation == "" {
			t.Fatalf("reason and recommendation must be set: %+v", got)
		}
	}
}

func TestBuildPreview(t *testing.T) {
	pos := model.Position{LowerBinID: 90, UpperBinID: 110}

	p := BuildPreview(pos, 130, 0)
	if p.BinsPerSide != 10 || p.NewLowerBinID != 120 || p.NewUpperBinID != 140 || p.CenterBin != 130 {
		t.Fatalf("unexpected preview %+v", p)
	}
	if p.CurrentLowerBinID != 90 || p.CurrentUpperBinID != 110 {
		t.Fatalf("current bounds not echoed: %+v", p)
	}

	narrow := BuildPreview(model.Position{LowerBinID: 0, UpperBinID: 4}, 10, 0)
	if narrow.BinsPerSide != MinPreviewBinsPerSide {
		t.Fatalf("narrow preview = %d, want %d", narrow.BinsPerSide, MinPreviewBinsPerSide)
	}
	wide := BuildPreview(model.Position{LowerBinID: 0, UpperBinID: 200}, 10, 0)
	if wide.BinsPerSide != MaxPreviewBinsPerSide {
		t.Fatalf("wide preview = %d, want %d", wide.BinsPerSide, MaxPreviewBinsPerSide)
	}
	override := BuildPreview(pos, 100, 3)
	if override.BinsPerSide != 3 || override.NewLowerBinID != 97 {
		t.Fatalf("override ignored: %+v", override)
	}
}
