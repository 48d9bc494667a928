package market

import (
	"math"
	"testing"

	"dlmmScope/internal/model"
)

func sumVolume(nodes []model.VolumeNode) float64 {
	var total float64
	for _, n := range nodes {
		total += n.Weight
	}
	return total
}

func TestNormalizeEmptyCollections(t *testing.T) {
	volume := NormalizeVolumeNodes(nil)
	if volume == nil || len(volume) != 0 {
		t.Fatalf("expected empty volume nodes, got %#v", volume)
	}
	side := NormalizeSideNodes([]model.SideDepthNode{})
	if side == nil || len(side) != 0 {
		t.Fatalf("expected empty side nodes, got %#v", side)
	}
}

func TestNormalizeZeroWeightsStaysFinite(t *testing.T) {
	nodes := NormalizeVolumeNodes([]model.VolumeNode{{Price: 1, Weight: 0}, {Price: 2, Weight: 0}})
	for _, n := range nodes {
		if math.IsNaN(n.Weight) || math.IsInf(n.Weight, 0) {
			t.Fatalf("non-finite weight %v", n.Weight)
		}
	}
}

func TestBuildVolumeNodesKeepsTopFive(t *testing.T) {
	bins := []PricedBin{
		{BinID: 1, Price: 1.0, Notional: 1},
		{BinID: 2, Price: 1.1, Notional: 7},
		{BinID: 3, Price: 1.2, Notional: 0},
		{BinID: 4, Price: 1.3, Notional: 3},
		{BinID: 5, Price: 1.4, Notional: 5},
		{BinID: 6, Price: 1.5, Notional: 2},
		{BinID: 7, Price: 1.6, Notional: 4},
	}
	nodes := BuildVolumeNodes(bins, TopVolumeNodes)
	if len(nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(nodes))
	}
	if nodes[0].Price != 1.1 || nodes[4].Price != 1.5 {
		t.Fatalf("unexpected order %+v", nodes)
	}
	if math.Abs(sumVolume(nodes)-1) > 1e-12 {
		t.Fatalf("weights sum to %v", sumVolume(nodes))
	}
}

func TestPartitionSides(t *testing.T) {
	bins := []PricedBin{
		{BinID: 95, Price: 0.95, Notional: 1},
		{BinID: 99, Price: 0.99, Notional: 3},
		{BinID: 100, Price: 1.00, Notional: 4},
		{BinID: 101, Price: 1.01, Notional: 6},
		{BinID: 104, Price: 1.04, Notional: 2},
		{BinID: 102, Price: 1.02, Notional: 0},
	}
	bid, ask := PartitionSides(bins, 100)

	if len(bid) != 3 || len(ask) != 2 {
		t.Fatalf("unexpected partition bid=%d ask=%d", len(bid), len(ask))
	}
	wantBid := []int{100, 99, 95}
	for i, id := range wantBid {
		if bid[i].BinID != id {
			t.Fatalf("bid[%d] = %d, want %d", i, bid[i].BinID, id)
		}
	}
	if ask[0].BinID != 101 || ask[1].BinID != 104 {
		t.Fatalf("unexpected ask order %+v", ask)
	}
	if math.Abs(bid[0].Weight-0.5) > 1e-12 || math.Abs(ask[0].Weight-0.75) > 1e-12 {
		t.Fatalf("unexpected weights bid=%v ask=%v", bid[0].Weight, ask[0].Weight)
	}
}
