package market

import (
	"sort"

	"dlmmScope/internal/model"
)

// TopVolumeNodes is the number of volume nodes kept in a context.
const TopVolumeNodes = 5

// PricedBin is a sampled bin with its price and notional value.
type PricedBin struct {
	BinID    int
	Price    float64
	Notional float64
}

func totalWeight(weights []float64) float64 {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return 1
	}
	return total
}

// NormalizeVolumeNodes rescales weights to sum to 1. An empty input yields an empty result.
func NormalizeVolumeNodes(nodes []model.VolumeNode) []model.VolumeNode {
	weights := make([]float64, len(nodes))
	for i, n := range nodes {
		weights[i] = n.Weight
	}
	total := totalWeight(weights)

	out := make([]model.VolumeNode, len(nodes))
	for i, n := range nodes {
		out[i] = model.VolumeNode{Price: n.Price, Weight: n.Weight / total}
	}
	return out
}

// NormalizeSideNodes rescales side weights to sum to 1. An empty input yields an empty result.
func NormalizeSideNodes(nodes []model.SideDepthNode) []model.SideDepthNode {
	weights := make([]float64, len(nodes))
	for i, n := range nodes {
		weights[i] = n.Weight
	}
	total := totalWeight(weights)

	out := make([]model.SideDepthNode, len(nodes))
	for i, n := range nodes {
		out[i] = n
		out[i].Weight = n.Weight / total
	}
	return out
}

// BuildVolumeNodes keeps the heaviest bins by notional and normalizes them.
func BuildVolumeNodes(bins []PricedBin, limit int) []model.VolumeNode {
	nodes := make([]model.VolumeNode, 0, len(bins))
	for _, b := range bins {
		if b.Notional <= 0 || b.Price <= 0 {
			continue
		}
		nodes = append(nodes, model.VolumeNode{Price: b.Price, Weight: b.Notional})
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Weight > nodes[j].Weight })
	if limit > 0 && len(nodes) > limit {
		nodes = nodes[:limit]
	}
	return NormalizeVolumeNodes(nodes)
}

// PartitionSides splits priced bins into bid (binId <= active) and ask (binId > active)
// collections, each normalized and ordered by distance from the active bin.
func PartitionSides(bins []PricedBin, activeBin int) (bid, ask []model.SideDepthNode) {
	for _, b := range bins {
		if b.Notional <= 0 || b.Price <= 0 {
			continue
		}
		node := model.SideDepthNode{
			VolumeNode: model.VolumeNode{Price: b.Price, Weight: b.Notional},
			BinID:      b.BinID,
		}
		if b.BinID <= activeBin {
			bid = append(bid, node)
		} else {
			ask = append(ask, node)
		}
	}
	sortByDistance(bid, activeBin)
	sortByDistance(ask, activeBin)
	return NormalizeSideNodes(bid), NormalizeSideNodes(ask)
}

func sortByDistance(nodes []model.SideDepthNode, activeBin int) {
	sort.SliceStable(nodes, func(i, j int) bool {
		di, dj := absInt(nodes[i].BinID-activeBin), absInt(nodes[j].BinID-activeBin)
		if di != dj {
			return di < dj
		}
		return nodes[i].BinID < nodes[j].BinID
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
