package rebalance

import "dlmmScope/internal/model"

// Bounds of the replacement half-width.
const (
	MinPreviewBinsPerSide = 6
	MaxPreviewBinsPerSide = 34
)

// BuildPreview centers a replacement range on activeBin. The width follows the position's
// half-width unless binsPerSide overrides it.
func BuildPreview(pos model.Position, activeBin, binsPerSide int) model.RebalancePreview {
	var bins int
	if binsPerSide > 0 {
		bins = clampInt(binsPerSide, 1, MaxPreviewBinsPerSide)
	} else {
		bins = clampInt(pos.HalfWidth(), MinPreviewBinsPerSide, MaxPreviewBinsPerSide)
	}
	return model.RebalancePreview{
		CurrentLowerBinID: pos.LowerBinID,
		CurrentUpperBinID: pos.UpperBinID,
		NewLowerBinID:     activeBin - bins,
		NewUpperBinID:     activeBin + bins,
		CenterBin:         activeBin,
		BinsPerSide:       bins,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
