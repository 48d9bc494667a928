package rebalance

import (
	"fmt"

	"dlmmScope/internal/model"
)

// DefaultEdgeBuffer is the number of bins from a boundary that counts as near the edge.
const DefaultEdgeBuffer = 2

// DetermineRangeStatus classifies activeBin against the position bounds.
func DetermineRangeStatus(pos model.Position, activeBin, edgeBuffer int) model.RangeStatus {
	if edgeBuffer < 0 {
		edgeBuffer = 0
	}
	switch {
	case activeBin < pos.LowerBinID || activeBin > pos.UpperBinID:
		return model.RangeStatusOutOfRange
	case activeBin <= pos.LowerBinID+edgeBuffer || activeBin >= pos.UpperBinID-edgeBuffer:
		return model.RangeStatusEdgeRange
	default:
		return model.RangeStatusInRange
	}
}

// AnalyzeRange builds the range health verdict. A nil activeBin yields an UNKNOWN verdict.
func AnalyzeRange(pos model.Position, activeBin *int, edgeBuffer int) model.RebalanceAnalysis {
	if activeBin == nil {
		return model.RebalanceAnalysis{
			Priority:       model.PriorityUnknown,
			Status:         model.RangeStatusUnknown,
			Reason:         "active bin unavailable",
			Recommendation: "Retry once pool data is reachable",
		}
	}

	active := *activeBin
	status := DetermineRangeStatus(pos, active, edgeBuffer)
	distance := absInt(active - pos.Center())
	out := model.RebalanceAnalysis{
		Status:             status,
		CurrentInRange:     status != model.RangeStatusOutOfRange,
		DistanceFromCenter: distance,
	}

	switch status {
	case model.RangeStatusOutOfRange:
		side := "below"
		if active > pos.UpperBinID {
			side = "above"
		}
		out.Priority = model.PriorityHigh
		out.Reason = fmt.Sprintf("active bin %d is %s the range [%d, %d]; no fees are being earned", active, side, pos.LowerBinID, pos.UpperBinID)
		out.Recommendation = "Rebalance now around the active bin"
	case model.RangeStatusEdgeRange:
		out.Priority = model.PriorityMedium
		out.Reason = fmt.Sprintf("active bin %d is within %d bins of the range edge [%d, %d]", active, edgeBuffer, pos.LowerBinID, pos.UpperBinID)
		out.Recommendation = "Prepare to rebalance; the position is about to leave its range"
	default:
		if distance*2 > pos.HalfWidth() {
			out.Priority = model.PriorityLow
			out.Reason = fmt.Sprintf("active bin %d has drifted %d bins from center %d", active, distance, pos.Center())
			out.Recommendation = "Monitor; rebalance if the drift continues"
		} else {
			out.Priority = model.PriorityNone
			out.Reason = fmt.Sprintf("active bin %d is %d bins from center %d", active, distance, pos.Center())
			out.Recommendation = "No action needed"
		}
	}
	return out
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
