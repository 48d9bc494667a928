package recommend

import (
	"fmt"
	"strings"

	"dlmmScope/internal/model"
)

// MinAdviceConfidence is the confidence below which advisor output is ignored.
const MinAdviceConfidence = 0.5

// ApplyAdvice merges an advisor suggestion into rec. Widths are clamped to the same floors and
// ceiling as algorithmic sizing; advice for another strategy or with low confidence only adds a note.
func (r *Recommender) ApplyAdvice(pool model.PoolState, rec model.RangeRecommendation, advice *model.Advice) (model.RangeRecommendation, error) {
	if advice == nil {
		return rec, nil
	}
	if !pool.HasActiveBin() {
		return rec, ErrNoActiveBin
	}

	out := rec
	out.Rationale = append([]string(nil), rec.Rationale...)
	label := "Advisor"
	if advice.Model != "" {
		label = fmt.Sprintf("Advisor (%s)", advice.Model)
	}

	advised, err := model.ParseStrategy(advice.Strategy)
	if err != nil {
		out.Rationale = append(out.Rationale, fmt.Sprintf("%s returned an unknown strategy %q; ignored", label, advice.Strategy))
		return out, nil
	}
	if advised != rec.Strategy {
		out.Rationale = append(out.Rationale, fmt.Sprintf("%s prefers %s over %s; range unchanged", label, advised, rec.Strategy))
		return out, nil
	}
	if advice.Confidence < MinAdviceConfidence {
		out.Rationale = append(out.Rationale, fmt.Sprintf("%s confidence %.2f is below %.2f; ignored", label, advice.Confidence, MinAdviceConfidence))
		return out, nil
	}

	p := r.params
	active := *pool.ActiveBin
	pairMin, _ := r.classifier.MinBins(pool.TokenX, pool.TokenY)
	changed := false

	switch rec.Strategy {
	case model.StrategyBidAsk:
		floor := r.bidAskFloor(pairMin)
		if advice.BidBins != nil {
			bid := clampBins(*advice.BidBins, floor, p.MaxBinsPerSide)
			out.RecommendedBidBins = model.IntPtr(bid)
			out.MinBinID = active - bid
			changed = true
		}
		if advice.AskBins != nil {
			ask := clampBins(*advice.AskBins, floor, p.MaxBinsPerSide)
			out.RecommendedAskBins = model.IntPtr(ask)
			out.MaxBinID = active + ask
			changed = true
		}
	case model.StrategyCurve:
		if advice.BinsPerSide != nil {
			floor := minInt(maxInt(pairMin, p.CurveBaseBins), p.MaxBinsPerSide)
			bins := clampBins(*advice.BinsPerSide, floor, p.MaxBinsPerSide)
			shift := rec.CenterBin - active
			if maxShift := 2*p.MaxBinsPerSide - 2*bins; absInt(shift) > maxShift {
				shift = maxShift * sign(shift)
			}
			out.RecommendedBinsPerSide = model.IntPtr(bins)
			out.CenterBin, out.MinBinID, out.MaxBinID = curveRange(active, bins, shift)
			changed = true
		}
	default:
		if advice.BinsPerSide != nil {
			floor := minInt(pairMin, p.MaxBinsPerSide)
			bins := clampBins(*advice.BinsPerSide, floor, p.MaxBinsPerSide)
			out.RecommendedBinsPerSide = model.IntPtr(bins)
			out.CenterBin = active
			out.MinBinID = active - bins
			out.MaxBinID = active + bins
			changed = true
		}
	}

	if changed {
		out.Rationale = append(out.Rationale, fmt.Sprintf("%s adjusted the range to [%d, %d] (confidence %.2f)", label, out.MinBinID, out.MaxBinID, advice.Confidence))
	} else {
		out.Rationale = append(out.Rationale, fmt.Sprintf("%s agreed without a width (confidence %.2f)", label, advice.Confidence))
	}
	for _, line := range advice.Rationale {
		if line = strings.TrimSpace(line); line != "" {
			out.Rationale = append(out.Rationale, label+": "+line)
		}
	}
	return out, nil
}
