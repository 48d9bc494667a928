package rebalance

import (
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"dlmmScope/internal/model"
)

// Fee sources reported in CostBenefitAnalysis.
const (
	FeeSourceHistory = "fee_history"
	FeeSourcePoolAPR = "pool_apr"
	FeeSourceNone    = "none"
)

const (
	// BaseFeeLamports is the Solana signature fee.
	BaseFeeLamports = 5000
	// RebalanceTxCount covers remove liquidity, claim fees and reopen.
	RebalanceTxCount = 3

	minProjectionRatio = 0.5
	maxProjectionRatio = 3
)

// BaselineDailyFees estimates what the position earns per day while in range. Claims are
// averaged over the observed window (at least one day); without claims the pool APR is used.
func BaselineDailyFees(pos model.Position, pool *model.PoolState, claims []model.FeeClaim, now time.Time, lookbackDays int) (float64, string) {
	if len(claims) > 0 {
		var total float64
		for _, c := range claims {
			total += c.ClaimedUSD
		}

		start := now.AddDate(0, 0, -lookbackDays)
		if !pos.CreatedAt.IsZero() && pos.CreatedAt.After(start) {
			start = pos.CreatedAt
		}
		days := math.Max(now.Sub(start).Hours()/24, 1)
		return total / days, FeeSourceHistory
	}
	if pool != nil && pool.APR > 0 && pos.ValueUSD > 0 {
		return pos.ValueUSD * pool.APR / 100 / 365, FeeSourcePoolAPR
	}
	return 0, FeeSourceNone
}

// rangeEfficiency is the share of baseline fees earned in each status.
func rangeEfficiency(status model.RangeStatus) float64 {
	switch status {
	case model.RangeStatusInRange:
		return 1
	case model.RangeStatusEdgeRange:
		return 0.5
	default:
		return 0
	}
}

// ProjectFees returns the current and projected daily fees. The projection concentrates the
// baseline by the ratio of current to new width.
func ProjectFees(baseline float64, status model.RangeStatus, currentWidth, newWidth int) (current, projected float64) {
	current = baseline * rangeEfficiency(status)
	ratio := 1.0
	if currentWidth > 0 && newWidth > 0 {
		ratio = float64(currentWidth) / float64(newWidth)
	}
	ratio = math.Min(math.Max(ratio, minProjectionRatio), maxProjectionRatio)
	return current, baseline * ratio
}

// RebalanceCostUSD prices txCount transactions at the base fee plus priority fee.
func RebalanceCostUSD(txCount int, priorityFeeLamports uint64, solPriceUSD float64) float64 {
	lamports := decimal.NewFromInt(int64(txCount)).Mul(decimal.NewFromInt(BaseFeeLamports).Add(decimal.NewFromInt(int64(priorityFeeLamports))))
	sol := lamports.Shift(-9)
	return sol.Mul(decimal.NewFromFloat(solPriceUSD)).InexactFloat64()
}

// BreakEven returns the days needed for netDailyGain to repay cost and a label for display.
// A non-positive or non-finite gain is reported as "never" with nil days.
func BreakEven(cost, netDailyGain float64) (*float64, string) {
	if netDailyGain <= 0 || math.IsNaN(netDailyGain) || math.IsInf(netDailyGain, 0) || math.IsNaN(cost) {
		return nil, "never"
	}
	if cost <= 0 {
		days := 0.0
		return &days, "immediately"
	}

	days := cost / netDailyGain
	if math.IsInf(days, 0) || math.IsNaN(days) {
		return nil, "never"
	}
	if days < 1 {
		hours := days * 24
		if hours < 1 {
			return &days, "less than an hour"
		}
		return &days, formatUnits(hours, "hour")
	}
	return &days, formatUnits(days, "day")
}

func formatUnits(v float64, unit string) string {
	rounded := math.Round(v*10) / 10
	text := strconv.FormatFloat(rounded, 'f', -1, 64)
	if rounded == 1 {
		return text + " " + unit
	}
	return text + " " + unit + "s"
}

// CostBenefit assembles the full comparison for a preview.
func CostBenefit(baseline float64, source string, status model.RangeStatus, pos model.Position, preview model.RebalancePreview, costUSD float64) model.CostBenefitAnalysis {
	currentWidth := pos.UpperBinID - pos.LowerBinID + 1
	newWidth := preview.NewUpperBinID - preview.NewLowerBinID + 1
	current, projected := ProjectFees(baseline, status, currentWidth, newWidth)
	net := projected - current
	days, label := BreakEven(costUSD, net)

	return model.CostBenefitAnalysis{
		CurrentDailyFees:   current,
		ProjectedDailyFees: projected,
		NetDailyGain:       net,
		RebalanceCostUSD:   costUSD,
		BreakEvenDays:      days,
		BreakEvenLabel:     label,
		FeeSource:          source,
	}
}
