package recommend

import "math"

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// clampBins applies the floor first so the ceiling wins when floor > ceiling.
func clampBins(v, floor, ceiling int) int {
	return minInt(maxInt(v, floor), ceiling)
}

func roundInt(v float64) int {
	return int(math.Round(v))
}

// boundedShift bounds v to ±limit before rounding so extreme deviations
// cannot overflow int.
func boundedShift(v float64, limit int) int {
	if math.IsNaN(v) {
		return 0
	}
	return roundInt(clamp(v, -float64(limit), float64(limit)))
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
