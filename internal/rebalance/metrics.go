package rebalance

import "dlmmScope/internal/model"

// SnapshotMetrics derives time in range and impermanent loss from snapshot history.
// It returns nil when there are no snapshots.
func SnapshotMetrics(history model.SnapshotRange) *model.PositionMetrics {
	if len(history.Snapshots) == 0 {
		return nil
	}

	inRange := 0
	for _, s := range history.Snapshots {
		if s.InRange {
			inRange++
		}
	}
	out := &model.PositionMetrics{
		Snapshots:          len(history.Snapshots),
		TimeInRangePercent: model.FloatPtr(float64(inRange) / float64(len(history.Snapshots)) * 100),
	}

	latest := history.Latest
	if latest == nil {
		latest = &history.Snapshots[len(history.Snapshots)-1]
	}
	if latest.HodlValueUSD > 0 {
		loss := latest.HodlValueUSD - latest.ValueUSD
		out.ImpermanentLossUSD = model.FloatPtr(loss)
		out.ImpermanentLossPct = model.FloatPtr(loss / latest.HodlValueUSD * 100)
	}
	return out
}
