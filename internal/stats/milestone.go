// Package stats maintains the global gender counters and detects milestone
// crossings.
package stats

// MilestoneInterval is the spacing between milestone thresholds.
const MilestoneInterval int64 = 100_000

// CrossedThreshold reports the milestone threshold passed when the total
// moved from oldTotal to newTotal. When several thresholds lie in between,
// the highest is returned.
func CrossedThreshold(oldTotal, newTotal int64) (int64, bool) {
	oldThreshold := floorThreshold(oldTotal)
	newThreshold := floorThreshold(newTotal)
	if newThreshold > oldThreshold && newThreshold > 0 {
		return newThreshold, true
	}
	return 0, false
}

func floorThreshold(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return (total / MilestoneInterval) * MilestoneInterval
}
