package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/whomadeit/internal/store"
)

// ErrNotCounted is returned for results that do not count toward gender
// statistics.
var ErrNotCounted = errors.New("only man and woman results are counted")

// Update describes the effect of one counted result.
type Update struct {
	Counters store.Counters

	// Milestone is set when this update crossed a threshold and recorded it.
	Milestone *store.Milestone
}

// Aggregator applies counted results to the global stats record.
//
// The read-modify-write happens inside the store's atomic increment, and a
// crossing's milestone is committed in the same transaction. Concurrent
// callers never observe the same transition, and a failed milestone write
// leaves the counters where they were so the next count crosses again.
type Aggregator struct {
	stats      store.StatsRepo
	milestones store.MilestoneRepo
	now        func() time.Time
}

// NewAggregator creates an Aggregator over the given repositories.
func NewAggregator(stats store.StatsRepo, milestones store.MilestoneRepo) *Aggregator {
	return &Aggregator{
		stats:      stats,
		milestones: milestones,
		now:        time.Now,
	}
}

// Count increments the total and the counter matching result ("man" or
// "woman"), recording a milestone when a threshold is crossed.
func (a *Aggregator) Count(ctx context.Context, result string) (*Update, error) {
	var menDelta, womenDelta int64
	switch result {
	case "man":
		menDelta = 1
	case "woman":
		womenDelta = 1
	default:
		return nil, fmt.Errorf("%w: %q", ErrNotCounted, result)
	}

	counters, milestone, err := a.stats.IncrementAndRecord(ctx, menDelta, womenDelta, a.milestoneFor)
	if err != nil {
		return nil, fmt.Errorf("increment counters: %w", err)
	}
	return &Update{Counters: counters, Milestone: milestone}, nil
}

// milestoneFor reports the milestone reached by the increment that produced c.
func (a *Aggregator) milestoneFor(c store.Counters) (store.Milestone, bool) {
	threshold, crossed := CrossedThreshold(c.TotalQueries-1, c.TotalQueries)
	if !crossed {
		return store.Milestone{}, false
	}
	return store.Milestone{
		Count:            threshold,
		AchievedAt:       a.now().UTC(),
		MenAtMilestone:   c.MenCount,
		WomenAtMilestone: c.WomenCount,
	}, true
}

// Snapshot is the public view of the global stats record.
type Snapshot struct {
	store.Counters
	Milestones []int64 `json:"milestones"`
}

// Snapshot returns the counters and the ascending list of thresholds reached.
// Thresholds come from the milestone records, so both views always agree.
func (a *Aggregator) Snapshot(ctx context.Context) (*Snapshot, error) {
	counters, err := a.stats.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("get counters: %w", err)
	}
	ms, err := a.milestones.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}

	thresholds := make([]int64, len(ms))
	for i, m := range ms {
		thresholds[i] = m.Count
	}
	return &Snapshot{Counters: counters, Milestones: thresholds}, nil
}
