// Package analysis runs the analyze pipeline: classify an item, persist
// counted results and update the global statistics.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/whomadeit/internal/classifier"
	"github.com/abhisek/whomadeit/internal/stats"
	"github.com/abhisek/whomadeit/internal/store"
)

var (
	// ErrNotConfigured is returned when no classifier credential is set.
	ErrNotConfigured = errors.New("API key not configured")

	// ErrEmptyInput is returned for blank input text.
	ErrEmptyInput = errors.New("input_text must not be empty")
)

// Classifier produces a parsed guess for an item description.
type Classifier interface {
	Classify(ctx context.Context, text string) (classifier.Outcome, error)
}

// Analyzer coordinates classification, persistence and aggregation.
type Analyzer struct {
	classifier Classifier
	queries    store.QueryRepo
	milestones store.MilestoneRepo
	agg        *stats.Aggregator
	logger     *zap.Logger

	now   func() time.Time
	newID func() string
}

// New creates an Analyzer. A nil classifier is allowed: reads keep
// working and Analyze returns ErrNotConfigured.
func New(c Classifier, st *store.Store, logger *zap.Logger) *Analyzer {
	return NewWithRepos(c, st.Queries(), st.Stats(), st.Milestones(), logger)
}

// NewWithRepos creates an Analyzer over explicit repositories.
func NewWithRepos(
	c Classifier,
	queries store.QueryRepo,
	statsRepo store.StatsRepo,
	milestones store.MilestoneRepo,
	logger *zap.Logger,
) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		classifier: c,
		queries:    queries,
		milestones: milestones,
		agg:        stats.NewAggregator(statsRepo, milestones),
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Configured reports whether a classifier is available.
func (a *Analyzer) Configured() bool {
	return a.classifier != nil
}

// Analyze classifies text and returns the resulting record. Records with a
// man or woman result are persisted and counted; others are returned
// without touching the store.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*store.Query, error) {
	if a.classifier == nil {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	out, err := a.classifier.Classify(ctx, text)
	if err != nil {
		a.logger.Error("classification failed", zap.String("input", text), zap.Error(err))
		return nil, err
	}
	if !out.Parsed() {
		a.logger.Warn("unparseable classifier output, using fallback",
			zap.String("input", text), zap.Error(out.Err))
	}

	q := &store.Query{
		ID:          a.newID(),
		InputText:   text,
		Result:      out.Guess.Result,
		CreatorName: out.Guess.CreatorName,
		Category:    out.Guess.Category,
		Explanation: out.Guess.Explanation,
		Timestamp:   a.now().UTC(),
	}

	logger := a.logger.With(zap.String("id", q.ID), zap.String("result", q.Result))

	if !classifier.Counted(q.Result) {
		logger.Debug("result not counted")
		return q, nil
	}

	if err := a.queries.Record(ctx, q); err != nil {
		return nil, fmt.Errorf("record query: %w", err)
	}

	update, err := a.agg.Count(ctx, q.Result)
	if err != nil {
		return nil, fmt.Errorf("update stats: %w", err)
	}

	logger.Info("query recorded",
		zap.String("category", q.Category),
		zap.Int64("total_queries", update.Counters.TotalQueries))
	if m := update.Milestone; m != nil {
		logger.Info("milestone reached",
			zap.Int64("count", m.Count),
			zap.Int64("men", m.MenAtMilestone),
			zap.Int64("women", m.WomenAtMilestone))
	}

	return q, nil
}

// DefaultQueryLimit is the page size for RecentQueries when none is given.
const DefaultQueryLimit = 50

// Stats returns the global counters and reached thresholds.
func (a *Analyzer) Stats(ctx context.Context) (*stats.Snapshot, error) {
	return a.agg.Snapshot(ctx)
}

// RecentQueries returns up to limit records, newest first. limit is
// passed through unmodified.
func (a *Analyzer) RecentQueries(ctx context.Context, limit int) ([]store.Query, error) {
	return a.queries.ListRecent(ctx, limit)
}

// Categories returns the per-category man/woman breakdown.
func (a *Analyzer) Categories(ctx context.Context) ([]store.CategoryCount, error) {
	return a.queries.AggregateByCategory(ctx)
}

// Milestones returns all milestone records, highest count first.
func (a *Analyzer) Milestones(ctx context.Context) ([]store.Milestone, error) {
	return a.milestones.List(ctx, true)
}
