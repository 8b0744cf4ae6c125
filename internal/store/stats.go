package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// globalKind is the fixed key of the singleton stats row.
const globalKind = "global"

// statsRepo implements StatsRepo.
//
// Uses raw SQL outside the query builder because the increment must be a
// single upsert with RETURNING: the returned totals are authoritative for the
// calling request even when other requests increment concurrently.
// The milestone for a crossing is written in the same transaction, so a
// failed insert also rolls back the increment that crossed the threshold.
type statsRepo struct {
	db *sql.DB
}

const incrementSQL = `INSERT INTO global_stats (kind, total_queries, men_count, women_count)
	VALUES (?, 1, ?, ?)
	ON CONFLICT (kind) DO UPDATE SET
		total_queries = total_queries + 1,
		men_count = men_count + excluded.men_count,
		women_count = women_count + excluded.women_count
	RETURNING total_queries, men_count, women_count`

func (r *statsRepo) Increment(ctx context.Context, menDelta, womenDelta int64) (Counters, error) {
	c, _, err := r.IncrementAndRecord(ctx, menDelta, womenDelta, nil)
	return c, err
}

func (r *statsRepo) IncrementAndRecord(ctx context.Context, menDelta, womenDelta int64, check MilestoneFunc) (Counters, *Milestone, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Counters{}, nil, fmt.Errorf("begin stats update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var c Counters
	err = tx.QueryRowContext(ctx, incrementSQL, globalKind, menDelta, womenDelta).
		Scan(&c.TotalQueries, &c.MenCount, &c.WomenCount)
	if err != nil {
		return Counters{}, nil, fmt.Errorf("increment stats: %w", err)
	}

	var recorded *Milestone
	if check != nil {
		if m, ok := check(c); ok {
			created, err := insertMilestone(ctx, tx, m)
			if err != nil {
				return Counters{}, nil, err
			}
			if created {
				recorded = &m
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Counters{}, nil, fmt.Errorf("commit stats update: %w", err)
	}
	return c, recorded, nil
}

func (r *statsRepo) Get(ctx context.Context) (Counters, error) {
	query, args := builder.Select("total_queries", "men_count", "women_count").
		From(builder.Table(tableGlobalStats)).
		Where(entsql.EQ("kind", globalKind)).
		Query()

	var c Counters
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.TotalQueries, &c.MenCount, &c.WomenCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Counters{}, nil
	}
	if err != nil {
		return Counters{}, fmt.Errorf("get stats: %w", err)
	}
	return c, nil
}
