package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// milestoneRepo implements MilestoneRepo. The threshold primary key makes
// Record idempotent per threshold.
type milestoneRepo struct {
	db *sql.DB
}

func (r *milestoneRepo) Record(ctx context.Context, m Milestone) (bool, error) {
	return insertMilestone(ctx, r.db, m)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMilestone(ctx context.Context, db execer, m Milestone) (bool, error) {
	query, args := builder.Insert(tableMilestones).
		Columns("threshold", "achieved_at", "men_at_milestone", "women_at_milestone").
		Values(m.Count, toUnix(m.AchievedAt), m.MenAtMilestone, m.WomenAtMilestone).
		OnConflict(entsql.ConflictColumns("threshold"), entsql.DoNothing()).
		Query()

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("save milestone %d: %w", m.Count, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save milestone %d: %w", m.Count, err)
	}
	return n == 1, nil
}

func (r *milestoneRepo) List(ctx context.Context, desc bool) ([]Milestone, error) {
	order := "threshold"
	if desc {
		order = entsql.Desc("threshold")
	}
	query, args := builder.Select("threshold", "achieved_at", "men_at_milestone", "women_at_milestone").
		From(builder.Table(tableMilestones)).
		OrderBy(order).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	out := []Milestone{}
	for rows.Next() {
		var (
			m  Milestone
			ts int64
		)
		if err := rows.Scan(&m.Count, &ts, &m.MenAtMilestone, &m.WomenAtMilestone); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		m.AchievedAt = fromUnix(ts)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate milestones: %w", err)
	}
	return out, nil
}
