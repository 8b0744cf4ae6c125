package store

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// MaxCategories caps the category breakdown.
const MaxCategories = 20

// queryRepo implements QueryRepo.
type queryRepo struct {
	db *sql.DB
}

func (r *queryRepo) Record(ctx context.Context, q *Query) error {
	query, args := builder.Insert(tableQueries).
		Columns("id", "input_text", "result", "creator_name", "category", "explanation", "created_at").
		Values(q.ID, q.InputText, q.Result, q.CreatorName, q.Category, q.Explanation, toUnix(q.Timestamp)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save query: %w", err)
	}
	return nil
}

func (r *queryRepo) ListRecent(ctx context.Context, limit int) ([]Query, error) {
	query, args := builder.Select("id", "input_text", "result", "creator_name", "category", "explanation", "created_at").
		From(builder.Table(tableQueries)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("seq")).
		Limit(limit).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer rows.Close()

	out := []Query{}
	for rows.Next() {
		var (
			q  Query
			ts int64
		)
		if err := rows.Scan(&q.ID, &q.InputText, &q.Result, &q.CreatorName, &q.Category, &q.Explanation, &ts); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		q.Timestamp = fromUnix(ts)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queries: %w", err)
	}
	return out, nil
}

func (r *queryRepo) AggregateByCategory(ctx context.Context) ([]CategoryCount, error) {
	query, args := builder.Select(
		"category",
		entsql.As(entsql.Count("*"), "total"),
		entsql.As("SUM(CASE WHEN result = 'man' THEN 1 ELSE 0 END)", "men"),
		entsql.As("SUM(CASE WHEN result = 'woman' THEN 1 ELSE 0 END)", "women"),
	).
		From(builder.Table(tableQueries)).
		Where(entsql.In("result", "man", "woman")).
		GroupBy("category").
		OrderBy(entsql.Desc("total"), "category").
		Limit(MaxCategories).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}
	defer rows.Close()

	out := []CategoryCount{}
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count, &c.MenCount, &c.WomenCount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}
