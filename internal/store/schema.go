package store

import (
	"context"
	"database/sql"
	"fmt"
)

const (
	tableQueries     = "queries"
	tableGlobalStats = "global_stats"
	tableMilestones  = "milestones"
	tableLLMEvents   = "llm_request_events"
)

// schemaStatements lists the DDL applied on every Open. All statements are
// idempotent.
var schemaStatements = []string{
	// seq gives a stable insertion order for records sharing a timestamp.
	`CREATE TABLE IF NOT EXISTS queries (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		input_text TEXT NOT NULL,
		result TEXT NOT NULL,
		creator_name TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT 'General',
		explanation TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS query_created_at ON queries (created_at)`,
	`CREATE INDEX IF NOT EXISTS query_result_category ON queries (result, category)`,

	`CREATE TABLE IF NOT EXISTS global_stats (
		kind TEXT NOT NULL PRIMARY KEY,
		total_queries INTEGER NOT NULL DEFAULT 0,
		men_count INTEGER NOT NULL DEFAULT 0,
		women_count INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS milestones (
		threshold INTEGER NOT NULL PRIMARY KEY,
		achieved_at INTEGER NOT NULL,
		men_at_milestone INTEGER NOT NULL,
		women_at_milestone INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at INTEGER NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		purpose TEXT NOT NULL,
		input_tokens INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms INTEGER NOT NULL DEFAULT 0,
		success INTEGER NOT NULL,
		error_message TEXT NOT NULL DEFAULT '',
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS llm_event_purpose ON llm_request_events (purpose)`,
}

// migrate creates missing tables and indexes.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}
