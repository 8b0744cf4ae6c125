package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // timestamp >= From
	To    time.Time // timestamp <= To
}

// Query is one persisted classification. Records are immutable once written.
type Query struct {
	ID          string    `json:"id"`
	InputText   string    `json:"input_text"`
	Result      string    `json:"result"`
	CreatorName string    `json:"creator_name"`
	Category    string    `json:"category"`
	Explanation string    `json:"explanation"`
	Timestamp   time.Time `json:"timestamp"`
}

// CategoryCount is the per-category breakdown of man/woman records.
type CategoryCount struct {
	Category   string `json:"category"`
	Count      int64  `json:"count"`
	MenCount   int64  `json:"men_count"`
	WomenCount int64  `json:"women_count"`
}

// Counters is the authoritative state of the global stats record.
type Counters struct {
	TotalQueries int64 `json:"total_queries"`
	MenCount     int64 `json:"men_count"`
	WomenCount   int64 `json:"women_count"`
}

// Milestone marks the first time the total reached a threshold.
type Milestone struct {
	Count            int64     `json:"count"`
	AchievedAt       time.Time `json:"achieved_at"`
	MenAtMilestone   int64     `json:"men_at_milestone"`
	WomenAtMilestone int64     `json:"women_at_milestone"`
}

// QueryRepo stores classified queries.
type QueryRepo interface {
	// Record appends an immutable query record.
	Record(ctx context.Context, q *Query) error

	// ListRecent returns records newest first. limit is passed to the
	// database unmodified, including zero and negative values.
	ListRecent(ctx context.Context, limit int) ([]Query, error)

	// AggregateByCategory counts man/woman records per category, largest
	// first, capped at MaxCategories.
	AggregateByCategory(ctx context.Context) ([]CategoryCount, error)
}

// MilestoneFunc decides whether the counters after an increment reach a
// milestone, returning the record to store.
type MilestoneFunc func(Counters) (Milestone, bool)

// StatsRepo owns the global counters singleton.
type StatsRepo interface {
	// Increment adds one to the total and the given per-gender deltas in a
	// single atomic statement, returning the counters after the update.
	Increment(ctx context.Context, menDelta, womenDelta int64) (Counters, error)

	// IncrementAndRecord is Increment plus, when check reports a milestone
	// for the updated counters, an insert of that milestone, committed
	// together. The returned milestone is non-nil only if this call created
	// it. A nil check skips milestone handling.
	IncrementAndRecord(ctx context.Context, menDelta, womenDelta int64, check MilestoneFunc) (Counters, *Milestone, error)

	// Get returns the current counters, zero-valued if never written.
	Get(ctx context.Context) (Counters, error)
}

// MilestoneRepo stores milestone records, one per threshold.
type MilestoneRepo interface {
	// Record inserts m unless a record for m.Count already exists.
	// Returns true if this call created the record.
	Record(ctx context.Context, m Milestone) (bool, error)

	// List returns all milestones ordered by count, descending when desc.
	List(ctx context.Context, desc bool) ([]Milestone, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsageStats aggregates LLM usage for one purpose.
type LLMUsageStats struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// EventLog is an EventRepo that can also be inspected.
type EventLog interface {
	EventRepo

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)

	// LLMUsageByPurpose aggregates calls and tokens per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsageStats, error)

	// LLMUsageByModel aggregates calls and tokens per model.
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
