package db

import "time"

// Research query lifecycle statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ValidStatus reports whether s is a known query status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// ResearchQuery stores a research query submitted by a user.
type ResearchQuery struct {
	ID        int64     `db:"id" json:"id"`
	Query     string    `db:"query" json:"query"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Results are loaded on demand by the repository.
	Results []ResearchResult `db:"-" json:"results,omitempty"`
}

// ResearchResult stores an individual result belonging to a query.
type ResearchResult struct {
	ID             int64     `db:"id" json:"id"`
	QueryID        int64     `db:"query_id" json:"query_id"`
	Title          string    `db:"title" json:"title"`
	Content        string    `db:"content" json:"content"`
	SourceURL      *string   `db:"source_url" json:"source_url,omitempty"`
	RelevanceScore *float64  `db:"relevance_score" json:"relevance_score,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
