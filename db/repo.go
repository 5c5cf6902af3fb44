package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a query or result does not exist.
var ErrNotFound = errors.New("db: not found")

// ResearchRepo provides access to persisted research queries and results.
type ResearchRepo struct {
	db *DB
}

// NewResearchRepo creates a repository over the given connection.
func NewResearchRepo(db *DB) *ResearchRepo {
	return &ResearchRepo{db: db}
}

// CreateQuery inserts a new query in pending state and returns it.
func (r *ResearchRepo) CreateQuery(ctx context.Context, query string) (*ResearchQuery, error) {
	var q ResearchQuery
	err := r.db.GetContext(ctx, &q, `
		INSERT INTO research_queries (query, status)
		VALUES ($1, $2)
		RETURNING id, query, status, created_at, updated_at`,
		query, StatusPending)
	if err != nil {
		return nil, fmt.Errorf("create query: %w", err)
	}
	return &q, nil
}

// UpdateQueryStatus transitions a query to the given lifecycle status.
func (r *ResearchRepo) UpdateQueryStatus(ctx context.Context, id int64, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE research_queries
		SET status = $1, updated_at = now()
		WHERE id = $2`,
		status, id)
	if err != nil {
		return fmt.Errorf("update query status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update query status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddResults stores the given results for a query inside one transaction.
func (r *ResearchRepo) AddResults(ctx context.Context, queryID int64, results []ResearchResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, result := range results {
		result.QueryID = queryID
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO research_results (query_id, title, content, source_url, relevance_score)
			VALUES (:query_id, :title, :content, :source_url, :relevance_score)`,
			result); err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit results: %w", err)
	}
	return nil
}

// GetQuery loads a query together with its results ordered by relevance.
func (r *ResearchRepo) GetQuery(ctx context.Context, id int64) (*ResearchQuery, error) {
	var q ResearchQuery
	err := r.db.GetContext(ctx, &q, `
		SELECT id, query, status, created_at, updated_at
		FROM research_queries
		WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get query: %w", err)
	}

	err = r.db.SelectContext(ctx, &q.Results, `
		SELECT id, query_id, title, content, source_url, relevance_score, created_at, updated_at
		FROM research_results
		WHERE query_id = $1
		ORDER BY relevance_score DESC NULLS LAST, id`, id)
	if err != nil {
		return nil, fmt.Errorf("get results: %w", err)
	}
	return &q, nil
}

// ListQueries returns recent queries, optionally filtered by status.
func (r *ResearchRepo) ListQueries(ctx context.Context, status string, limit int) ([]ResearchQuery, error) {
	if limit <= 0 {
		limit = 50
	}

	var queries []ResearchQuery
	var err error
	if status != "" {
		if !ValidStatus(status) {
			return nil, fmt.Errorf("invalid status %q", status)
		}
		err = r.db.SelectContext(ctx, &queries, `
			SELECT id, query, status, created_at, updated_at
			FROM research_queries
			WHERE status = $1
			ORDER BY created_at DESC
			LIMIT $2`, status, limit)
	} else {
		err = r.db.SelectContext(ctx, &queries, `
			SELECT id, query, status, created_at, updated_at
			FROM research_queries
			ORDER BY created_at DESC
			LIMIT $1`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	return queries, nil
}
