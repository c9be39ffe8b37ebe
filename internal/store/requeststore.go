package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/atinm/chesstactics/internal/chesserr"
)

// RequestStatus is the lifecycle state of an IndexingRequest (spec §3).
// The transition graph is acyclic: PENDING -> PROCESSING -> COMPLETED
// or FAILED.
type RequestStatus string

const (
	StatusPending    RequestStatus = "PENDING"
	StatusProcessing RequestStatus = "PROCESSING"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusFailed     RequestStatus = "FAILED"
)

// IndexingRequest is the persisted record of one indexing job (spec §3).
type IndexingRequest struct {
	ID           string
	Player       string
	Platform     string
	StartMonth   string // "YYYY-MM"
	EndMonth     string
	Status       RequestStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ErrorMessage string
	GamesIndexed int
}

// CreateIndexingRequest inserts a new request row in PENDING, owned by
// the caller (API layer) until the worker claims it.
func (s *FeatureStore) CreateIndexingRequest(ctx context.Context, req IndexingRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO indexing_requests (id, player, platform, start_month, end_month, status, created_at, updated_at, games_indexed)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW(), 0)`,
		req.ID, req.Player, req.Platform, req.StartMonth, req.EndMonth, StatusPending,
	)
	if err != nil {
		return fmt.Errorf("create indexing request %s: %w", req.ID, err)
	}
	return nil
}

// GetIndexingRequest returns the current row for id, or *chesserr.NotFound
// if no such request exists (spec §6 getStatus contract).
func (s *FeatureStore) GetIndexingRequest(ctx context.Context, id string) (*IndexingRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, player, platform, start_month, end_month, status, created_at, updated_at,
		       COALESCE(error_message, ''), games_indexed
		FROM indexing_requests WHERE id = ?`, id)

	var req IndexingRequest
	err := row.Scan(
		&req.ID, &req.Player, &req.Platform, &req.StartMonth, &req.EndMonth, &req.Status,
		&req.CreatedAt, &req.UpdatedAt, &req.ErrorMessage, &req.GamesIndexed,
	)
	if err == sql.ErrNoRows {
		return nil, &chesserr.NotFound{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get indexing request %s: %w", id, err)
	}
	return &req, nil
}

// TransitionStatus moves a request into a new status, bumping updated_at,
// and optionally setting error_message (spec §4.9's state machine).
func (s *FeatureStore) TransitionStatus(ctx context.Context, id string, status RequestStatus, errMsg string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE indexing_requests SET status = ?, error_message = ?, updated_at = NOW() WHERE id = ?`,
		status, nullableString(errMsg), id,
	)
	if err != nil {
		return fmt.Errorf("transition indexing request %s to %s: %w", id, status, err)
	}
	return nil
}

// ClaimPending atomically transitions id from PENDING to PROCESSING,
// returning false if the row is missing or not PENDING (spec §5's
// cancellation-by-delete / dequeue-ordering contract: the worker skips
// messages whose request row is missing or has status != PENDING).
func (s *FeatureStore) ClaimPending(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE indexing_requests SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		StatusProcessing, id, StatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("claim indexing request %s: %w", id, err)
	}
	rowCnt, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected claiming %s: %w", id, err)
	}
	return rowCnt == 1, nil
}

// UpdateGamesIndexed sets the games_indexed counter (spec §4.9: updated
// every Kth successful game).
func (s *FeatureStore) UpdateGamesIndexed(ctx context.Context, id string, count int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE indexing_requests SET games_indexed = ?, updated_at = NOW() WHERE id = ?`,
		count, id,
	)
	if err != nil {
		return fmt.Errorf("update games_indexed for %s: %w", id, err)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
