package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/review"
)

// ErrSubmissionNotFound is returned when a submission id does not exist.
var ErrSubmissionNotFound = errors.New("submission not found")

// submissionSelectColumns lists columns for SELECT queries on
// proof_submissions.
const submissionSelectColumns = `id, user_id, provider, external_id, mode, status, profile_url,
	result_url, context_url, page_snapshot_hash, payload, decided_at, created_at`

// SubmissionRepository handles database operations for proof submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository creates a new submission repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create persists a submission record, assigning its id.
func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.ProofSubmission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}

	query := `
		INSERT INTO proof_submissions (id, user_id, provider, external_id, mode, status,
			profile_url, result_url, context_url, page_snapshot_hash, payload, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		sub.ID, sub.UserID, sub.Provider, sub.ExternalID, sub.Mode, sub.Status,
		sub.ProfileURL, sub.ResultURL, sub.ContextURL, sub.SnapshotHash,
		sub.Payload, sub.DecidedAt,
	)
	if err := row.Scan(&sub.CreatedAt); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}

	return nil
}

// GetByID returns one submission.
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*domain.ProofSubmission, error) {
	query := `
		SELECT ` + submissionSelectColumns + `
		FROM proof_submissions
		WHERE id = $1
	`

	var sub domain.ProofSubmission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}

	return &sub, nil
}

// ListByUser returns a user's submissions, newest first.
func (r *SubmissionRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.ProofSubmission, error) {
	query := `
		SELECT ` + submissionSelectColumns + `
		FROM proof_submissions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var subs []domain.ProofSubmission
	if err := r.db.SelectContext(ctx, &subs, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}

	return subs, nil
}

// Decide moves a submission to a terminal state and flips the linked
// result in the same transaction: accepted verifies it, rejected
// invalidates it. The lifecycle is enforced on the current row, so a
// decided submission can never be redecided.
func (r *SubmissionRepository) Decide(ctx context.Context, id string, to domain.SubmissionStatus) error {
	sub, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := review.Transition(sub.Status, to); err != nil {
		return err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("decide submission: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		UPDATE proof_submissions
		SET status = $2, decided_at = NOW()
		WHERE id = $1 AND status = $3
	`

	res, err := tx.ExecContext(ctx, query, id, to, sub.Status)
	if err != nil {
		return fmt.Errorf("decide submission: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decide submission: rows affected: %w", err)
	}
	if affected == 0 {
		// Lost a race with another decision on the same row.
		return fmt.Errorf("%w: %s", review.ErrTerminalState, id)
	}

	if resultID, ok := payloadResultID(sub.Payload); ok {
		status := domain.ResultVerified
		if to == domain.SubmissionRejected {
			status = domain.ResultInvalid
		}

		resultQuery := `UPDATE results SET status = $2 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, resultQuery, resultID, status); err != nil {
			return fmt.Errorf("decide submission: update result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("decide submission: commit: %w", err)
	}

	return nil
}

// payloadResultID extracts the linked result id from a submission payload.
// The value is int64 when freshly built and float64 after a JSONB
// round-trip.
func payloadResultID(payload domain.JSONBMap) (int64, bool) {
	switch v := payload["resultId"].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}
