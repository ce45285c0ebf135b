package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/certifiedsliders/resultclaims/internal/domain"
)

// ErrTokenConsumed is returned when the presented token was already spent,
// expired, or never minted. Callers should check with errors.Is().
var ErrTokenConsumed = errors.New("verification token already consumed or expired")

// resultSelectColumns lists columns for SELECT queries on results.
const resultSelectColumns = `id, athlete_id, event, mark, mark_seconds, mark_seconds_adj, mark_metric,
	timing, wind, season, meet_name, meet_date, proof_url, status, source, confidence, grade, created_at`

// ResultRepository handles database operations for canonical results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// InsertVerified performs the token-gated insert. Consuming the token and
// inserting the row happen in one transaction, so of any number of
// concurrent attempts presenting the same token exactly one can commit;
// the rest fail with ErrTokenConsumed.
func (r *ResultRepository) InsertVerified(ctx context.Context, token string, result *domain.Result) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin insert transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	consume := `
		UPDATE verification_tokens
		SET consumed_at = NOW()
		WHERE token = $1 AND scope = $2
		  AND consumed_at IS NULL AND expires_at > NOW()
	`

	res, err := tx.ExecContext(ctx, consume, token, domain.ScopeResultClaim)
	if err != nil {
		return 0, fmt.Errorf("consume token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("consume token: rows affected: %w", err)
	}
	if affected == 0 {
		return 0, ErrTokenConsumed
	}

	insert := `
		INSERT INTO results (athlete_id, event, mark, mark_seconds, mark_seconds_adj, mark_metric,
			timing, wind, season, meet_name, meet_date, proof_url, status, source, confidence, grade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`

	var id int64
	err = tx.QueryRowxContext(ctx, insert,
		result.AthleteID, result.Event, result.MarkText,
		result.MarkSeconds, result.MarkSecondsAdj, result.MarkMetric,
		result.Timing, result.Wind, result.Season,
		result.MeetName, result.MeetDate, result.ProofURL,
		result.Status, result.Source, result.Confidence, result.Grade,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert result: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit result insert: %w", err)
	}

	return id, nil
}

// InsertPending stores a self-reported result outside the token gate.
// Pending rows never rank until an external decision verifies them.
func (r *ResultRepository) InsertPending(ctx context.Context, result *domain.Result) (int64, error) {
	query := `
		INSERT INTO results (athlete_id, event, mark, mark_seconds, mark_seconds_adj, mark_metric,
			timing, wind, season, meet_name, meet_date, proof_url, status, source, confidence, grade)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'pending', $13, $14, $15)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		result.AthleteID, result.Event, result.MarkText,
		result.MarkSeconds, result.MarkSecondsAdj, result.MarkMetric,
		result.Timing, result.Wind, result.Season,
		result.MeetName, result.MeetDate, result.ProofURL,
		result.Source, result.Confidence, result.Grade,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert pending result: %w", err)
	}

	return id, nil
}

// ListByAthlete returns an athlete's results, newest first.
func (r *ResultRepository) ListByAthlete(ctx context.Context, athleteID string, limit int) ([]domain.Result, error) {
	query := `
		SELECT ` + resultSelectColumns + `
		FROM results
		WHERE athlete_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	var results []domain.Result
	if err := r.db.SelectContext(ctx, &results, query, athleteID, limit); err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}

	return results, nil
}

// UpdateStatus moves a result between verification states.
func (r *ResultRepository) UpdateStatus(ctx context.Context, resultID int64, status domain.ResultStatus) error {
	query := `UPDATE results SET status = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, resultID, status); err != nil {
		return fmt.Errorf("update result status: %w", err)
	}

	return nil
}
