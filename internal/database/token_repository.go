package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/certifiedsliders/resultclaims/internal/domain"
)

// TokenRepository handles database operations for verification tokens.
type TokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a new token repository.
func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Mint creates a fresh single-use token for one claim attempt. The token
// value is a random UUID; the store, not process memory, is what makes it
// single use.
func (r *TokenRepository) Mint(ctx context.Context, userID, scope string, ttl time.Duration) (*domain.VerificationToken, error) {
	token := &domain.VerificationToken{
		Token:  uuid.NewString(),
		UserID: userID,
		Scope:  scope,
	}

	query := `
		INSERT INTO verification_tokens (token, user_id, scope, minted_at, expires_at)
		VALUES ($1, $2, $3, NOW(), NOW() + $4::interval)
		RETURNING minted_at, expires_at
	`

	interval := fmt.Sprintf("%d seconds", int(ttl.Seconds()))
	row := r.db.QueryRowxContext(ctx, query, token.Token, userID, scope, interval)
	if err := row.Scan(&token.MintedAt, &token.ExpiresAt); err != nil {
		return nil, fmt.Errorf("mint token: %w", err)
	}

	return token, nil
}

// ReapExpired deletes tokens whose validity window closed without being
// consumed. Run periodically; consumed tokens stay for audit.
func (r *TokenRepository) ReapExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM verification_tokens
		WHERE consumed_at IS NULL AND expires_at < NOW()
	`

	res, err := r.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("reap expired tokens: %w", err)
	}

	reaped, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reap expired tokens: rows affected: %w", err)
	}

	return reaped, nil
}
