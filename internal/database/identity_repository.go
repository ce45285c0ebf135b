package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/certifiedsliders/resultclaims/internal/domain"
)

// identitySelectColumns lists columns for SELECT queries on
// external_identities.
const identitySelectColumns = `user_id, provider, external_id, external_numeric_id, verified`

// IdentityRepository handles database operations for external identities.
type IdentityRepository struct {
	db *sqlx.DB
}

// NewIdentityRepository creates a new identity repository.
func NewIdentityRepository(db *sqlx.DB) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// ListVerified returns the caller's verified identities for one provider.
// Unverified rows never participate in claim matching.
func (r *IdentityRepository) ListVerified(ctx context.Context, userID string, provider domain.Provider) ([]domain.ExternalIdentity, error) {
	query := `
		SELECT ` + identitySelectColumns + `
		FROM external_identities
		WHERE user_id = $1 AND provider = $2 AND verified = TRUE
		ORDER BY external_id
	`

	var identities []domain.ExternalIdentity
	if err := r.db.SelectContext(ctx, &identities, query, userID, provider); err != nil {
		return nil, fmt.Errorf("list verified identities: %w", err)
	}

	return identities, nil
}

// BackfillNumericID stores a freshly discovered numeric id on an identity
// that lacked one. Existing numeric ids are never overwritten.
func (r *IdentityRepository) BackfillNumericID(ctx context.Context, userID string, provider domain.Provider, externalID, numericID string) error {
	query := `
		UPDATE external_identities
		SET external_numeric_id = $4
		WHERE user_id = $1 AND provider = $2 AND external_id = $3
		  AND external_numeric_id IS NULL
	`

	if _, err := r.db.ExecContext(ctx, query, userID, provider, externalID, numericID); err != nil {
		return fmt.Errorf("backfill numeric id: %w", err)
	}

	return nil
}
