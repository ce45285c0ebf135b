package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/logger"
)

var (
	// ErrBadProfileURL marks a profile URL that cannot name an athlete.
	ErrBadProfileURL = errors.New("bad profile url")
	// ErrProfileNotVerified marks a caller with no verified identity
	// matching the claimed profile.
	ErrProfileNotVerified = errors.New("profile not verified")
)

// Store is the identity persistence surface the resolver needs.
type Store interface {
	ListVerified(ctx context.Context, userID string, provider domain.Provider) ([]domain.ExternalIdentity, error)
	BackfillNumericID(ctx context.Context, userID string, provider domain.Provider, externalID, numericID string) error
}

// Resolver matches claimed profile URLs against a caller's verified
// identities.
type Resolver struct {
	store  Store
	logger logger.Interface
}

// NewResolver creates a Resolver.
func NewResolver(store Store, log logger.Interface) *Resolver {
	return &Resolver{store: store, logger: log}
}

// PrecheckProfileURL rejects profile URLs whose host no provider owns or
// whose path does not name an athlete. This runs before any network call
// so malformed submissions never cost a fetch.
func PrecheckProfileURL(raw string) error {
	if _, ok := ProviderForProfileURL(raw); !ok {
		return fmt.Errorf("%w: unrecognized host in %q", ErrBadProfileURL, raw)
	}
	if candidateFromURL(raw).empty() {
		return fmt.Errorf("%w: no athlete reference in %q", ErrBadProfileURL, raw)
	}
	return nil
}

// Resolve determines which of the caller's verified identities the claimed
// profile belongs to. The candidate slug and numeric id are accumulated
// from four signals in priority order, each overwriting prior fields only
// when non-empty: the literal submitted URL, the final URL after redirects,
// the canonical link in the fetched markup, and identity references in the
// page body. html and finalURL may be empty when no page was fetched yet.
func (r *Resolver) Resolve(
	ctx context.Context,
	userID string,
	profileURL string,
	finalURL string,
	html []byte,
) (*domain.ExternalIdentity, error) {
	provider, ok := ProviderForProfileURL(profileURL)
	if !ok {
		return nil, fmt.Errorf("%w: unrecognized host in %q", ErrBadProfileURL, profileURL)
	}

	candidate := fold(
		func() Candidate { return candidateFromURL(profileURL) },
		func() Candidate { return candidateFromURL(finalURL) },
		func() Candidate { return candidateFromCanonical(html) },
		func() Candidate { return candidateFromBody(html) },
	)
	if candidate.empty() {
		return nil, fmt.Errorf("%w: no athlete reference in %q", ErrBadProfileURL, profileURL)
	}

	identities, err := r.store.ListVerified(ctx, userID, provider)
	if err != nil {
		return nil, fmt.Errorf("list verified identities: %w", err)
	}
	if len(identities) == 0 {
		return nil, fmt.Errorf("%w: no verified %s identity", ErrProfileNotVerified, provider)
	}

	matched := matchCandidate(identities, candidate)
	if matched == nil {
		return nil, fmt.Errorf("%w: profile does not match a verified identity", ErrProfileNotVerified)
	}

	// Enrichment only. A failed backfill never fails the claim.
	if matched.ExternalNumericID == nil && candidate.NumericID != "" {
		if err := r.store.BackfillNumericID(ctx, userID, provider, matched.ExternalID, candidate.NumericID); err != nil {
			r.logger.Warn("numeric id backfill failed",
				logger.String("user_id", userID),
				logger.String("external_id", matched.ExternalID),
				logger.Error(err))
		} else {
			id := candidate.NumericID
			matched.ExternalNumericID = &id
		}
	}

	return matched, nil
}

// matchCandidate picks the first verified identity matching the candidate,
// slug first, numeric id as fallback.
func matchCandidate(identities []domain.ExternalIdentity, c Candidate) *domain.ExternalIdentity {
	if c.Slug != "" {
		for i := range identities {
			if identities[i].MatchesSlug(c.Slug) {
				return &identities[i]
			}
		}
	}

	if c.NumericID != "" {
		for i := range identities {
			if identities[i].MatchesNumericID(c.NumericID) {
				return &identities[i]
			}
		}
	}

	return nil
}
