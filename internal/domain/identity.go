// Package domain defines the core types shared across the claim pipeline.
package domain

import "strings"

// Provider identifies a supported external results aggregator.
type Provider string

const (
	ProviderAthleticNet Provider = "athleticnet"
	ProviderMileSplit   Provider = "milesplit"
	ProviderDirect      Provider = "direct"
)

// ExternalIdentity is an external account a user has proven ownership of.
// Only verified identities participate in claim matching.
type ExternalIdentity struct {
	UserID            string   `db:"user_id" json:"user_id"`
	Provider          Provider `db:"provider" json:"provider"`
	ExternalID        string   `db:"external_id" json:"external_id"`
	ExternalNumericID *string  `db:"external_numeric_id" json:"external_numeric_id,omitempty"`
	Verified          bool     `db:"verified" json:"verified"`
}

// MatchesSlug reports whether the identity slug matches the candidate,
// case-insensitively.
func (e *ExternalIdentity) MatchesSlug(slug string) bool {
	return strings.EqualFold(e.ExternalID, slug)
}

// MatchesNumericID reports whether the identity's numeric id matches the
// candidate. An identity with no numeric id never matches.
func (e *ExternalIdentity) MatchesNumericID(numericID string) bool {
	return e.ExternalNumericID != nil && numericID != "" && *e.ExternalNumericID == numericID
}
