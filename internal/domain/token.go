package domain

import "time"

// Token scopes. A token minted for one scope cannot authorize a write in
// another.
const (
	ScopeResultClaim = "result_claim"
)

// VerificationToken is the single-use admission token consumed by the
// token-gated result insert. A stale or already-consumed token cannot
// produce a second write.
type VerificationToken struct {
	Token      string     `db:"token" json:"token"`
	UserID     string     `db:"user_id" json:"user_id"`
	Scope      string     `db:"scope" json:"scope"`
	MintedAt   time.Time  `db:"minted_at" json:"minted_at"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	ConsumedAt *time.Time `db:"consumed_at" json:"consumed_at,omitempty"`
}
