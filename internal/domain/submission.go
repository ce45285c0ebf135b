package domain

import "time"

// SubmissionMode is the entry path a proof submission arrived through.
type SubmissionMode string

const (
	ModeTwoLink     SubmissionMode = "two_link"
	ModeManual      SubmissionMode = "manual"
	ModeBookmarklet SubmissionMode = "bookmarklet"
)

// SubmissionStatus is the lifecycle state of a proof submission.
// Accepted and rejected are terminal; a correction requires a new
// submission, never mutation of a decided one.
type SubmissionStatus string

const (
	SubmissionPending     SubmissionStatus = "pending"
	SubmissionNeedsReview SubmissionStatus = "needs_review"
	SubmissionAccepted    SubmissionStatus = "accepted"
	SubmissionRejected    SubmissionStatus = "rejected"
)

// ProofSubmission records one claim attempt and its outcome, including the
// snapshot hash retained for dispute audit.
type ProofSubmission struct {
	ID           string           `db:"id" json:"id"`
	UserID       string           `db:"user_id" json:"user_id"`
	Provider     Provider         `db:"provider" json:"provider"`
	ExternalID   string           `db:"external_id" json:"external_id"`
	Mode         SubmissionMode   `db:"mode" json:"mode"`
	Status       SubmissionStatus `db:"status" json:"status"`
	ProfileURL   *string          `db:"profile_url" json:"profile_url,omitempty"`
	ResultURL    *string          `db:"result_url" json:"result_url,omitempty"`
	ContextURL   *string          `db:"context_url" json:"context_url,omitempty"`
	SnapshotHash *string          `db:"page_snapshot_hash" json:"page_snapshot_hash,omitempty"`
	Payload      JSONBMap         `db:"payload" json:"payload"`
	DecidedAt    *time.Time       `db:"decided_at" json:"decided_at,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
}
