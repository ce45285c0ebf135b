package audit

import (
	"context"

	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/logger"
)

// SubmissionStore is the persistence surface the recorder writes through.
type SubmissionStore interface {
	Create(ctx context.Context, sub *domain.ProofSubmission) error
}

// Recorder persists proof submissions with their snapshot fingerprint.
// Recording is best effort: a failed audit write is logged and never rolls
// back an already committed result.
type Recorder struct {
	store  SubmissionStore
	logger logger.Interface
}

// NewRecorder creates a Recorder.
func NewRecorder(store SubmissionStore, log logger.Interface) *Recorder {
	return &Recorder{store: store, logger: log}
}

// Record fingerprints the profile page into the submission and persists it.
func (r *Recorder) Record(ctx context.Context, sub *domain.ProofSubmission, profileHTML []byte) {
	if len(profileHTML) > 0 {
		hash := SnapshotHash(profileHTML)
		sub.SnapshotHash = &hash
	}

	if err := r.store.Create(ctx, sub); err != nil {
		r.logger.Warn("audit record write failed",
			logger.String("user_id", sub.UserID),
			logger.String("status", string(sub.Status)),
			logger.Error(err))
	}
}
