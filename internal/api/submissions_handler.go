package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certifiedsliders/resultclaims/internal/api/middleware"
	"github.com/certifiedsliders/resultclaims/internal/database"
	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/review"
)

const defaultSubmissionLimit = 50

// SubmissionStore reads and decides proof submissions.
type SubmissionStore interface {
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.ProofSubmission, error)
	Decide(ctx context.Context, id string, to domain.SubmissionStatus) error
}

// SubmissionsHandler serves submission listing and the decision hook.
type SubmissionsHandler struct {
	store SubmissionStore
}

// NewSubmissionsHandler creates a SubmissionsHandler.
func NewSubmissionsHandler(store SubmissionStore) *SubmissionsHandler {
	return &SubmissionsHandler{store: store}
}

// List handles GET /api/v1/submissions.
func (h *SubmissionsHandler) List(c *gin.Context) {
	limit := parseLimit(c, defaultSubmissionLimit)

	subs, err := h.store.ListByUser(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": subs})
}

// Decide handles POST /api/v1/submissions/:id/decision. This is the
// external decision hook for pending and needs_review submissions.
func (h *SubmissionsHandler) Decide(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	to := domain.SubmissionStatus(req.Decision)
	if to != domain.SubmissionAccepted && to != domain.SubmissionRejected {
		respondBadRequest(c, "decision must be accepted or rejected")
		return
	}

	err := h.store.Decide(c.Request.Context(), c.Param("id"), to)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": string(to)})
	case errors.Is(err, database.ErrSubmissionNotFound):
		respondNotFound(c, "submission")
	case errors.Is(err, review.ErrTerminalState):
		c.JSON(http.StatusConflict, gin.H{"error": "submission already decided"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to decide submission"})
	}
}
