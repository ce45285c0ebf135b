package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certifiedsliders/resultclaims/internal/api/middleware"
	"github.com/certifiedsliders/resultclaims/internal/claims"
)

// ClaimSubmitter runs the two-link pipeline.
type ClaimSubmitter interface {
	SubmitTwoLink(ctx context.Context, userID string, req claims.TwoLinkRequest) (*claims.Outcome, *claims.Error)
}

// ClaimsHandler serves the two-link claim endpoint.
type ClaimsHandler struct {
	orchestrator ClaimSubmitter
}

// NewClaimsHandler creates a ClaimsHandler.
func NewClaimsHandler(orchestrator ClaimSubmitter) *ClaimsHandler {
	return &ClaimsHandler{orchestrator: orchestrator}
}

// SubmitTwoLink handles POST /api/v1/claims/two-link.
func (h *ClaimsHandler) SubmitTwoLink(c *gin.Context) {
	var req claims.TwoLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	out, cerr := h.orchestrator.SubmitTwoLink(c.Request.Context(), middleware.UserID(c), req)
	if cerr != nil {
		respondClaimError(c, cerr)
		return
	}

	c.JSON(http.StatusOK, ClaimResponse{
		OK:       true,
		Status:   string(out.Status),
		ResultID: out.ResultID,
	})
}
