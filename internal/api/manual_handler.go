package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/certifiedsliders/resultclaims/internal/api/middleware"
	"github.com/certifiedsliders/resultclaims/internal/claims"
)

// ManualSubmitter stores self-reported results.
type ManualSubmitter interface {
	Submit(ctx context.Context, userID string, req claims.ManualRequest) (*claims.Outcome, *claims.Error)
}

// ManualHandler serves the manual-entry endpoint.
type ManualHandler struct {
	intake ManualSubmitter
}

// NewManualHandler creates a ManualHandler.
func NewManualHandler(intake ManualSubmitter) *ManualHandler {
	return &ManualHandler{intake: intake}
}

// SubmitManual handles POST /api/v1/claims/manual.
func (h *ManualHandler) SubmitManual(c *gin.Context) {
	var req claims.ManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body")
		return
	}

	out, cerr := h.intake.Submit(c.Request.Context(), middleware.UserID(c), req)
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
