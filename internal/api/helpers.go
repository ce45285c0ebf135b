// Package api implements the HTTP API for the claim service.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/certifiedsliders/resultclaims/internal/claims"
)

// parseLimit parses the limit query param with a default.
func parseLimit(c *gin.Context, defaultLimit int) int {
	limitStr := c.DefaultQuery("limit", strconv.Itoa(defaultLimit))
	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 {
		limit = defaultLimit
	}
	return limit
}

// respondClaimError sends the failure envelope with the code's transport
// status.
func respondClaimError(c *gin.Context, cerr *claims.Error) {
	c.JSON(cerr.Code.HTTPStatus(), ErrorResponse{
		OK:    false,
		Error: cerr.Message,
		Code:  string(cerr.Code),
	})
}

// respondCode sends the failure envelope for a bare code.
func respondCode(c *gin.Context, code claims.Code, message string) {
	c.JSON(code.HTTPStatus(), ErrorResponse{
		OK:    false,
		Error: message,
		Code:  string(code),
	})
}

// respondBadRequest sends a 400 with the BAD_REQUEST code.
func respondBadRequest(c *gin.Context, message string) {
	respondCode(c, claims.CodeBadRequest, message)
}

// respondNotFound sends a 404 with resource not found message.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
}
