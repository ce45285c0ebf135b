package api

// ClaimResponse is the success envelope for claim endpoints.
type ClaimResponse struct {
	OK       bool   `json:"ok"`
	Status   string `json:"status"`
	ResultID int64  `json:"resultId"`
}

// ErrorResponse is the failure envelope: a human message plus the stable
// machine code.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

// DecisionRequest moves a submission to a terminal state.
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}
