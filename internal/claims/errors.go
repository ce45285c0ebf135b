// Package claims sequences the two-link claim pipeline.
package claims

import "net/http"

// Code is the stable machine-readable failure code surfaced to callers.
type Code string

const (
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeBadProfileURL      Code = "BAD_PROFILE_URL"
	CodeBadResultURL       Code = "BAD_RESULT_URL"
	CodeProfileNotVerified Code = "PROFILE_NOT_VERIFIED"
	CodeProfileFetchFailed Code = "PROFILE_FETCH_FAILED"
	CodeResultNotFound     Code = "RESULT_NOT_FOUND"
	CodeParseFailed        Code = "PARSE_FAILED"
	CodeMarkMissing        Code = "MARK_MISSING"
	CodeTokenFailed        Code = "TOKEN_FAILED"
	CodeResultInsertFailed Code = "RESULT_INSERT_FAILED"
	CodeDBError            Code = "DB_ERROR"
	CodeUnauthorized       Code = "UNAUTHORIZED"
)

// HTTPStatus maps a code to its transport status: 401 unauthorized, 403
// unverified, 500 infrastructure, 400 everything validation shaped.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeProfileNotVerified:
		return http.StatusForbidden
	case CodeTokenFailed, CodeDBError:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// Error is a pipeline failure carrying its code and the innermost cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

// Error implements error.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap exposes the innermost cause so the orchestrator never masks it.
func (e *Error) Unwrap() error {
	return e.cause
}

func failed(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}
