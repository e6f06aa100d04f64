package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError represents a structured error response
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	RetryAfter int    `json:"retry_after_ms,omitempty"`
}

// Common error codes
const (
	ErrCodeBadRequest    = "BAD_REQUEST"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeInternalError = "INTERNAL_ERROR"
	ErrCodeRateLimited   = "RATE_LIMITED"
)

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// RespondError aborts the request with a structured error body. The
// message is also recorded on the context so the access log carries it.
func RespondError(c *gin.Context, status int, code string, message string) {
	respond(c, status, APIError{Code: code, Message: message})
}

// RespondErrorWithDetails is RespondError with a details string
func RespondErrorWithDetails(c *gin.Context, status int, code string, message string, details string) {
	respond(c, status, APIError{Code: code, Message: message, Details: details})
}

// RespondErrorWithRetry is RespondError with a retry hint in milliseconds
func RespondErrorWithRetry(c *gin.Context, status int, code string, message string, retryAfterMs int) {
	respond(c, status, APIError{Code: code, Message: message, RetryAfter: retryAfterMs})
}

func respond(c *gin.Context, status int, apiErr APIError) {
	_ = c.Error(errors.New(apiErr.Code + ": " + apiErr.Message)).SetType(gin.ErrorTypePublic)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: apiErr})
}

// BadRequest sends a 400 error
func BadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// BadRequestWithDetails sends a 400 error carrying the binding failure
func BadRequestWithDetails(c *gin.Context, message string, err error) {
	RespondErrorWithDetails(c, http.StatusBadRequest, ErrCodeBadRequest, message, err.Error())
}

// Unauthorized sends a 401 error
func Unauthorized(c *gin.Context, message string) {
	RespondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// NotFound sends a 404 error
func NotFound(c *gin.Context, message string) {
	RespondError(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// Conflict sends a 409 error
func Conflict(c *gin.Context, message string) {
	RespondError(c, http.StatusConflict, ErrCodeConflict, message)
}

// InternalError sends a 500 error
func InternalError(c *gin.Context, message string) {
	RespondError(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}
