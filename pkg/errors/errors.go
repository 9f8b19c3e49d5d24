// Package errors carries the unified application error shape and the gin
// boundary responder.
package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/callwise/flow-version-service/internal/middleware"
	"github.com/callwise/flow-version-service/pkg/code"

	"github.com/gin-gonic/gin"
)

// AppError is the serialized error body: catalog code, message, details,
// trace ID and timestamp.
type AppError struct {
	Code      int       `json:"code"`
	Status    bool      `json:"status"`
	Message   string    `json:"message"`
	Details   []string  `json:"details,omitempty"`
	TraceID   string    `json:"traceId,omitempty"`
	Cause     error     `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError wraps a catalog code into an AppError.
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:      c.Code(),
		Message:   c.Msg(),
		Details:   c.Details(),
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// ErrorResponse converts any engine error into the uniform envelope with the
// catalog's HTTP status. Unknown errors become 500s without leaking internals.
func ErrorResponse(c *gin.Context, err error) {
	traceID := middleware.GetTraceIDFromGin(c)

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		c.JSON(codeErr.StatusCode(), &AppError{
			Code:      codeErr.Code(),
			Message:   codeErr.Msg(),
			Details:   codeErr.Details(),
			TraceID:   traceID,
			Timestamp: time.Now(),
		})
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		appErr.TraceID = traceID
		c.JSON(http.StatusInternalServerError, appErr)
		return
	}

	c.JSON(http.StatusInternalServerError, &AppError{
		Code:      code.ErrorServerInternal.Code(),
		Message:   code.ErrorServerInternal.Msg(),
		TraceID:   traceID,
		Timestamp: time.Now(),
	})
}
