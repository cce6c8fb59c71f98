package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrsuite/travel-approval/internal/application/port"
	"github.com/hrsuite/travel-approval/internal/domain/workflow"
)

// Reason codes surfaced to the UI collaborators.
const (
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeForbidden         = "FORBIDDEN"
	CodeVersionConflict   = "VERSION_CONFLICT"
	CodeNotFound          = "NOT_FOUND"
	CodeInvalidRequest    = "INVALID_REQUEST"
	CodeStorageFailure    = "STORAGE_FAILURE"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps the engine/store error taxonomy onto HTTP statuses and
// reason codes. Unknown errors are storage failures: surfaced, never
// swallowed.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, errorResponse{Code: CodeInvalidTransition, Message: err.Error()})
	case errors.Is(err, workflow.ErrForbidden):
		c.JSON(http.StatusForbidden, errorResponse{Code: CodeForbidden, Message: err.Error()})
	case errors.Is(err, workflow.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, errorResponse{Code: CodeInvalidRequest, Message: err.Error()})
	case errors.Is(err, port.ErrVersionConflict):
		c.JSON(http.StatusConflict, errorResponse{
			Code:    CodeVersionConflict,
			Message: "this request changed, please reload",
		})
	case errors.Is(err, port.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Code: CodeNotFound, Message: "travel request not found"})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{
			Code:    CodeStorageFailure,
			Message: "storage unavailable, retry later",
		})
	}
}
