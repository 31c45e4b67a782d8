package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	automergedomain "github.com/tributaryhq/tributary/internal/automerge/domain"
	companydomain "github.com/tributaryhq/tributary/internal/company/domain"
	contactdomain "github.com/tributaryhq/tributary/internal/contact/domain"
	dedupedomain "github.com/tributaryhq/tributary/internal/dedupe/domain"
	identitydomain "github.com/tributaryhq/tributary/internal/identity/domain"
	organizationdomain "github.com/tributaryhq/tributary/internal/organization/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware renders the last handler error as a JSON
// payload when the handler did not write a response itself.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case isNotFound(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "resource not found",
		}
	case isInvalidRequest(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, dedupedomain.ErrPrimaryInDuplicates),
		errors.Is(err, dedupedomain.ErrNoDuplicates):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "merge_rejected",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, contactdomain.ErrNotFound) ||
		errors.Is(err, companydomain.ErrNotFound) ||
		errors.Is(err, identitydomain.ErrNotFound) ||
		errors.Is(err, organizationdomain.ErrNotFound) ||
		errors.Is(err, dedupedomain.ErrPrimaryNotFound)
}

func isInvalidRequest(err error) bool {
	return errors.Is(err, contactdomain.ErrInvalidID) ||
		errors.Is(err, contactdomain.ErrInvalidOrganization) ||
		errors.Is(err, contactdomain.ErrInsufficientSignal) ||
		errors.Is(err, identitydomain.ErrInvalidOrganization) ||
		errors.Is(err, dedupedomain.ErrInvalidOrganization) ||
		errors.Is(err, automergedomain.ErrInvalidOrganization)
}
