package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondDomainError maps the service error taxonomy onto HTTP. Authorization
// failures stay generic on purpose; capacity and double-enrollment keep their
// specific admin-facing messages.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrNotAuthorized):
		RespondError(c, http.StatusForbidden, "not_authorized", pkgerrors.ErrNotAuthorized)
	case errors.Is(err, pkgerrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", pkgerrors.ErrNotFound)
	case errors.Is(err, pkgerrors.ErrAlreadyEnrolled):
		RespondError(c, http.StatusConflict, "already_enrolled", err)
	case errors.Is(err, pkgerrors.ErrCapacityExceeded):
		RespondError(c, http.StatusConflict, "capacity_exceeded", err)
	case errors.Is(err, pkgerrors.ErrAlreadyGraded):
		RespondError(c, http.StatusConflict, "already_graded", err)
	case errors.Is(err, pkgerrors.ErrStoreUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "store_unavailable", pkgerrors.ErrStoreUnavailable)
	case errors.Is(err, pkgerrors.ErrInvariantViolation):
		RespondError(c, http.StatusInternalServerError, "data_invariant_violated", pkgerrors.ErrInvariantViolation)
	default:
		RespondError(c, http.StatusInternalServerError, "internal_error", nil)
	}
}
