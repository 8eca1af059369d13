package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/campushub/campushub-backend/internal/pkg/errors"
)

func TestRespondDomainErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not authorized", pkgerrors.ErrNotAuthorized, http.StatusForbidden},
		{"not found", pkgerrors.ErrNotFound, http.StatusNotFound},
		{"already enrolled", pkgerrors.ErrAlreadyEnrolled, http.StatusConflict},
		{"capacity exceeded", pkgerrors.ErrCapacityExceeded, http.StatusConflict},
		{"already graded", pkgerrors.ErrAlreadyGraded, http.StatusConflict},
		{"store unavailable", pkgerrors.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{"invariant violation", pkgerrors.ErrInvariantViolation, http.StatusInternalServerError},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("enroll: %w", pkgerrors.ErrCapacityExceeded), http.StatusConflict},
		{"store-wrapped infra error", pkgerrors.Store(fmt.Errorf("dial tcp: refused")), http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondDomainError(c, tc.err)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestRespondDomainErrorHidesInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	RespondDomainError(c, pkgerrors.Store(fmt.Errorf("password=hunter2 dial failed")))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
	if body := rec.Body.String(); strings.Contains(body, "hunter2") || strings.Contains(body, "dial failed") {
		t.Fatalf("infra detail leaked in body: %s", body)
	}
}
