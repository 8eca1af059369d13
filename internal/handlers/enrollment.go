package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/services"
)

type EnrollmentHandler struct {
	log               *logger.Logger
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(log *logger.Logger, enrollmentService services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{
		log:               log.With("handler", "EnrollmentHandler"),
		enrollmentService: enrollmentService,
	}
}

type enrollRequest struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
}

func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), nil, req.StudentID, sectionID)
	if err != nil {
		h.log.Error("Enroll failed", "error", err, "section_id", sectionID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"enrollment": enrollment})
}

func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	studentID, err := uuid.Parse(c.Param("studentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	if err := h.enrollmentService.Unenroll(c.Request.Context(), nil, studentID, sectionID); err != nil {
		h.log.Error("Unenroll failed", "error", err, "section_id", sectionID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"unenrolled": true})
}
