package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/services"
)

type SubmissionHandler struct {
	log               *logger.Logger
	submissionService services.SubmissionService
}

func NewSubmissionHandler(log *logger.Logger, submissionService services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{
		log:               log.With("handler", "SubmissionHandler"),
		submissionService: submissionService,
	}
}

func (h *SubmissionHandler) Submit(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignmentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	defer file.Close()

	submission, err := h.submissionService.Submit(c.Request.Context(), nil, assignmentID, fileHeader.Filename, file)
	if err != nil {
		h.log.Error("Submit failed", "error", err, "assignment_id", assignmentID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"submission": submission})
}

type gradeRequest struct {
	Grade    *float64 `json:"grade" binding:"required"`
	Feedback *string  `json:"feedback"`
}

func (h *SubmissionHandler) Grade(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("submissionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	submission, err := h.submissionService.Grade(c.Request.Context(), nil, submissionID, *req.Grade, req.Feedback)
	if err != nil {
		h.log.Error("Grade failed", "error", err, "submission_id", submissionID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"submission": submission})
}

func (h *SubmissionHandler) Get(c *gin.Context) {
	submissionID, err := uuid.Parse(c.Param("submissionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	submission, err := h.submissionService.Get(c.Request.Context(), nil, submissionID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"submission": submission})
}

func (h *SubmissionHandler) GetMine(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignmentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	submission, err := h.submissionService.GetMine(c.Request.Context(), nil, assignmentID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"submission": submission})
}

func (h *SubmissionHandler) ListForAssignment(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignmentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	submissions, err := h.submissionService.ListForAssignment(c.Request.Context(), nil, assignmentID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"submissions": submissions})
}
