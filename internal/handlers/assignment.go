package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/services"
)

type AssignmentHandler struct {
	log               *logger.Logger
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(log *logger.Logger, assignmentService services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		log:               log.With("handler", "AssignmentHandler"),
		assignmentService: assignmentService,
	}
}

func errMissingField(name string) error {
	return fmt.Errorf("missing required field %q", name)
}

func (h *AssignmentHandler) List(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	assignments, err := h.assignmentService.List(c.Request.Context(), nil, sectionID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"assignments": assignments})
}

func (h *AssignmentHandler) Get(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignmentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	assignment, err := h.assignmentService.Get(c.Request.Context(), nil, assignmentID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"assignment": assignment})
}

type createAssignmentRequest struct {
	Title        string    `json:"title" binding:"required"`
	Instructions string    `json:"instructions"`
	DueAt        time.Time `json:"due_at" binding:"required"`
}

func (h *AssignmentHandler) Create(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), nil, sectionID, req.Title, req.Instructions, req.DueAt)
	if err != nil {
		h.log.Error("Create assignment failed", "error", err, "section_id", sectionID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"assignment": assignment})
}

func (h *AssignmentHandler) Delete(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("assignmentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), nil, assignmentID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
