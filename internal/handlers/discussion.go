package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/services"
)

const defaultChatHistoryLimit = 100

type DiscussionHandler struct {
	log               *logger.Logger
	discussionService services.DiscussionService
}

func NewDiscussionHandler(log *logger.Logger, discussionService services.DiscussionService) *DiscussionHandler {
	return &DiscussionHandler{
		log:               log.With("handler", "DiscussionHandler"),
		discussionService: discussionService,
	}
}

func (h *DiscussionHandler) OpenRoom(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	room, err := h.discussionService.OpenRoom(c.Request.Context(), nil, sectionID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"room": room})
}

type postMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

func (h *DiscussionHandler) PostMessage(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	msg, err := h.discussionService.PostMessage(c.Request.Context(), nil, sectionID, req.Body)
	if err != nil {
		h.log.Error("Post message failed", "error", err, "section_id", sectionID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"message": msg})
}

func (h *DiscussionHandler) ListMessages(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	limit := int64(defaultChatHistoryLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		limit = parsed
	}

	msgs, err := h.discussionService.ListMessages(c.Request.Context(), nil, sectionID, limit)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"messages": msgs})
}
