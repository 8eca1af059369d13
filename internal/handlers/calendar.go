package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/services"
)

type CalendarHandler struct {
	log             *logger.Logger
	calendarService services.CalendarService
}

func NewCalendarHandler(log *logger.Logger, calendarService services.CalendarService) *CalendarHandler {
	return &CalendarHandler{
		log:             log.With("handler", "CalendarHandler"),
		calendarService: calendarService,
	}
}

func (h *CalendarHandler) ListSections(c *gin.Context) {
	sections, err := h.calendarService.SectionsForUser(c.Request.Context(), nil)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"sections": sections})
}
