package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

type createCourseRequest struct {
	Title           string     `json:"title" binding:"required"`
	Code            string     `json:"code" binding:"required"`
	OwningTeacherID *uuid.UUID `json:"owning_teacher_id"`
}

func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	course, err := h.courseService.CreateCourse(c.Request.Context(), nil, req.Title, req.Code, req.OwningTeacherID)
	if err != nil {
		h.log.Error("CreateCourse failed", "error", err)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) GetCourse(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	course, err := h.courseService.GetCourse(c.Request.Context(), nil, courseID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"course": course})
}

func (h *CourseHandler) GetSection(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	section, err := h.courseService.GetSection(c.Request.Context(), nil, sectionID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"section": section})
}

type createSectionRequest struct {
	Label    string `json:"label" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,gt=0"`
}

func (h *CourseHandler) CreateSection(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req createSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	section, err := h.courseService.CreateSection(c.Request.Context(), nil, courseID, req.Label, req.Capacity)
	if err != nil {
		h.log.Error("CreateSection failed", "error", err, "course_id", courseID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"section": section})
}

type assignTeacherRequest struct {
	TeacherID uuid.UUID `json:"teacher_id" binding:"required"`
}

func (h *CourseHandler) AssignCourseTeacher(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req assignTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.courseService.AssignCourseTeacher(c.Request.Context(), nil, courseID, req.TeacherID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"assigned": true})
}

func (h *CourseHandler) DelegateSectionTeacher(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	var req assignTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if err := h.courseService.DelegateSectionTeacher(c.Request.Context(), nil, sectionID, req.TeacherID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"delegated": true})
}

func (h *CourseHandler) ListCourseSections(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("courseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	sections, err := h.courseService.ListCourseSections(c.Request.Context(), nil, courseID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"sections": sections})
}

func (h *CourseHandler) ListOwnSections(c *gin.Context) {
	sections, err := h.courseService.ListOwnSections(c.Request.Context(), nil)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"sections": sections})
}
