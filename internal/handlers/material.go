package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campushub/campushub-backend/internal/logger"
	"github.com/campushub/campushub-backend/internal/services"
)

type MaterialHandler struct {
	log             *logger.Logger
	materialService services.MaterialService
}

func NewMaterialHandler(log *logger.Logger, materialService services.MaterialService) *MaterialHandler {
	return &MaterialHandler{
		log:             log.With("handler", "MaterialHandler"),
		materialService: materialService,
	}
}

func (h *MaterialHandler) List(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	materials, err := h.materialService.List(c.Request.Context(), nil, sectionID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"materials": materials})
}

func (h *MaterialHandler) Get(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("materialID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	material, err := h.materialService.Get(c.Request.Context(), nil, materialID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"material": material})
}

func (h *MaterialHandler) Upload(c *gin.Context) {
	sectionID, err := uuid.Parse(c.Param("sectionID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	title := c.PostForm("title")
	if title == "" {
		RespondError(c, http.StatusBadRequest, "invalid_request", errMissingField("title"))
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

	material, err := h.materialService.Upload(c.Request.Context(), nil, sectionID, title, fileHeader.Filename, file)
	if err != nil {
		h.log.Error("Material upload failed", "error", err, "section_id", sectionID)
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"material": material})
}

func (h *MaterialHandler) Delete(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("materialID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	if err := h.materialService.Delete(c.Request.Context(), nil, materialID); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
