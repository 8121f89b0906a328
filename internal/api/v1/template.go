package v1

import (
	"net/http"
	"strconv"

	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/service"
	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	service service.TemplateService
	logger  *logger.Logger
}

func NewTemplateHandler(service service.TemplateService, logger *logger.Logger) *TemplateHandler {
	return &TemplateHandler{service: service, logger: logger}
}

// ListTemplates godoc
// @Summary List templates
// @Tags Templates
// @Produce json
// @Param premium query bool false "Filter by premium flag"
// @Success 200 {object} dto.ListTemplatesResponse
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	var premium *bool
	if raw := c.Query("premium"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.Error(ierr.WithError(err).
				WithHint("premium must be true or false").
				Mark(ierr.ErrValidation))
			return
		}
		premium = &v
	}
	c.JSON(http.StatusOK, h.service.ListTemplates(c.Request.Context(), premium))
}

// GetTemplate godoc
// @Summary Get a template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} template.Template
// @Failure 404 {object} ierr.ErrorResponse
// @Router /templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tpl, err := h.service.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, tpl)
}
