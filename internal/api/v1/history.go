package v1

import (
	"fmt"
	"net/http"

	"github.com/flexprice/docforge/internal/api/dto"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/pdfgen"
	"github.com/flexprice/docforge/internal/service"
	"github.com/gin-gonic/gin"
)

type HistoryHandler struct {
	service service.HistoryService
	logger  *logger.Logger
}

func NewHistoryHandler(service service.HistoryService, logger *logger.Logger) *HistoryHandler {
	return &HistoryHandler{service: service, logger: logger}
}

// ListHistory godoc
// @Summary List the caller's exports
// @Tags History
// @Produce json
// @Param filter query dto.ListHistoryRequest false "Filter"
// @Success 200 {object} dto.ListHistoryResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Router /history [get]
func (h *HistoryHandler) ListHistory(c *gin.Context) {
	var req dto.ListHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ListHistory(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetHistory godoc
// @Summary Get one export
// @Tags History
// @Produce json
// @Param id path string true "History ID"
// @Success 200 {object} dto.HistoryResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /history/{id} [get]
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	resp, err := h.service.GetHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DownloadArchive godoc
// @Summary Download the archived PDF of one export
// @Tags History
// @Produce application/pdf
// @Param id path string true "History ID"
// @Success 200 {file} binary
// @Failure 404 {object} ierr.ErrorResponse
// @Router /history/{id}/pdf [get]
func (h *HistoryHandler) DownloadArchive(c *gin.Context) {
	file, err := h.service.DownloadArchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, pdfgen.MIMEType, file.Data)
}

// DeleteHistory godoc
// @Summary Delete one export
// @Tags History
// @Produce json
// @Param id path string true "History ID"
// @Success 200 {object} dto.SuccessResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /history/{id} [delete]
func (h *HistoryHandler) DeleteHistory(c *gin.Context) {
	if err := h.service.DeleteHistory(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "history record deleted"})
}
