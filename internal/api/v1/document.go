package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/flexprice/docforge/internal/api/dto"
	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/logger"
	"github.com/flexprice/docforge/internal/pdfgen"
	"github.com/flexprice/docforge/internal/service"
	"github.com/flexprice/docforge/internal/types"
	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	service service.DocumentService
	logger  *logger.Logger
}

func NewDocumentHandler(service service.DocumentService, logger *logger.Logger) *DocumentHandler {
	return &DocumentHandler{service: service, logger: logger}
}

func bindPayload(c *gin.Context) (*dto.DocumentPayload, bool) {
	var req dto.DocumentPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return nil, false
	}
	return &req, true
}

// ValidateDocument godoc
// @Summary Validate a document
// @Description Runs the required field rules for the document type
// @Tags Documents
// @Accept json
// @Produce json
// @Param document body dto.DocumentPayload true "Document"
// @Success 200 {object} dto.ValidateResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Router /documents/validate [post]
func (h *DocumentHandler) ValidateDocument(c *gin.Context) {
	req, ok := bindPayload(c)
	if !ok {
		return
	}

	if errs := h.service.Validate(c.Request.Context(), req.ToDocument()); len(errs) > 0 {
		c.Error(errs.Err())
		return
	}
	c.JSON(http.StatusOK, dto.ValidateResponse{Valid: true})
}

// CalculateTotals godoc
// @Summary Calculate document totals
// @Description Runs the calculator without the validation gate
// @Tags Documents
// @Accept json
// @Produce json
// @Param document body dto.DocumentPayload true "Document"
// @Success 200 {object} dto.TotalsResponse
// @Router /documents/totals [post]
func (h *DocumentHandler) CalculateTotals(c *gin.Context) {
	req, ok := bindPayload(c)
	if !ok {
		return
	}

	doc := req.ToDocument()
	totals := h.service.Totals(c.Request.Context(), doc)
	c.JSON(http.StatusOK, dto.NewTotalsResponse(totals, doc.CurrencyCode()))
}

// RenderPDF godoc
// @Summary Render a document as PDF
// @Tags Documents
// @Accept json
// @Produce application/pdf
// @Param renderer query string false "programmatic or capture"
// @Param document body dto.DocumentPayload true "Document"
// @Success 200 {file} file
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 422 {object} ierr.ErrorResponse
// @Failure 429 {object} ierr.ErrorResponse
// @Router /documents/pdf [post]
func (h *DocumentHandler) RenderPDF(c *gin.Context) {
	req, ok := bindPayload(c)
	if !ok {
		return
	}

	resp, err := h.service.Render(c.Request.Context(), &service.RenderRequest{
		Document: req.ToDocument(),
		Renderer: types.RendererKind(c.Query("renderer")),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resp.Filename))
	c.Header(types.HeaderPageCount, strconv.Itoa(resp.Pages))
	if resp.HistoryID != "" {
		c.Header(types.HeaderHistoryID, resp.HistoryID)
	}
	c.Data(http.StatusOK, pdfgen.MIMEType, resp.Data)
}
