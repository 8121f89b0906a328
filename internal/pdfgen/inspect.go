package pdfgen

import (
	"bytes"

	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCount reads the number of pages of a PDF
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Generated file is not a readable PDF").
			Mark(ierr.ErrRender)
	}
	return n, nil
}
