package service

import (
	"context"

	"github.com/flexprice/docforge/internal/api/dto"
	"github.com/flexprice/docforge/internal/domain/template"
	ierr "github.com/flexprice/docforge/internal/errors"
)

type TemplateService interface {
	// ListTemplates filters by premium flag when premium is set
	ListTemplates(ctx context.Context, premium *bool) *dto.ListTemplatesResponse
	GetTemplate(ctx context.Context, id string) (*template.Template, error)
}

type templateService struct {
	ServiceParams
}

func NewTemplateService(params ServiceParams) TemplateService {
	if params.Templates == nil {
		params.Templates = template.NewRegistry()
	}
	return &templateService{ServiceParams: params}
}

func (s *templateService) ListTemplates(_ context.Context, premium *bool) *dto.ListTemplatesResponse {
	var items []template.Template
	switch {
	case premium == nil:
		items = s.Templates.List()
	case *premium:
		items = s.Templates.ListPremium()
	default:
		items = s.Templates.ListFree()
	}
	return &dto.ListTemplatesResponse{Items: items}
}

// GetTemplate does not fall back to the default, unknown ids are not found
func (s *templateService) GetTemplate(_ context.Context, id string) (*template.Template, error) {
	if !s.Templates.Has(id) {
		return nil, ierr.NewErrorf("template %s not found", id).
			WithHint("Template not found").
			Mark(ierr.ErrNotFound)
	}
	t := s.Templates.Get(id)
	return &t, nil
}
