package dto

import "github.com/flexprice/docforge/internal/domain/template"

type ListTemplatesResponse struct {
	Items []template.Template `json:"items"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
