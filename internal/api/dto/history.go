package dto

import (
	"time"

	"github.com/flexprice/docforge/internal/domain/history"
	"github.com/flexprice/docforge/internal/types"
	"github.com/samber/lo"
)

// ListHistoryRequest is bound from the query string
type ListHistoryRequest struct {
	DocumentType types.DocumentType `form:"document_type" validate:"omitempty,oneof=invoice receipt quotation proforma"`
	Limit        int                `form:"limit" validate:"omitempty,min=1,max=500"`
	Offset       int                `form:"offset" validate:"omitempty,min=0"`
}

type HistoryResponse struct {
	ID             string             `json:"id"`
	DocumentType   types.DocumentType `json:"document_type"`
	DocumentNumber string             `json:"document_number"`
	CustomerName   string             `json:"customer_name"`
	CustomerEmail  string             `json:"customer_email"`
	TotalAmount    float64            `json:"total_amount"`
	Currency       string             `json:"currency"`
	Renderer       string             `json:"renderer"`
	Archived       bool               `json:"archived"`
	DownloadURL    string             `json:"download_url,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

func NewHistoryResponse(r *history.Record) *HistoryResponse {
	return &HistoryResponse{
		ID:             r.ID,
		DocumentType:   r.DocumentType,
		DocumentNumber: r.DocumentNumber,
		CustomerName:   r.CustomerName,
		CustomerEmail:  r.CustomerEmail,
		TotalAmount:    r.TotalAmount,
		Currency:       r.Currency,
		Renderer:       r.Renderer,
		Archived:       r.ArchiveKey != "",
		CreatedAt:      r.CreatedAt,
	}
}

type ListHistoryResponse = types.ListResponse[*HistoryResponse]

func NewListHistoryResponse(records []*history.Record, total, limit, offset int) *ListHistoryResponse {
	items := lo.Map(records, func(r *history.Record, _ int) *HistoryResponse { return NewHistoryResponse(r) })
	resp := types.NewListResponse(items, total, limit, offset)
	return &resp
}
