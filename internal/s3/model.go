package s3

import (
	"github.com/flexprice/docforge/internal/types"
)

// Archive is an exported PDF kept for later download
type Archive struct {
	// ID is the history record id the archive belongs to
	ID     string
	UserID string
	Type   types.DocumentType
	Name   string
	Data   []byte
}

func NewArchive(id, userID string, docType types.DocumentType, name string, data []byte) *Archive {
	return &Archive{ID: id, UserID: userID, Type: docType, Name: name, Data: data}
}
