package postgres

import (
	"testing"

	"github.com/flexprice/docforge/internal/domain/history"
	"github.com/flexprice/docforge/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name   string
		filter history.Filter
		where  string
		args   []interface{}
	}{
		{name: "empty", filter: history.Filter{}, where: ""},
		{name: "user", filter: history.Filter{UserID: "u1"}, where: " WHERE user_id = ?", args: []interface{}{"u1"}},
		{
			name:   "user and type",
			filter: history.Filter{UserID: "u1", DocumentType: types.DocumentTypeReceipt},
			where:  " WHERE user_id = ? AND document_type = ?",
			args:   []interface{}{"u1", "receipt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := whereClause(&tt.filter)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}
