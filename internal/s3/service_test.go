package s3

import (
	"testing"

	ierr "github.com/flexprice/docforge/internal/errors"
	"github.com/flexprice/docforge/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key, err := ObjectKey("exports", NewArchive("hist_1", "team/alice", types.DocumentTypeInvoice, "INV-1.pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, "exports/team_alice/invoice/hist_1.pdf", key)

	key, err = ObjectKey("", NewArchive("hist_2", "bob", types.DocumentTypeReceipt, "", nil))
	require.NoError(t, err)
	assert.Equal(t, "bob/receipt/hist_2.pdf", key)

	_, err = ObjectKey("exports", NewArchive("", "bob", types.DocumentTypeReceipt, "", nil))
	assert.True(t, ierr.IsValidation(err))

	_, err = ObjectKey("exports", NewArchive("h", "bob", "memo", "", nil))
	assert.True(t, ierr.IsValidation(err))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")))
	assert.Equal(t, "application/octet-stream", ContentType([]byte("hello")))
	assert.Equal(t, "image/png", ContentType([]byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}))
}
