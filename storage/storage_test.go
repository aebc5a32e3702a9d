package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"capstone-tracker/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pdfBody = "%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

func upload(name, contentType, body string) Upload {
	return Upload{Filename: name, ContentType: contentType, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestValidatePDF(t *testing.T) {
	tests := []struct {
		name   string
		upload Upload
		max    int64
		field  string
	}{
		{"wrong extension", upload("thesis.docx", "application/pdf", pdfBody), MB, "file"},
		{"wrong content type", upload("thesis.pdf", "image/png", pdfBody), MB, "file"},
		{"too large", upload("thesis.pdf", "application/pdf", pdfBody), 8, "file"},
		{"not a pdf", upload("thesis.pdf", "application/pdf", "PK\x03\x04 zip archive pretending"), MB, "file"},
		{"missing body", Upload{Filename: "thesis.pdf"}, MB, "file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidatePDF(tt.upload, tt.max)

			var verr *models.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestValidatePDFKeepsBody(t *testing.T) {
	checked, err := ValidatePDF(upload("Thesis.PDF", "application/pdf; charset=binary", pdfBody), DefaultMaxUpload)
	require.NoError(t, err)

	body, err := io.ReadAll(checked.Body)
	require.NoError(t, err)
	assert.Equal(t, pdfBody, string(body))
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	ref, err := store.Save(ctx, upload("../../etc/Final Paper (v2).pdf", "application/pdf", pdfBody))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(ref, "_Final_Paper__v2_.pdf"), ref)
	assert.NotContains(t, ref, "/")

	data, err := os.ReadFile(filepath.Join(root, ref))
	require.NoError(t, err)
	assert.Equal(t, pdfBody, string(data))

	ok, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, ref))
	ok, err = store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting twice is not an error.
	require.NoError(t, store.Delete(ctx, ref))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{"../secret.pdf", "a/b.pdf", ".hidden", ""} {
		var serr *models.StorageError
		assert.ErrorAs(t, store.Delete(context.Background(), ref), &serr, ref)

		ok, err := store.Exists(context.Background(), ref)
		assert.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestObjectNameTruncates(t *testing.T) {
	name := objectName("id", strings.Repeat("x", 100)+".pdf")
	assert.Equal(t, "id_"+strings.Repeat("x", 60)+".pdf", name)
}
