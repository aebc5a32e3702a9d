// Package storage holds the file stores behind uploaded documents.
package storage

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"

	"capstone-tracker/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

const (
	MB                = 1 << 20
	DefaultMaxUpload  = 10 * MB
	CapstoneMaxUpload = 50 * MB

	pdfMIME   = "application/pdf"
	sniffSize = 3072
)

// Upload is a file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// FileStore saves and removes stored documents. Refs are opaque to callers.
type FileStore interface {
	Save(ctx context.Context, upload Upload) (string, error)
	Delete(ctx context.Context, ref string) error
	Exists(ctx context.Context, ref string) (bool, error)
}

// ValidatePDF rejects anything that is not a PDF by extension, declared
// content type or content. The returned upload reads the whole body again.
func ValidatePDF(upload Upload, maxSize int64) (Upload, error) {
	if !strings.EqualFold(filepath.Ext(upload.Filename), ".pdf") {
		return upload, models.NewValidationError("only PDF files are allowed", map[string]string{"file": "extension must be .pdf"})
	}
	if ct := strings.TrimSpace(strings.Split(upload.ContentType, ";")[0]); ct != "" && ct != pdfMIME {
		return upload, models.NewValidationError("only PDF files are allowed", map[string]string{"file": "content type must be " + pdfMIME})
	}
	if maxSize > 0 && upload.Size > maxSize {
		return upload, models.NewValidationError("file is too large", map[string]string{"file": "exceeds the upload limit"})
	}
	if upload.Body == nil {
		return upload, models.NewValidationError("file is required", map[string]string{"file": "required"})
	}

	head := make([]byte, sniffSize)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return upload, models.NewStorageError("read", errors.Wrap(err, "read upload header"))
	}
	head = head[:n]
	if !mimetype.Detect(head).Is(pdfMIME) {
		return upload, models.NewValidationError("only PDF files are allowed", map[string]string{"file": "content is not a PDF document"})
	}

	upload.Body = io.MultiReader(bytes.NewReader(head), upload.Body)
	return upload, nil
}

// objectName builds a collision free name that keeps a sanitized hint of the original.
func objectName(id, filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		}
		return '_'
	}, base)
	if len(clean) > 60 {
		clean = clean[:60]
	}
	return id + "_" + clean + ".pdf"
}
