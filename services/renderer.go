package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"capstone-tracker/models"

	"github.com/pkg/errors"
)

// ErrRendererUnavailable is returned when no rendering service is configured.
var ErrRendererUnavailable = errors.New("document renderer is not configured")

// DocumentRenderer turns flat field maps into documents.
type DocumentRenderer interface {
	RenderProjectLetter(ctx context.Context, fields map[string]string) ([]byte, error)
	RenderResearchDocumentation(ctx context.Context, fields map[string]string, format models.DraftFormat) ([]byte, error)
}

// HTTPRenderer posts the fields as JSON to an external rendering service:
// POST {base}/project-letter and POST {base}/research-documentation?format=pdf|docx.
type HTTPRenderer struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRenderer(baseURL string) *HTTPRenderer {
	return &HTTPRenderer{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *HTTPRenderer) RenderProjectLetter(ctx context.Context, fields map[string]string) ([]byte, error) {
	return r.post(ctx, "/project-letter", fields)
}

func (r *HTTPRenderer) RenderResearchDocumentation(ctx context.Context, fields map[string]string, format models.DraftFormat) ([]byte, error) {
	return r.post(ctx, "/research-documentation?format="+string(format), fields)
}

func (r *HTTPRenderer) post(ctx context.Context, path string, fields map[string]string) ([]byte, error) {
	if r.baseURL == "" {
		return nil, ErrRendererUnavailable
	}

	payload, err := json.Marshal(map[string]interface{}{"fields": fields})
	if err != nil {
		return nil, errors.Wrap(err, "encode render request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build render request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "call renderer")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read rendered document")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("renderer returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
