package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"notifyadmin/internal/domain"
)

var ErrUnsupportedFiletype = errors.New("unsupported preview filetype")

// Rendered is an on-screen preview of a message with placeholder values
// substituted.
type Rendered struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// Renderer produces message previews. HTML previews are pure substitution;
// letter PDFs and images come from the template preview service.
type Renderer struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewRenderer(baseURL, apiKey string, httpClient *http.Client) *Renderer {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Renderer{BaseURL: baseURL, APIKey: apiKey, HTTP: httpClient}
}

// HTML renders the template with values substituted, for the check and
// confirmation pages.
func (r *Renderer) HTML(t domain.Template, values map[string]string) Rendered {
	out := Rendered{Body: t.Render(values)}
	if t.Type == domain.TypeEmail {
		out.Subject = t.RenderSubject(values)
	}
	return out
}

type previewRequest struct {
	Template domain.Template   `json:"template"`
	Values   map[string]string `json:"values"`
}

// Letter fetches a rendered letter from the preview service. filetype is
// "pdf" or "png".
func (r *Renderer) Letter(ctx context.Context, t domain.Template, values map[string]string, filetype string) ([]byte, string, error) {
	if filetype != "pdf" && filetype != "png" {
		return nil, "", ErrUnsupportedFiletype
	}
	body, err := r.post(ctx, "/preview."+filetype, previewRequest{Template: t, Values: values})
	if err != nil {
		return nil, "", err
	}
	contentType := "application/pdf"
	if filetype == "png" {
		contentType = "image/png"
	}
	return body, contentType, nil
}

// PageCount asks the preview service how many pages the letter runs to.
// Callers cache the result in the session; a non-positive cached value means
// unknown and forces a recompute.
func (r *Renderer) PageCount(ctx context.Context, t domain.Template, values map[string]string) (int, error) {
	body, err := r.post(ctx, "/preview.json", previewRequest{Template: t, Values: values})
	if err != nil {
		return 0, err
	}
	var out struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (r *Renderer) post(ctx context.Context, path string, payload previewRequest) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.APIKey)

	resp, err := r.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("template preview returned %d", resp.StatusCode)
	}
	return body, nil
}
