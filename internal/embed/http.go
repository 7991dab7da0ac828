package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPEmbedder calls an external embedding service over HTTP.
type HTTPEmbedder struct {
	BaseURL   string
	Dimension int
	Client    *http.Client
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

func (h HTTPEmbedder) Dim() int {
	return h.Dimension
}

func (h HTTPEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if h.Client == nil {
		h.Client = &http.Client{Timeout: 30 * time.Second}
	}

	b, _ := json.Marshal(embedRequest{Texts: texts})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+"/embed", bytes.NewBuffer(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service returned status %d", resp.StatusCode)
	}

	var body embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding service returned %d vectors for %d texts", len(body.Embeddings), len(texts))
	}
	for i, v := range body.Embeddings {
		if len(v) != h.Dimension {
			return nil, fmt.Errorf("embedding %d has dimension %d, expected %d", i, len(v), h.Dimension)
		}
	}
	return body.Embeddings, nil
}
