package qdrant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"manhwarec/internal/domain"
)

// Storage is a minimal REST client to Qdrant holding the tag vectors.
// Points are keyed by catalog index and use cosine distance.
type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

// Config contains connection details for a Qdrant collection.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// NewStorage creates a Qdrant-backed store. Nothing is contacted until Init.
func NewStorage(cfg Config) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "manhwa_tags"
	}
	return &Storage{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection. An existing collection is reused.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	status, err := s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil)
	if err != nil && status != http.StatusConflict {
		return err
	}
	return nil
}

// Upsert writes one point per catalog index.
func (s *Storage) Upsert(ctx context.Context, ids []int, vectors [][]float64) error {
	if len(ids) != len(vectors) {
		return errors.New("ids and vectors length mismatch")
	}
	points := make([]map[string]any, len(ids))
	for i := range ids {
		if s.dimension > 0 && len(vectors[i]) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
		points[i] = map[string]any{
			"id":      ids[i],
			"vector":  vectors[i],
			"payload": map[string]any{"index": ids[i]},
		}
	}
	_, err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), map[string]any{"points": points}, nil)
	return err
}

// Search returns the topK points nearest to vector.
func (s *Storage) Search(ctx context.Context, vector []float64, topK int) ([]domain.SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      json.Number    `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}
	results := make([]domain.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		idx := -1
		if v, ok := r.Payload["index"].(float64); ok {
			idx = int(v)
		} else if id, err := r.ID.Int64(); err == nil {
			idx = int(id)
		}
		if idx < 0 {
			return nil, fmt.Errorf("qdrant returned point %q without a catalog index", r.ID)
		}
		results = append(results, domain.SearchResult{Index: idx, Score: r.Score})
	}
	return results, nil
}

// Clear drops the collection. A missing collection is not an error.
func (s *Storage) Clear(ctx context.Context) error {
	status, err := s.do(ctx, http.MethodDelete, s.collectionURL(""), nil, nil)
	if err != nil && status != http.StatusNotFound {
		return err
	}
	return nil
}

func (s *Storage) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Storage) do(ctx context.Context, method, url string, body, out any) (int, error) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode, nil
}
