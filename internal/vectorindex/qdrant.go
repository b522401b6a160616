package vectorindex

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

// pointNamespace derives stable Qdrant point ids from product ids.
var pointNamespace = uuid.MustParse("6f1c3a52-8d0e-4b7a-9c55-2f0f5d8e7a10")

func PointID(productID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(productID)).String()
}

// QdrantClient is a minimal Qdrant HTTP client.
type QdrantClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewQdrantClient(baseURL, apiKey string) *QdrantClient {
	return &QdrantClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Ping checks that the server answers.
func (c *QdrantClient) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/collections", nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("qdrant ping status %d", resp.StatusCode)
	}
	return nil
}

// EnsureCollection creates a cosine collection if it does not exist.
func (c *QdrantClient) EnsureCollection(ctx context.Context, name string, vectorSize int) error {
	resp, err := c.do(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	payload := map[string]any{
		"vectors": map[string]any{"size": vectorSize, "distance": "Cosine"},
	}
	resp, err = c.do(ctx, http.MethodPut, "/collections/"+name, payload)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant create collection status %d", resp.StatusCode)
	}
	return nil
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// UpsertProducts writes one point per product, keyed by PointID.
func (c *QdrantClient) UpsertProducts(ctx context.Context, collection string, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch")
	}
	points := make([]qdrantPoint, len(ids))
	for i := range ids {
		points[i] = qdrantPoint{
			ID:      PointID(ids[i]),
			Vector:  vectors[i],
			Payload: map[string]any{"product_id": ids[i]},
		}
	}
	resp, err := c.do(ctx, http.MethodPut, "/collections/"+collection+"/points?wait=true", map[string]any{"points": points})
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant upsert status %d", resp.StatusCode)
	}
	return nil
}

type qdrantSearchResult struct {
	Result []struct {
		Score   float64 `json:"score"`
		Payload struct {
			ProductID string `json:"product_id"`
		} `json:"payload"`
	} `json:"result"`
}

func (c *QdrantClient) Search(ctx context.Context, collection string, vector []float32, limit int) ([]Hit, error) {
	body := map[string]any{"vector": vector, "limit": limit, "with_payload": true}
	resp, err := c.do(ctx, http.MethodPost, "/collections/"+collection+"/points/search", body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("qdrant search status %d: %w", resp.StatusCode, domain.ErrIndexUnavailable)
	}
	var out qdrantSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode qdrant search: %w", err)
	}
	hits := make([]Hit, 0, len(out.Result))
	for _, r := range out.Result {
		if r.Payload.ProductID == "" {
			continue
		}
		hits = append(hits, Hit{ID: r.Payload.ProductID, Similarity: clampSimilarity(r.Score)})
	}
	return hits, nil
}

func (c *QdrantClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal qdrant request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create qdrant request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("qdrant %s %s: %w", method, path, err)
	}
	return resp, nil
}

// Qdrant serves searches from a remote collection.
type Qdrant struct {
	client     *QdrantClient
	collection string
	size       int
}

func (q *Qdrant) Len() int     { return q.size }
func (q *Qdrant) Kind() string { return KindQdrant }

func (q *Qdrant) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	return q.client.Search(ctx, q.collection, query, k)
}
