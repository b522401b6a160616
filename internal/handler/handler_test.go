package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/service"
)

type fakeService struct {
	lastReq   domain.RecommendationRequest
	lastBatch []domain.RecommendationRequest
	lastQuery service.ProductQuery
	cacheHit  bool
	err       error
	healthy   bool
}

func (f *fakeService) Recommend(_ context.Context, req domain.RecommendationRequest) (*domain.RecommendationResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	resp := &domain.RecommendationResponse{
		Recommendations: []domain.Recommendation{{ID: "p1", Name: "Serum", Tags: []string{}}},
		Count:           1,
		Language:        "en",
		Metadata:        domain.NewMetadata("req-1"),
	}
	return &domain.RecommendationResult{Response: resp, CacheHit: f.cacheHit}, nil
}

func (f *fakeService) Batch(_ context.Context, reqs []domain.RecommendationRequest) *domain.BatchResponse {
	f.lastBatch = reqs
	results := make([]domain.BatchItemResult, len(reqs))
	for i := range reqs {
		results[i] = domain.BatchItemResult{Index: i, Status: domain.StatusSuccess}
	}
	return &domain.BatchResponse{Results: results, Summary: domain.BatchSummary{SuccessCount: len(reqs)}}
}

func (f *fakeService) UpdateSellerBoost(_ context.Context, id string, boost float64) (*domain.Product, error) {
	if id != "p1" {
		return nil, fmt.Errorf("update: %w", domain.ErrProductNotFound)
	}
	return &domain.Product{ID: id, SellerBoost: boost}, nil
}

func (f *fakeService) Products(q service.ProductQuery) service.ProductPage {
	f.lastQuery = q
	return service.ProductPage{Products: []*domain.Product{}, Page: q.Page, Limit: q.Limit}
}

func (f *fakeService) Product(id string) (*domain.Product, error) {
	if id != "p1" {
		return nil, domain.ErrProductNotFound
	}
	return &domain.Product{ID: "p1", Name: "Serum"}, nil
}

func (f *fakeService) Categories() map[string][]string {
	return map[string][]string{"hair_care": {"shampoo"}}
}

func (f *fakeService) Stats() domain.CatalogStats {
	return domain.CatalogStats{TotalProducts: 3, InStock: 2, Categories: map[string]int{"hair_care": 3}, IndexType: "flat"}
}

func (f *fakeService) Health(context.Context) (map[string]string, bool) {
	return map[string]string{"redis": "ok"}, f.healthy
}

func newRouter(svc Service) http.Handler {
	h := NewHandler(svc, 3)
	r := chi.NewRouter()
	r.Post("/recommend", h.Recommend)
	r.Post("/recommend/batch", h.Batch)
	r.Get("/products", h.ListProducts)
	r.Get("/products/{productID}", h.GetProduct)
	r.Put("/products/{productID}/seller-boost", h.UpdateSellerBoost)
	r.Get("/categories", h.Categories)
	r.Get("/stats", h.Stats)
	r.Get("/health", h.Health)
	return r
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		errCode  string
		cacheHdr string
	}{
		{"empty body", "", http.StatusOK, "", "MISS"},
		{"empty object", "{}", http.StatusOK, "", "MISS"},
		{"loose shapes", `{"needs": "hydration", "budget": "medium", "age": 30, "top_k": 3}`, http.StatusOK, "", "MISS"},
		{"malformed json", `{"query": `, http.StatusBadRequest, "invalid_json", ""},
		{"top_k too large", `{"top_k": 51}`, http.StatusBadRequest, "validation_error", ""},
		{"language too long", `{"language": "` + strings.Repeat("x", 40) + `"}`, http.StatusBadRequest, "validation_error", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := do(t, newRouter(svc), http.MethodPost, "/recommend", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			if tt.errCode != "" {
				var e ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
				assert.Equal(t, tt.errCode, e.Error)
				return
			}
			assert.Equal(t, tt.cacheHdr, rec.Header().Get("X-Cache"))

			var resp domain.RecommendationResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, 1, resp.Count)
			assert.Contains(t, rec.Body.String(), `"filtered_out":{`)
		})
	}
}

func TestRecommend_PassesDecodedRequest(t *testing.T) {
	svc := &fakeService{cacheHit: true}
	rec := do(t, newRouter(svc), http.MethodPost, "/recommend",
		`{"medical_conditions": "diabetes", "budget": 1500, "language": "fr"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, domain.StringList{"diabetes"}, svc.lastReq.MedicalConditions)
	require.NotNil(t, svc.lastReq.Budget.Number)
	assert.Equal(t, 1500.0, *svc.lastReq.Budget.Number)
	assert.Equal(t, "fr", svc.lastReq.Language)
}

func TestRecommend_ServiceTimeout(t *testing.T) {
	svc := &fakeService{err: context.DeadlineExceeded}
	rec := do(t, newRouter(svc), http.MethodPost, "/recommend", "{}")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "request_timeout")
}

func TestBatch(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"requests": [{}, {"query": "serum"}]}`, http.StatusOK},
		{"missing requests", `{}`, http.StatusBadRequest},
		{"empty list", `{"requests": []}`, http.StatusBadRequest},
		{"too many", `{"requests": [{}, {}, {}, {}]}`, http.StatusBadRequest},
		{"invalid item", `{"requests": [{"top_k": 99}]}`, http.StatusBadRequest},
		{"empty body", ``, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := do(t, newRouter(svc), http.MethodPost, "/recommend/batch", tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	svc := &fakeService{}
	rec := do(t, newRouter(svc), http.MethodPost, "/recommend/batch", `{"requests": [{}, {"query": "serum"}]}`)
	var resp domain.BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Summary.SuccessCount)
	assert.Equal(t, "serum", svc.lastBatch[1].Query)
}

func TestListProducts(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		status int
		want   service.ProductQuery
	}{
		{"defaults", "", http.StatusOK, service.ProductQuery{Page: 1, Limit: 20}},
		{"filters", "?category=hair_care&in_stock=true&page=2&limit=5", http.StatusOK,
			service.ProductQuery{Category: "hair_care", InStockOnly: true, Page: 2, Limit: 5}},
		{"bad page", "?page=0", http.StatusBadRequest, service.ProductQuery{}},
		{"bad limit", "?limit=500", http.StatusBadRequest, service.ProductQuery{}},
		{"bad in_stock", "?in_stock=maybe", http.StatusBadRequest, service.ProductQuery{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := do(t, newRouter(svc), http.MethodGet, "/products"+tt.query, "")
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.want, svc.lastQuery)
			}
		})
	}
}

func TestGetProduct(t *testing.T) {
	r := newRouter(&fakeService{})

	rec := do(t, r, http.MethodGet, "/products/p1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"p1"`)

	rec = do(t, r, http.MethodGet, "/products/p9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "product_not_found")
}

func TestUpdateSellerBoost(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"ok", "/products/p1/seller-boost", `{"seller_boost": 0.3}`, http.StatusOK},
		{"zero is a value", "/products/p1/seller-boost", `{"seller_boost": 0}`, http.StatusOK},
		{"missing field", "/products/p1/seller-boost", `{}`, http.StatusBadRequest},
		{"negative", "/products/p1/seller-boost", `{"seller_boost": -2}`, http.StatusBadRequest},
		{"not a number", "/products/p1/seller-boost", `{"seller_boost": "high"}`, http.StatusBadRequest},
		{"unknown product", "/products/p9/seller-boost", `{"seller_boost": 0.3}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newRouter(&fakeService{}), http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestCatalogEndpoints(t *testing.T) {
	r := newRouter(&fakeService{healthy: true})

	rec := do(t, r, http.MethodGet, "/categories", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"hair_care":["shampoo"]}`, rec.Body.String())

	rec = do(t, r, http.MethodGet, "/stats", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_products":3`)

	rec = do(t, r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = do(t, newRouter(&fakeService{}), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
