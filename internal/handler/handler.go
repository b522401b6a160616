// Package handler is the HTTP front door for recommendations and catalog
// administration.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/service"
)

const maxBodyBytes = 1 << 20

var validate = validator.New()

// Service is the subset of *service.Service the handlers call.
type Service interface {
	Recommend(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResult, error)
	Batch(ctx context.Context, reqs []domain.RecommendationRequest) *domain.BatchResponse
	UpdateSellerBoost(ctx context.Context, id string, boost float64) (*domain.Product, error)
	Products(q service.ProductQuery) service.ProductPage
	Product(id string) (*domain.Product, error)
	Categories() map[string][]string
	Stats() domain.CatalogStats
	Health(ctx context.Context) (map[string]string, bool)
}

type Handler struct {
	service      Service
	maxBatchSize int
}

func NewHandler(svc Service, maxBatchSize int) *Handler {
	if maxBatchSize <= 0 {
		maxBatchSize = 50
	}
	return &Handler{service: svc, maxBatchSize: maxBatchSize}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := service.CategorizeError(err)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidSellerBoost):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	writeError(w, status, code, msg)
}

// decodeJSON reads a size-limited body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeJSON(r *http.Request, dst any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return nil
		}
		return err
	}
	return nil
}
