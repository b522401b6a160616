package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/actuallystonmai/catalog-recommender/internal/service"
)

// GET /products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	// Parse and validate page
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 || parsed > 10000 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid page parameter")
			return
		}
		page = parsed
	}

	// Parse and validate limit
	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 100 {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	inStock := false
	if v := r.URL.Query().Get("in_stock"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_parameter", "Invalid in_stock parameter")
			return
		}
		inStock = parsed
	}

	writeJSON(w, http.StatusOK, h.service.Products(service.ProductQuery{
		Category:    r.URL.Query().Get("category"),
		InStockOnly: inStock,
		Page:        page,
		Limit:       limit,
	}))
}

// GET /products/{productID}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Product(chi.URLParam(r, "productID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PUT /products/{productID}/seller-boost
func (h *Handler) UpdateSellerBoost(w http.ResponseWriter, r *http.Request) {
	var req SellerBoostRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	p, err := h.service.UpdateSellerBoost(r.Context(), chi.URLParam(r, "productID"), *req.SellerBoost)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GET /categories
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Categories())
}

// GET /stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Stats())
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	deps, ok := h.service.Health(r.Context())
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Dependencies: deps})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Dependencies: deps})
}
