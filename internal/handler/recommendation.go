package handler

import (
	"fmt"
	"net/http"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

// POST /recommend
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req domain.RecommendationRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	result, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if result.CacheHit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, result.Response)
}

// POST /recommend/batch
func (h *Handler) Batch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if len(req.Requests) > h.maxBatchSize {
		writeError(w, http.StatusBadRequest, "invalid_parameter",
			fmt.Sprintf("A batch may contain at most %d requests", h.maxBatchSize))
		return
	}

	writeJSON(w, http.StatusOK, h.service.Batch(r.Context(), req.Requests))
}
