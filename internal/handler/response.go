package handler

import "github.com/actuallystonmai/catalog-recommender/internal/domain"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type BatchRequest struct {
	Requests []domain.RecommendationRequest `json:"requests" validate:"required,min=1,dive"`
}

type SellerBoostRequest struct {
	SellerBoost *float64 `json:"seller_boost" validate:"required,min=0"`
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}
