package domain

import "errors"

var (
	// ErrProductNotFound is returned when no product has the requested id.
	ErrProductNotFound = errors.New("product not found")

	// ErrInvalidProduct marks a catalog record missing a required field.
	ErrInvalidProduct = errors.New("invalid product record")

	ErrEmptyCatalog = errors.New("catalog is empty")

	ErrInvalidSellerBoost = errors.New("seller boost must be a finite number >= 0")

	// ErrIndexUnavailable is returned by vector index backends that cannot serve a search.
	ErrIndexUnavailable = errors.New("vector index unavailable")
)
