package catalog

import (
	"fmt"
	"math"
	"strings"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

// Validate checks the fields every record must carry. Capability blocks are
// optional and never validated here.
func Validate(p *domain.Product) error {
	if p == nil {
		return fmt.Errorf("nil record: %w", domain.ErrInvalidProduct)
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("missing id: %w", domain.ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("product %s: missing name: %w", p.ID, domain.ErrInvalidProduct)
	}
	if p.Price < 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
		return fmt.Errorf("product %s: invalid price %v: %w", p.ID, p.Price, domain.ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return fmt.Errorf("product %s: negative stock %d: %w", p.ID, p.Stock, domain.ErrInvalidProduct)
	}
	if p.SellerBoost < 0 || math.IsNaN(p.SellerBoost) || math.IsInf(p.SellerBoost, 0) {
		return fmt.Errorf("product %s: invalid seller boost %v: %w", p.ID, p.SellerBoost, domain.ErrInvalidProduct)
	}
	return nil
}

// ConflictingTags returns tags listed both as avoid_if and as safe_for or
// suitable_for on the same record. Such records are ambiguous; they are kept
// as-is and reported.
func ConflictingTags(p *domain.Product) []string {
	conflicts := domain.NewTagSet()
	if m := p.MedicalConditions; m != nil {
		avoid := domain.NewTagSet(m.AvoidIf...)
		for _, t := range avoid.Intersect(m.SafeFor) {
			conflicts.Add(t)
		}
	}
	if s := p.SkinConditions; s != nil {
		avoid := domain.NewTagSet(s.AvoidIf...)
		for _, t := range avoid.Intersect(s.SuitableFor) {
			conflicts.Add(t)
		}
	}
	if conflicts.Len() == 0 {
		return nil
	}
	return conflicts.Sorted()
}
