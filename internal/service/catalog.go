package service

import (
	"sort"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

// ProductQuery selects a page of the catalog for listing.
type ProductQuery struct {
	Category    string
	InStockOnly bool
	Page        int
	Limit       int
}

type ProductPage struct {
	Products []*domain.Product `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// Products lists catalog records in catalog order.
func (s *Service) Products(q ProductQuery) ProductPage {
	snap := s.store.Snapshot()
	category := domain.NormalizeTag(q.Category)

	matched := make([]*domain.Product, 0, len(snap.Products))
	for _, p := range snap.Products {
		if category != "" && domain.NormalizeTag(p.Category) != category {
			continue
		}
		if q.InStockOnly && p.Stock <= 0 {
			continue
		}
		matched = append(matched, p)
	}

	page := ProductPage{Products: []*domain.Product{}, Total: len(matched), Page: q.Page, Limit: q.Limit}
	offset := (q.Page - 1) * q.Limit
	if offset < 0 || offset >= len(matched) {
		return page
	}
	page.Products = matched[offset:min(offset+q.Limit, len(matched))]
	return page
}

func (s *Service) Product(id string) (*domain.Product, error) {
	p, ok := s.store.Lookup(id)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// Categories maps each category to its sorted subcategories.
func (s *Service) Categories() map[string][]string {
	seen := make(map[string]map[string]struct{})
	for _, p := range s.store.Snapshot().Products {
		subs, ok := seen[p.Category]
		if !ok {
			subs = make(map[string]struct{})
			seen[p.Category] = subs
		}
		if p.Subcategory != "" {
			subs[p.Subcategory] = struct{}{}
		}
	}

	out := make(map[string][]string, len(seen))
	for cat, subs := range seen {
		list := make([]string, 0, len(subs))
		for sub := range subs {
			list = append(list, sub)
		}
		sort.Strings(list)
		out[cat] = list
	}
	return out
}

func (s *Service) Stats() domain.CatalogStats {
	snap := s.store.Snapshot()
	stats := domain.CatalogStats{
		TotalProducts: len(snap.Products),
		Categories:    make(map[string]int),
		IndexType:     s.retriever.IndexKind(),
		Version:       snap.Version,
	}
	for _, p := range snap.Products {
		stats.Categories[p.Category]++
		if p.Stock > 0 {
			stats.InStock++
		}
	}
	return stats
}
