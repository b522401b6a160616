// Package catalog owns the product table for the process lifetime.
package catalog

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
)

// Snapshot is a consistent, read-only view of the catalog. Records are never
// mutated once published, so a snapshot stays valid after later updates.
type Snapshot struct {
	Products []*domain.Product
	Version  uint64

	byID map[string]int
}

// Position returns the catalog index of id within the snapshot.
func (s Snapshot) Position(id string) (int, bool) {
	i, ok := s.byID[id]
	return i, ok
}

// NewSnapshot builds a standalone snapshot, mainly for tests and one-off
// pipelines that do not need a Store.
func NewSnapshot(products []*domain.Product) Snapshot {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		byID[p.ID] = i
	}
	return Snapshot{Products: products, Version: 1, byID: byID}
}

type Store struct {
	mu       sync.RWMutex
	products []*domain.Product
	byID     map[string]int
	version  uint64
}

// New validates products and takes ownership of them. Duplicate ids and
// records missing required fields reject the whole catalog.
func New(products []*domain.Product, logger zerolog.Logger) (*Store, error) {
	byID := make(map[string]int, len(products))
	for i, p := range products {
		if err := Validate(p); err != nil {
			return nil, fmt.Errorf("product at position %d: %w", i, err)
		}
		if _, dup := byID[p.ID]; dup {
			return nil, fmt.Errorf("product at position %d: duplicate id %q: %w", i, p.ID, domain.ErrInvalidProduct)
		}
		byID[p.ID] = i
		if tags := ConflictingTags(p); len(tags) > 0 {
			logger.Warn().
				Str("product_id", p.ID).
				Strs("tags", tags).
				Msg("product lists the same tag as both avoided and suitable")
		}
	}
	return &Store{products: products, byID: byID, version: 1}, nil
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Products: s.products, Version: s.version, byID: s.byID}
}

func (s *Store) Lookup(id string) (*domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.products[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// PersistFunc writes an updated record to the backing source before it is
// published to readers.
type PersistFunc func(ctx context.Context, p *domain.Product) error

// SetSellerBoost replaces the product with a copy carrying the new boost.
// Writers are serialized; readers see either the old or the new record,
// never a partially written one. When persist fails nothing is published.
func (s *Store) SetSellerBoost(ctx context.Context, id string, boost float64, persist PersistFunc) (*domain.Product, error) {
	if boost < 0 || math.IsNaN(boost) || math.IsInf(boost, 0) {
		return nil, domain.ErrInvalidSellerBoost
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	updated := s.products[i].Clone()
	updated.SellerBoost = boost

	if persist != nil {
		if err := persist(ctx, updated); err != nil {
			return nil, fmt.Errorf("persist seller boost for %s: %w", id, err)
		}
	}

	next := make([]*domain.Product, len(s.products))
	copy(next, s.products)
	next[i] = updated
	s.products = next
	s.version++
	return updated, nil
}

// Exclusive runs fn while holding the write lock, so that derived
// structures can be rebuilt without interleaving with updates.
func (s *Store) Exclusive(fn func(Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(Snapshot{Products: s.products, Version: s.version, byID: s.byID})
}
