package vectorindex

import (
	"context"
	"fmt"
)

// Flat is an exact cosine index. It is immutable after construction.
type Flat struct {
	entries []entry
	dim     int
}

func NewFlat(ids []string, vectors [][]float32) (*Flat, error) {
	if len(ids) != len(vectors) {
		return nil, fmt.Errorf("ids and vectors length mismatch: %d != %d", len(ids), len(vectors))
	}
	f := &Flat{entries: make([]entry, len(ids))}
	for i := range ids {
		if i == 0 {
			f.dim = len(vectors[i])
		} else if len(vectors[i]) != f.dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(vectors[i]), f.dim)
		}
		f.entries[i] = entry{id: ids[i], vec: vectors[i]}
	}
	return f, nil
}

func (f *Flat) Len() int     { return len(f.entries) }
func (f *Flat) Kind() string { return KindFlat }

func (f *Flat) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(f.entries) > 0 && len(query) != f.dim {
		return nil, fmt.Errorf("query dimension %d, want %d", len(query), f.dim)
	}
	hits := make([]scored, len(f.entries))
	for i, e := range f.entries {
		hits[i] = scored{pos: i, hit: Hit{ID: e.id, Similarity: clampSimilarity(cosine(query, e.vec))}}
	}
	return topK(hits, k), nil
}
