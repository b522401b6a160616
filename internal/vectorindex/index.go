// Package vectorindex provides nearest-neighbour search over product
// embeddings: an exact flat index, an approximate IVF index for large
// catalogs and a Qdrant-backed remote index.
package vectorindex

import (
	"context"
	"math"
	"sort"
)

// Hit is one search result. Similarity is in [0, 1], higher is closer.
type Hit struct {
	ID         string
	Similarity float64
}

type Index interface {
	Search(ctx context.Context, query []float32, k int) ([]Hit, error)
	Len() int
	Kind() string
}

const (
	KindFlat   = "flat"
	KindIVF    = "ivf"
	KindQdrant = "qdrant"
)

type entry struct {
	id  string
	vec []float32
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func clampSimilarity(s float64) float64 {
	switch {
	case math.IsNaN(s) || s < 0:
		return 0
	case s > 1:
		return 1
	default:
		return s
	}
}

type scored struct {
	pos int
	hit Hit
}

// topK ranks hits by similarity, keeping insertion order for ties.
func topK(hits []scored, k int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].hit.Similarity != hits[j].hit.Similarity {
			return hits[i].hit.Similarity > hits[j].hit.Similarity
		}
		return hits[i].pos < hits[j].pos
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	out := make([]Hit, len(hits))
	for i, h := range hits {
		out[i] = h.hit
	}
	return out
}
