package vectorindex

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const (
	ivfIterations = 10
	ivfSeed       = 42
)

// IVF is an inverted-file approximate index: vectors are clustered with
// k-means into nlist lists and a query scans only the closest nprobe lists.
type IVF struct {
	centroids [][]float32
	lists     [][]int
	entries   []entry
	dim       int
	nprobe    int
}

// NewIVF clusters the vectors with nlist = ceil(sqrt(n)) and
// nprobe = max(1, nlist/10). Seeding is fixed so builds are reproducible.
func NewIVF(ids []string, vectors [][]float32) (*IVF, error) {
	flat, err := NewFlat(ids, vectors)
	if err != nil {
		return nil, err
	}
	n := len(flat.entries)
	if n == 0 {
		return &IVF{nprobe: 1}, nil
	}
	nlist := int(math.Ceil(math.Sqrt(float64(n))))
	idx := &IVF{
		entries: flat.entries,
		dim:     flat.dim,
		nprobe:  max(1, nlist/10),
	}
	idx.train(nlist)
	return idx, nil
}

func (x *IVF) Len() int     { return len(x.entries) }
func (x *IVF) Kind() string { return KindIVF }
func (x *IVF) NList() int   { return len(x.centroids) }
func (x *IVF) NProbe() int  { return x.nprobe }

func (x *IVF) train(nlist int) {
	rng := rand.New(rand.NewSource(ivfSeed))
	perm := rng.Perm(len(x.entries))
	x.centroids = make([][]float32, nlist)
	for c := range x.centroids {
		x.centroids[c] = append([]float32(nil), x.entries[perm[c]].vec...)
	}

	assign := make([]int, len(x.entries))
	for iter := 0; iter < ivfIterations; iter++ {
		changed := false
		for i, e := range x.entries {
			best := x.nearestCentroid(e.vec)
			if iter == 0 || best != assign[i] {
				changed = true
			}
			assign[i] = best
		}
		x.recompute(assign)
		if !changed {
			break
		}
	}

	x.lists = make([][]int, nlist)
	for i, c := range assign {
		x.lists[c] = append(x.lists[c], i)
	}
}

func (x *IVF) nearestCentroid(v []float32) int {
	best, bestSim := 0, math.Inf(-1)
	for c, centroid := range x.centroids {
		if s := cosine(v, centroid); s > bestSim {
			best, bestSim = c, s
		}
	}
	return best
}

func (x *IVF) recompute(assign []int) {
	sums := make([][]float64, len(x.centroids))
	counts := make([]int, len(x.centroids))
	for i := range sums {
		sums[i] = make([]float64, x.dim)
	}
	for i, c := range assign {
		counts[c]++
		for d, v := range x.entries[i].vec {
			sums[c][d] += float64(v)
		}
	}
	for c := range x.centroids {
		// Empty clusters keep their previous centroid.
		if counts[c] == 0 {
			continue
		}
		for d := range sums[c] {
			x.centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
		}
	}
}

// Search probes the nprobe closest lists, widening the probe until at
// least k vectors have been scanned or every list is exhausted.
func (x *IVF) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(x.entries) == 0 {
		return nil, nil
	}
	if len(query) != x.dim {
		return nil, fmt.Errorf("query dimension %d, want %d", len(query), x.dim)
	}

	order := make([]int, len(x.centroids))
	sims := make([]float64, len(x.centroids))
	for c := range x.centroids {
		order[c] = c
		sims[c] = cosine(query, x.centroids[c])
	}
	sort.SliceStable(order, func(i, j int) bool { return sims[order[i]] > sims[order[j]] })

	var hits []scored
	for probed, c := range order {
		if probed >= x.nprobe && len(hits) >= k {
			break
		}
		for _, i := range x.lists[c] {
			e := x.entries[i]
			hits = append(hits, scored{pos: i, hit: Hit{ID: e.id, Similarity: clampSimilarity(cosine(query, e.vec))}})
		}
	}
	return topK(hits, k), nil
}
