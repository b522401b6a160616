package embedding

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
)

// CachedEmbedder memoizes vectors by text with FIFO eviction. Concurrent
// requests for the same uncached texts share one call to the base embedder.
type CachedEmbedder struct {
	base     Embedder
	capacity int
	group    singleflight.Group

	mu  sync.RWMutex
	m   map[uint64][]float32
	ord []uint64
}

// NewCachedEmbedder wraps base. A non-positive capacity returns base as-is.
func NewCachedEmbedder(base Embedder, capacity int) Embedder {
	if capacity <= 0 || base == nil {
		return base
	}
	return &CachedEmbedder{
		base:     base,
		capacity: capacity,
		m:        make(map[uint64][]float32, capacity),
		ord:      make([]uint64, 0, capacity),
	}
}

func (c *CachedEmbedder) Dimension() int { return c.base.Dimension() }

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	res := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	c.mu.RLock()
	for i, t := range texts {
		if v, ok := c.m[keyFor(t)]; ok {
			res[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, t)
	}
	c.mu.RUnlock()

	if len(missTexts) == 0 {
		return res, nil
	}

	v, err, _ := c.group.Do(flightKey(missTexts), func() (any, error) {
		return c.base.Embed(ctx, missTexts)
	})
	if err != nil {
		return nil, err
	}
	vecs := v.([][]float32)
	if len(vecs) != len(missTexts) {
		return nil, ErrNoEmbedding
	}
	for j, idx := range missIdx {
		res[idx] = vecs[j]
		c.put(missTexts[j], vecs[j])
	}
	return res, nil
}

func (c *CachedEmbedder) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func (c *CachedEmbedder) put(text string, vec []float32) {
	k := keyFor(text)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[k]; exists {
		c.m[k] = vec
		return
	}
	if len(c.ord) >= c.capacity {
		old := c.ord[0]
		c.ord = c.ord[1:]
		delete(c.m, old)
	}
	c.m[k] = vec
	c.ord = append(c.ord, k)
}

func keyFor(text string) uint64 {
	return xxhash.Sum64String(strings.TrimSpace(text))
}

func flightKey(texts []string) string {
	d := xxhash.New()
	for _, t := range texts {
		_, _ = d.WriteString(strings.TrimSpace(t))
		_, _ = d.Write([]byte{0})
	}
	return strconv.FormatUint(d.Sum64(), 16)
}
