package vectorindex

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/embedding"
)

const (
	DefaultANNThreshold = 1000
	embedBatchSize      = 64
	embedParallelism    = 4
)

type BuildOptions struct {
	// ANNThreshold switches the in-memory index to IVF at this catalog size.
	ANNThreshold int
	// Qdrant, when set, stores vectors remotely instead of in memory.
	Qdrant     *QdrantClient
	Collection string
}

// Build embeds every product's searchable text and indexes the vectors.
func Build(ctx context.Context, products []*domain.Product, embedder embedding.Embedder, opts BuildOptions, logger zerolog.Logger) (Index, error) {
	start := time.Now()
	ids := make([]string, len(products))
	texts := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
		texts[i] = p.SearchableText()
	}

	vectors, err := embedAll(ctx, embedder, texts)
	if err != nil {
		return nil, fmt.Errorf("embed catalog: %w", err)
	}

	var idx Index
	switch {
	case opts.Qdrant != nil:
		if err := opts.Qdrant.EnsureCollection(ctx, opts.Collection, embedder.Dimension()); err != nil {
			return nil, fmt.Errorf("ensure collection %s: %w", opts.Collection, err)
		}
		if err := opts.Qdrant.UpsertProducts(ctx, opts.Collection, ids, vectors); err != nil {
			return nil, fmt.Errorf("upsert products: %w", err)
		}
		idx = &Qdrant{client: opts.Qdrant, collection: opts.Collection, size: len(ids)}
	case len(products) >= threshold(opts.ANNThreshold):
		idx, err = NewIVF(ids, vectors)
	default:
		idx, err = NewFlat(ids, vectors)
	}
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("index", idx.Kind()).
		Int("products", len(products)).
		Dur("took", time.Since(start)).
		Msg("vector index built")
	return idx, nil
}

func threshold(t int) int {
	if t <= 0 {
		return DefaultANNThreshold
	}
	return t
}

func embedAll(ctx context.Context, embedder embedding.Embedder, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedParallelism)
	for start := 0; start < len(texts); start += embedBatchSize {
		start := start
		end := min(start+embedBatchSize, len(texts))
		g.Go(func() error {
			vecs, err := embedding.EmbedBatch(gctx, embedder, texts[start:end], embedBatchSize)
			if err != nil {
				return err
			}
			copy(vectors[start:end], vecs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
