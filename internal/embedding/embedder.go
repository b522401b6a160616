// Package embedding maps text to fixed-length vectors for the vector index.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Embedder is deterministic for identical input within a process lifetime.
// Returned vectors are shared and must not be modified by callers.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

var ErrNoEmbedding = errors.New("no embedding returned")

// EmbedOne embeds a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 || vecs[0] == nil {
		return nil, ErrNoEmbedding
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in chunks of batchSize.
func EmbedBatch(ctx context.Context, e Embedder, texts []string, batchSize int) ([][]float32, error) {
	if batchSize <= 0 {
		batchSize = 64
	}
	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += batchSize {
		end := min(i+batchSize, len(texts))
		vecs, err := e.Embed(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", i, end, err)
		}
		if len(vecs) != end-i {
			return nil, fmt.Errorf("batch %d-%d: got %d vectors: %w", i, end, len(vecs), ErrNoEmbedding)
		}
		out = append(out, vecs...)
	}
	return out, nil
}
