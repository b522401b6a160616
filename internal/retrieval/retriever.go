// Package retrieval produces the candidate list for a request: semantic
// nearest neighbours from the vector index, topped up by a keyword scan of
// the catalog when the semantic path is short, failing or skipped.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/actuallystonmai/catalog-recommender/internal/catalog"
	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/embedding"
	"github.com/actuallystonmai/catalog-recommender/internal/policy"
	"github.com/actuallystonmai/catalog-recommender/internal/vectorindex"
)

const DefaultTimeout = 2 * time.Second

type Config struct {
	Timeout time.Duration
	Breaker BreakerConfig
}

type Retriever struct {
	embedder embedding.Embedder
	index    vectorindex.Index
	policy   *policy.Policy
	timeout  time.Duration
	breaker  *gobreaker.CircuitBreaker[[]vectorindex.Hit]
	logger   zerolog.Logger
}

// Result is the merged candidate list. Degraded is set when the semantic
// path failed or timed out; the caller turns it into a warning.
type Result struct {
	Candidates []domain.Candidate
	Mode       string
	Degraded   bool
	Err        error
}

// New builds a retriever. A nil index or embedder leaves only the keyword path.
func New(embedder embedding.Embedder, index vectorindex.Index, pol *policy.Policy, cfg Config, logger zerolog.Logger) *Retriever {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = "semantic-search"
	}
	logger = logger.With().Str("component", "retrieval").Logger()
	return &Retriever{
		embedder: embedder,
		index:    index,
		policy:   pol,
		timeout:  cfg.Timeout,
		breaker:  newBreaker(cfg.Breaker, logger),
		logger:   logger,
	}
}

func (r *Retriever) IndexKind() string {
	if r.index == nil {
		return "none"
	}
	return r.index.Kind()
}

func (r *Retriever) BreakerState() string {
	return r.breaker.State().String()
}

// Retrieve returns up to k × oversample candidates in retrieval order.
func (r *Retriever) Retrieve(ctx context.Context, snap catalog.Snapshot, searchText string, cs *domain.ConstraintSet, k int) Result {
	fetch := k * r.policy.Oversample
	var res Result

	switch {
	case searchText == "":
	case r.index == nil || r.embedder == nil:
		res.Degraded = true
		res.Err = fmt.Errorf("semantic search: %w", domain.ErrIndexUnavailable)
		r.logger.Debug().Msg("no vector index, using keyword fallback")
	default:
		hits, err := r.semantic(ctx, searchText, fetch)
		if err != nil {
			res.Degraded = true
			res.Err = err
			r.logger.Warn().Err(err).Msg("semantic retrieval failed, using keyword fallback")
		} else {
			res.Candidates = r.fromHits(snap, hits, cs, searchText)
		}
	}

	semanticCount := len(res.Candidates)
	if semanticCount < k {
		res.Candidates = merge(res.Candidates, keywordSearch(snap, cs, fetch))
	}

	switch {
	case semanticCount == 0:
		res.Mode = domain.ModeKeyword
	case len(res.Candidates) > semanticCount:
		res.Mode = domain.ModeSemanticKeyword
	default:
		res.Mode = domain.ModeSemantic
	}

	r.logger.Debug().
		Str("mode", res.Mode).
		Int("semantic", semanticCount).
		Int("total", len(res.Candidates)).
		Msg("candidates retrieved")
	return res
}

func (r *Retriever) semantic(ctx context.Context, text string, k int) ([]vectorindex.Hit, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	hits, err := r.breaker.Execute(func() ([]vectorindex.Hit, error) {
		vec, err := embedding.EmbedOne(ctx, r.embedder, text)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		hits, err := r.index.Search(ctx, vec, k)
		if err != nil {
			return nil, fmt.Errorf("search index: %w", err)
		}
		return hits, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("semantic search: %w", domain.ErrIndexUnavailable)
	}
	return hits, err
}

func (r *Retriever) fromHits(snap catalog.Snapshot, hits []vectorindex.Hit, cs *domain.ConstraintSet, searchText string) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(hits))
	for _, h := range hits {
		pos, ok := snap.Position(h.ID)
		if !ok {
			continue
		}
		p := snap.Products[pos]
		if p.Stock <= 0 {
			continue
		}
		out = append(out, domain.Candidate{
			Product:      p,
			Position:     pos,
			Similarity:   h.Similarity,
			KeywordBoost: keywordBoost(p, cs, searchText, r.policy.Weights.KeywordCap),
			Source:       domain.SourceSemantic,
		})
	}
	return out
}

// merge appends extra to base, skipping ids already present. The first
// occurrence wins and relative order is preserved.
func merge(base, extra []domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]domain.Candidate, 0, len(base)+len(extra))
	for _, list := range [][]domain.Candidate{base, extra} {
		for _, c := range list {
			if _, dup := seen[c.Product.ID]; dup {
				continue
			}
			seen[c.Product.ID] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
