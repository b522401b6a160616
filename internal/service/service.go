// Package service runs the recommendation pipeline and the catalog
// operations exposed over HTTP and the CLI.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/catalog-recommender/internal/cache"
	"github.com/actuallystonmai/catalog-recommender/internal/catalog"
	"github.com/actuallystonmai/catalog-recommender/internal/constraint"
	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/localize"
	"github.com/actuallystonmai/catalog-recommender/internal/model"
	"github.com/actuallystonmai/catalog-recommender/internal/observability"
	"github.com/actuallystonmai/catalog-recommender/internal/policy"
	"github.com/actuallystonmai/catalog-recommender/internal/retrieval"
	"github.com/actuallystonmai/catalog-recommender/internal/safety"
)

const defaultBatchConcurrency = 10

// ResponseCache is satisfied by *cache.Cache.
type ResponseCache interface {
	Get(ctx context.Context, key string) (*domain.RecommendationResponse, bool, error)
	Set(ctx context.Context, key string, resp *domain.RecommendationResponse) error
	Clear(ctx context.Context) error
}

// Checker is a dependency probed by Health.
type Checker interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Store     *catalog.Store
	Retriever *retrieval.Retriever
	Filter    *safety.Filter
	Scorer    *model.Scorer
	Localizer *localize.Localizer
	Policy    *policy.Policy

	// Optional.
	Cache            ResponseCache
	Persist          catalog.PersistFunc
	Checkers         map[string]Checker
	BatchConcurrency int
}

type Service struct {
	store            *catalog.Store
	retriever        *retrieval.Retriever
	filter           *safety.Filter
	scorer           *model.Scorer
	localizer        *localize.Localizer
	policy           *policy.Policy
	cache            ResponseCache
	persist          catalog.PersistFunc
	checkers         map[string]Checker
	batchConcurrency int
	logger           zerolog.Logger
}

func NewService(d Deps, logger zerolog.Logger) *Service {
	if d.BatchConcurrency <= 0 {
		d.BatchConcurrency = defaultBatchConcurrency
	}
	s := &Service{
		store:            d.Store,
		retriever:        d.Retriever,
		filter:           d.Filter,
		scorer:           d.Scorer,
		localizer:        d.Localizer,
		policy:           d.Policy,
		cache:            d.Cache,
		persist:          d.Persist,
		checkers:         d.Checkers,
		batchConcurrency: d.BatchConcurrency,
		logger:           logger.With().Str("component", "service").Logger(),
	}
	observability.CatalogVersion.Set(float64(d.Store.Version()))
	return s
}

// Recommend answers one request. Only a cancelled or expired context makes
// it fail; collaborator problems surface as warnings in the response.
func (s *Service) Recommend(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	req.TopK = s.resolveTopK(req.TopK)
	req.Language = s.localizer.Resolve(req.Language)
	snap := s.store.Snapshot()
	log := s.logger.With().Str("request_id", requestID).Logger()

	var key string
	if s.cache != nil {
		var err error
		if key, err = cache.Key(snap.Version, req); err != nil {
			log.Warn().Err(err).Msg("cache key")
		}
	}

	// Check Cache
	if key != "" {
		cached, found, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			observability.CacheLookup("error")
			log.Warn().Err(err).Msg("cache get")
		case found:
			observability.CacheLookup("hit")
			cached.Metadata.RequestID = requestID
			return &domain.RecommendationResult{Response: cached, CacheHit: true}, nil
		default:
			observability.CacheLookup("miss")
		}
	}

	resp := s.run(ctx, snap, req, requestID, log)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if key != "" {
		if err := s.cache.Set(ctx, key, resp); err != nil {
			log.Warn().Err(err).Msg("cache set")
		}
	}
	return &domain.RecommendationResult{Response: resp}, nil
}

// run is the pipeline: parse, retrieve, filter, rank, truncate, localize.
func (s *Service) run(ctx context.Context, snap catalog.Snapshot, req domain.RecommendationRequest, requestID string, log zerolog.Logger) *domain.RecommendationResponse {
	start := time.Now()

	searchText, cs := constraint.Parse(req)
	retrieved := s.retriever.Retrieve(ctx, snap, searchText, cs, req.TopK)
	outcome := s.filter.Apply(retrieved.Candidates, cs)
	ranked := s.scorer.Rank(outcome.Survivors, cs)
	if len(ranked) > req.TopK {
		ranked = ranked[:req.TopK]
	}

	applied := append(outcome.Applied, model.SoftApplied(cs)...)
	resp := s.localizer.Build(localize.Input{
		RequestID:   requestID,
		Language:    req.Language,
		Constraints: cs,
		Retrieved:   retrieved.Candidates,
		Survivors:   len(outcome.Survivors),
		FilteredOut: outcome.FilteredOut,
		Applied:     applied,
		Mode:        retrieved.Mode,
		Degraded:    retrieved.Degraded,
		Results:     ranked,
	})

	dur := time.Since(start)
	observability.ObserveRecommendation(retrieved.Mode, retrieved.Degraded, outcome.FilteredOut, resp.Count, dur)
	log.Debug().
		Str("mode", retrieved.Mode).
		Int("retrieved", len(retrieved.Candidates)).
		Int("survivors", len(outcome.Survivors)).
		Int("returned", resp.Count).
		Interface("filtered_out", outcome.FilteredOut).
		Dur("duration", dur).
		Msg("recommendation pipeline")
	return resp
}

func (s *Service) resolveTopK(k int) int {
	switch {
	case k <= 0:
		return s.policy.DefaultTopK
	case k > s.policy.MaxTopK:
		return s.policy.MaxTopK
	default:
		return k
	}
}

// UpdateSellerBoost publishes a new boost for a product, persisting it first
// when a backing store is configured, then drops stale cached responses.
func (s *Service) UpdateSellerBoost(ctx context.Context, id string, boost float64) (*domain.Product, error) {
	updated, err := s.store.SetSellerBoost(ctx, id, boost, s.persist)
	if err != nil {
		return nil, err
	}
	observability.CatalogVersion.Set(float64(s.store.Version()))
	if s.cache != nil {
		if err := s.cache.Clear(ctx); err != nil {
			s.logger.Warn().Err(err).Str("product_id", id).Msg("cache invalidation")
		}
	}
	s.logger.Info().Str("product_id", id).Float64("seller_boost", boost).Uint64("catalog_version", s.store.Version()).Msg("seller boost updated")
	return updated, nil
}

// Health pings every configured dependency and reports per-dependency status.
func (s *Service) Health(ctx context.Context) (map[string]string, bool) {
	status := map[string]string{"catalog": "ok", "index": s.retriever.IndexKind(), "breaker": s.retriever.BreakerState()}
	healthy := true
	for name, c := range s.checkers {
		if err := c.Ping(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	return status, healthy
}

// CategorizeError maps an error to the code and message returned to clients.
func CategorizeError(err error) (string, string) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "request_timeout", "request timed out, please try again"
	case errors.Is(err, domain.ErrProductNotFound):
		return "product_not_found", "product not found"
	case errors.Is(err, domain.ErrInvalidSellerBoost):
		return "invalid_seller_boost", "seller boost must be a finite number >= 0"
	default:
		return "internal_error", "an unexpected error occurred"
	}
}
