package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/actuallystonmai/catalog-recommender/internal/cache"
	"github.com/actuallystonmai/catalog-recommender/internal/catalog"
	"github.com/actuallystonmai/catalog-recommender/internal/config"
	"github.com/actuallystonmai/catalog-recommender/internal/domain"
	"github.com/actuallystonmai/catalog-recommender/internal/embedding"
	"github.com/actuallystonmai/catalog-recommender/internal/localize"
	"github.com/actuallystonmai/catalog-recommender/internal/model"
	"github.com/actuallystonmai/catalog-recommender/internal/observability"
	"github.com/actuallystonmai/catalog-recommender/internal/policy"
	"github.com/actuallystonmai/catalog-recommender/internal/repository"
	"github.com/actuallystonmai/catalog-recommender/internal/retrieval"
	"github.com/actuallystonmai/catalog-recommender/internal/safety"
	"github.com/actuallystonmai/catalog-recommender/internal/service"
	"github.com/actuallystonmai/catalog-recommender/internal/vectorindex"
	"github.com/actuallystonmai/catalog-recommender/seeds"
)

const (
	startupWait      = 30 * time.Second
	defaultSeedCount = 240
)

type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
	svc    *service.Service
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.pool != nil {
		a.pool.Close()
	}
}

func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
	})
	return cfg, logger, nil
}

// buildApp wires the pipeline. useCache is false for one-shot CLI runs.
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, useCache bool) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	pol := policy.Default()
	if cfg.PolicyFile != "" {
		var err error
		if pol, err = policy.Load(cfg.PolicyFile); err != nil {
			return nil, fmt.Errorf("load policy: %w", err)
		}
	}

	// ------------ Catalog ---------------
	var (
		products []*domain.Product
		repo     *repository.Repository
		err      error
	)
	if cfg.UsePostgres() {
		if a.pool, err = connectPostgres(ctx, cfg, logger); err != nil {
			return nil, err
		}
		repo = repository.New(a.pool)
		if err := migrateUp(ctx, a.pool, migrationsDir, logger); err != nil {
			a.Close()
			return nil, err
		}
		if err := checkSeed(ctx, a.pool, repo, logger); err != nil {
			a.Close()
			return nil, err
		}
		products, err = repo.LoadProducts(ctx)
	} else {
		products, err = catalog.LoadFile(cfg.CatalogPath)
	}
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	store, err := catalog.New(products, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("catalog integrity: %w", err)
	}
	logger.Info().Int("products", store.Len()).Str("source", cfg.CatalogSource).Msg("catalog loaded")

	// ------------ Embeddings & index ---------------
	embedder, err := newEmbedder(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	// Built under the store's write lock so no seller-boost update lands
	// between the snapshot and the index.
	var index vectorindex.Index
	_ = store.Exclusive(func(snap catalog.Snapshot) error {
		index = buildIndex(ctx, cfg, snap.Products, embedder, logger)
		return nil
	})

	loc, err := localize.New(pol)
	if err != nil {
		a.Close()
		return nil, err
	}

	deps := service.Deps{
		Store: store,
		Retriever: retrieval.New(embedder, index, pol, retrieval.Config{
			Timeout: cfg.RetrievalTimeout,
			Breaker: retrieval.BreakerConfig{
				FailureThreshold: cfg.BreakerFailures,
				Timeout:          cfg.BreakerTimeout,
			},
		}, logger),
		Filter:           safety.NewFilter(pol),
		Scorer:           model.NewScorer(pol),
		Localizer:        loc,
		Policy:           pol,
		Checkers:         map[string]service.Checker{},
		BatchConcurrency: cfg.BatchConcurrency,
	}
	if repo != nil {
		deps.Persist = repo.UpdateSellerBoost
		deps.Checkers["postgres"] = repo
	}

	// ------------ Redis ---------------
	if useCache && cfg.CacheEnabled {
		if c := a.connectRedis(ctx); c != nil {
			deps.Cache = c
			deps.Checkers["redis"] = c
		}
	}

	a.svc = service.NewService(deps, logger)
	return a, nil
}

func connectPostgres(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := waitFor(ctx, "postgres", pool.Ping, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info().Msg("connected to PostgreSQL")
	return pool, nil
}

// connectRedis returns nil when Redis is unreachable; the service then runs
// without a response cache.
func (a *app) connectRedis(ctx context.Context) *cache.Cache {
	opts, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		a.logger.Warn().Err(err).Msg("invalid REDIS_URL, response cache disabled")
		return nil
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		a.logger.Warn().Err(err).Msg("redis unreachable, response cache disabled")
		_ = client.Close()
		return nil
	}
	a.redis = client
	a.logger.Info().Dur("ttl", a.cfg.CacheTTL).Msg("response cache enabled")
	return cache.NewCache(client, a.cfg.CacheTTL)
}

func newEmbedder(cfg *config.Config) (embedding.Embedder, error) {
	var base embedding.Embedder
	switch cfg.Embedder {
	case "openai":
		client, err := embedding.NewOpenAIClient(embedding.OpenAIConfig{
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.EmbeddingsModel,
			BaseURL:   cfg.OpenAIBaseURL,
			Dimension: cfg.EmbeddingDim,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding client: %w", err)
		}
		base = client
	default:
		base = embedding.NewHashEmbedder(cfg.EmbeddingDim)
	}
	return embedding.NewCachedEmbedder(base, cfg.EmbedCacheSize), nil
}

// buildIndex returns nil when the index cannot be built; retrieval then
// serves every request from the keyword path.
func buildIndex(ctx context.Context, cfg *config.Config, products []*domain.Product, embedder embedding.Embedder, logger zerolog.Logger) vectorindex.Index {
	opts := vectorindex.BuildOptions{ANNThreshold: cfg.ANNThreshold}
	if cfg.UseQdrant() {
		client := vectorindex.NewQdrantClient(cfg.QdrantURL, cfg.QdrantAPIKey)
		if err := waitFor(ctx, "qdrant", client.Ping, logger); err != nil {
			logger.Warn().Err(err).Msg("qdrant not ready, semantic search disabled")
			return nil
		}
		opts.Qdrant = client
		opts.Collection = cfg.QdrantCollection
	}
	index, err := vectorindex.Build(ctx, products, embedder, opts, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("vector index build failed, semantic search disabled")
		return nil
	}
	return index
}

// waitFor retries ping with exponential backoff for up to startupWait.
func waitFor(ctx context.Context, name string, ping func(context.Context) error, logger zerolog.Logger) error {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 500 * time.Millisecond
	expo.MaxInterval = 5 * time.Second
	expo.MaxElapsedTime = startupWait

	attempt := 0
	op := func() error {
		attempt++
		if err := ping(ctx); err != nil {
			logger.Info().Str("dependency", name).Int("attempt", attempt).Err(err).Msg("waiting for dependency")
			return err
		}
		return nil
	}
	return backoff.Retry(op, backoff.WithContext(expo, ctx))
}

func checkSeed(ctx context.Context, pool *pgxpool.Pool, repo *repository.Repository, logger zerolog.Logger) error {
	count, err := repo.CountProducts(ctx)
	if err != nil {
		return fmt.Errorf("check products count: %w", err)
	}
	if count > 0 {
		logger.Info().Int("products", count).Msg("database already seeded, skipping")
		return nil
	}
	return seeds.Setup(ctx, pool, seeds.Generate(defaultSeedCount, 42), logger)
}
