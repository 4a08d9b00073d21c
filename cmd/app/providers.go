package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/skincare-api/internal/domain/recommendation"
	"github.com/yanqian/skincare-api/internal/domain/skinanalysis"
	"github.com/yanqian/skincare-api/internal/infra/catalogrepo"
	"github.com/yanqian/skincare-api/internal/infra/config"
	"github.com/yanqian/skincare-api/internal/infra/imagestore"
	"github.com/yanqian/skincare-api/internal/infra/mlbackend"
	"github.com/yanqian/skincare-api/internal/infra/trendstore"
)

func provideRecommendationConfig(cfg *config.Config) recommendation.Config {
	return recommendation.Config{
		TrendingLimit: cfg.Trends.DefaultLimit,
	}
}

func provideAnalysisConfig(cfg *config.Config) skinanalysis.Config {
	return skinanalysis.Config{
		MaxImageBytes: cfg.Analysis.MaxImageBytes,
		ArchiveImages: cfg.Storage.Enabled,
	}
}

// provideCatalog loads products once at startup. Postgres wins over a file
// path; any failure falls back to the embedded catalog.
func provideCatalog(cfg *config.Config, logger *slog.Logger) (*recommendation.Catalog, error) {
	logger = logger.With("component", "catalog")
	if source, cleanup := catalogSource(cfg, logger); source != nil {
		defer cleanup()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		products, err := source.LoadProducts(ctx)
		if err != nil {
			logger.Error("failed to load catalog, using embedded catalog", "error", err)
		} else if catalog, err := recommendation.NewCatalog(products); err != nil {
			logger.Error("catalog rejected, using embedded catalog", "error", err)
		} else {
			logger.Info("catalog loaded", "products", catalog.Len())
			return catalog, nil
		}
	}
	catalog, err := recommendation.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	logger.Info("embedded catalog loaded", "products", catalog.Len())
	return catalog, nil
}

func catalogSource(cfg *config.Config, logger *slog.Logger) (recommendation.CatalogSource, func()) {
	noop := func() {}
	if dsn := strings.TrimSpace(cfg.Catalog.Postgres.DSN); dsn != "" {
		pool, err := newPostgresPool(cfg.Catalog.Postgres)
		if err != nil {
			logger.Error("catalog postgres unavailable", "error", err)
		} else {
			logger.Info("catalog postgres source enabled")
			return catalogrepo.NewPostgresRepository(pool), pool.Close
		}
	}
	if path := strings.TrimSpace(cfg.Catalog.Path); path != "" {
		logger.Info("catalog file source enabled", "path", path)
		return catalogrepo.NewFileSource(path), noop
	}
	logger.Info("catalog source not configured")
	return nil, noop
}

func newPostgresPool(pgCfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(strings.TrimSpace(pgCfg.DSN))
	if err != nil {
		return nil, err
	}
	if pgCfg.MaxConns > 0 {
		poolConfig.MaxConns = pgCfg.MaxConns
	}
	if pgCfg.MinConns > 0 {
		poolConfig.MinConns = pgCfg.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func provideTrendStore(cfg *config.Config, logger *slog.Logger) (recommendation.TrendStore, func()) {
	noop := func() {}
	if !cfg.Trends.Redis.Enabled {
		return trendstore.NewMemoryStore(), noop
	}
	opt, err := buildValkeyOptions(cfg.Trends.Redis)
	if err != nil {
		logger.Error("invalid valkey configuration, falling back to memory trend store", "error", err)
		return trendstore.NewMemoryStore(), noop
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, falling back to memory trend store", "error", err)
		return trendstore.NewMemoryStore(), noop
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, falling back to memory trend store", "error", err)
		client.Close()
		return trendstore.NewMemoryStore(), noop
	}
	logger.Info("valkey trend store enabled", "addr", cfg.Trends.Redis.Addr)
	return trendstore.NewValkeyStore(client, cfg.Trends.Redis.Prefix), client.Close
}

func buildValkeyOptions(redisCfg config.RedisConfig) (valkey.ClientOption, error) {
	if strings.Contains(redisCfg.Addr, "://") {
		return valkey.ParseURL(redisCfg.Addr)
	}
	return valkey.ClientOption{InitAddress: []string{redisCfg.Addr}}, nil
}

func provideMLClient(cfg *config.Config, logger *slog.Logger) *mlbackend.Client {
	return mlbackend.NewClient(mlbackend.Options{
		BaseURL:          cfg.Analysis.BackendURL,
		Timeout:          cfg.Analysis.Timeout,
		FailureThreshold: cfg.Analysis.Breaker.FailureThreshold,
		OpenTimeout:      cfg.Analysis.Breaker.OpenTimeout,
		HalfOpenRequests: cfg.Analysis.Breaker.HalfOpenRequests,
	}, logger)
}

func provideImageStorage(cfg *config.Config, logger *slog.Logger) skinanalysis.ImageStorage {
	if !cfg.Storage.Enabled {
		return imagestore.NewMemoryStorage()
	}
	storage, err := imagestore.NewR2Storage(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.Region,
		logger,
	)
	if err != nil {
		logger.Error("failed to initialize r2 storage, archiving to memory", "error", err)
		return imagestore.NewMemoryStorage()
	}
	logger.Info("r2 image archive enabled", "bucket", cfg.Storage.Bucket)
	return storage
}
