// internal/bootstrap/bootstrap.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"itinerary-workers/internal/common/config"
	"itinerary-workers/internal/common/database"
	"itinerary-workers/internal/common/logger"
	"itinerary-workers/internal/common/metrics"
	"itinerary-workers/internal/planner/destinations"
	"itinerary-workers/internal/planner/fallback"
	"itinerary-workers/internal/planner/llm"
	"itinerary-workers/internal/planner/orchestrator"
	"itinerary-workers/internal/planner/pipeline"
	"itinerary-workers/internal/planner/service"
	"itinerary-workers/internal/planner/store"
	"itinerary-workers/internal/planner/weather"
)

// Options control how hard New tries to reach backing services.
type Options struct {
	ConnectAttempts int
	ConnectDelay    time.Duration
	// SkipStores leaves plan persistence out even when backends are configured.
	SkipStores bool
}

// Runtime holds everything the planner needs, built from one config.
type Runtime struct {
	Service      *service.Service
	Orchestrator *orchestrator.Orchestrator
	Stores       *store.FanOut
	Redis        *database.RedisClient
	Postgres     *database.PostgresClient
	Elastic      *database.ElasticsearchClient

	logger logger.Logger
}

// New connects the configured backends and assembles the planner service. Backends that are
// not configured are skipped; configured ones that cannot be reached are an error.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*Runtime, error) {
	if opts.ConnectAttempts < 1 {
		opts.ConnectAttempts = 1
	}
	if opts.ConnectDelay <= 0 {
		opts.ConnectDelay = 2 * time.Second
	}

	rt := &Runtime{logger: log}
	recorder := metrics.NewRecorder()
	var stores []store.PlanStore
	var cache redis.Cmdable

	if cfg.Database.Redis.Enabled() {
		err := retryWithBackoff(ctx, opts, log, "Redis connection", func() error {
			c, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := c.Ping(ctx); err != nil {
				_ = c.Close()
				return err
			}
			rt.Redis = c
			return nil
		})
		if err != nil {
			return nil, err
		}
		cache = rt.Redis.Client
		if !opts.SkipStores {
			stores = append(stores, store.NewRedisStore(rt.Redis.Client, time.Duration(cfg.Database.Redis.PlanTTL)*time.Second))
		}
	}

	if cfg.Database.Postgres.Enabled() && !opts.SkipStores {
		err := retryWithBackoff(ctx, opts, log, "PostgreSQL connection", func() error {
			c, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := c.Ping(ctx); err != nil {
				_ = c.Close()
				return err
			}
			rt.Postgres = c
			return nil
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		stores = append(stores, store.NewPostgresStore(rt.Postgres.GetDB()))
	}

	if cfg.Database.Elasticsearch.Enabled() && !opts.SkipStores {
		err := retryWithBackoff(ctx, opts, log, "Elasticsearch connection", func() error {
			c, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := c.Ping(ctx); err != nil {
				return err
			}
			if err := c.EnsureIndex(ctx, cfg.Database.Elasticsearch.Index, store.PlanIndexMapping); err != nil {
				return err
			}
			rt.Elastic = c
			return nil
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		stores = append(stores, store.NewElasticStore(rt.Elastic.Client, cfg.Database.Elasticsearch.Index))
	}

	generator, err := llm.New(cfg.APIs.GenAI)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("llm provider: %w", err)
	}

	catalog := destinations.Default()
	rt.Orchestrator = orchestrator.New(
		orchestrator.ConfigFrom(cfg.Generation, cfg.APIs.GenAI.Temperature),
		generator,
		fallback.New(catalog),
		pipeline.New(recorder),
		recorder,
		log,
	)

	deps := service.Dependencies{
		Catalog:      catalog,
		Orchestrator: rt.Orchestrator,
		Weather:      weather.NewClient(cfg.APIs.Weather, cache, catalog, log),
		Links: service.LinkOptions{
			PartnerID:      cfg.Links.PartnerID,
			ImagesDisabled: cfg.Links.ImagesDisabled,
			Denylist:       cfg.Links.Denylist,
		},
		Logger: log,
	}
	if len(stores) > 0 {
		rt.Stores = store.NewFanOut(5*time.Second, recorder, log, stores...)
		deps.Store = rt.Stores
	}
	rt.Service = service.New(deps)

	log.Info("Planner runtime ready", map[string]interface{}{
		"llmProvider": cfg.APIs.GenAI.Provider,
		"planStores":  len(stores),
		"concurrency": cfg.Generation.Concurrency,
	})
	return rt, nil
}

// Ready pings every connected backend.
func (r *Runtime) Ready(ctx context.Context) error {
	var errs []error
	if r.Redis != nil {
		if err := r.Redis.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if r.Postgres != nil {
		if err := r.Postgres.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("postgres: %w", err))
		}
	}
	if r.Elastic != nil {
		if err := r.Elastic.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("elasticsearch: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close drains the orchestrator and pending plan writes, then releases connections.
func (r *Runtime) Close() {
	if r.Orchestrator != nil {
		r.Orchestrator.Close()
	}
	if r.Service != nil {
		r.Service.Flush()
	}
	if r.Postgres != nil {
		if err := r.Postgres.Close(); err != nil {
			r.logger.Warn("Error closing PostgreSQL", map[string]interface{}{"error": err.Error()})
		}
	}
	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			r.logger.Warn("Error closing Redis", map[string]interface{}{"error": err.Error()})
		}
	}
}

func retryWithBackoff(ctx context.Context, opts Options, log logger.Logger, operation string, fn func() error) error {
	var err error
	delay := opts.ConnectDelay

	for i := 0; i < opts.ConnectAttempts; i++ {
		if err = fn(); err == nil {
			log.Info(operation+" established", nil)
			return nil
		}
		if i == opts.ConnectAttempts-1 {
			break
		}

		log.Warn(operation+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxAttempts": opts.ConnectAttempts,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s: %w", operation, ctx.Err())
		}
		delay *= 2
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operation, opts.ConnectAttempts, err)
}
