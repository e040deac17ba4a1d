package main

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lifeos/internal/config"
	dbRedis "github.com/kailas-cloud/lifeos/internal/db/redis"
	"github.com/kailas-cloud/lifeos/internal/domain"
	"github.com/kailas-cloud/lifeos/internal/metrics"
	budgetrepo "github.com/kailas-cloud/lifeos/internal/repository/budget"
	"github.com/kailas-cloud/lifeos/internal/repository/embcache"
	openaiEmb "github.com/kailas-cloud/lifeos/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/lifeos/internal/usecase/embedding"
)

// openStore connects to Redis/Valkey and waits until it answers.
func openStore(ctx context.Context, cfg *config.Config) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Password:   cfg.Database.Password,
		DB:         cfg.Database.DB,
		ClientName: "lifeos",
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}

	timeout := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// newBudget returns the shared token budget, or nil when no limit is configured.
func newBudget(ctx context.Context, cfg *config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger) *embeddinguc.BudgetTracker {
	b := cfg.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}
	action := embeddinguc.BudgetActionWarn
	if b.Action == "reject" {
		action = embeddinguc.BudgetActionReject
	}
	tracker := embeddinguc.NewBudgetTracker(cfg.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger)
	return tracker.WithStore(ctx, budgetrepo.New(store))
}

// buildEmbedder assembles the decorator chain, outermost first:
// instruction -> instrumented (budget) -> cache -> rate limit -> timeout -> provider.
// The instruction sits above the cache so it is part of the cache key.
// Rate limit and timeout sit below the cache so hits never wait or time out.
func buildEmbedder(
	cfg *config.EmbeddingConfig,
	instruction string,
	store *dbRedis.Store,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		User:       "lifeos",
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	embedder = embeddinguc.NewTimeoutEmbedder(embedder, cfg.Timeout())
	if cfg.RateLimitRPS > 0 {
		embedder = embeddinguc.NewRateLimitedEmbedder(embedder, cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if store != nil {
		embedder = embcache.New(embedder, store, embcache.Config{
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			TTL:        cfg.CacheTTL(),
			Lookups:    metrics.EmbeddingCacheTotal,
		}, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, budget, logger)

	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// embeddingHealthChecker adapts domain.Embedder to health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func (h embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// originChecker accepts WebSocket upgrades from the configured CORS origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
