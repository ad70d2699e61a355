// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tree_backend/internal/feature/identification/adapters/catalog"
	speciesadapters "tree_backend/internal/feature/species/adapters"
	"tree_backend/internal/feature/species/adapters/gemini"
	speciesusecase "tree_backend/internal/feature/species/usecase"
	"tree_backend/internal/platform/cache"
	"tree_backend/internal/platform/config"
	"tree_backend/internal/platform/externalapi/huggingface"
	infrahttp "tree_backend/internal/platform/http"
	"tree_backend/internal/shared/ratelimiter"
)

// NewSpeciesStore creates the species repository.
// If Redis is available, it returns a Redis-cached implementation.
// Otherwise, it reads the database directly.
func NewSpeciesStore(db *gorm.DB, rdb *redis.Client, cfg config.CacheConfig) cache.SpeciesStore {
	repo := speciesadapters.NewSpeciesRepository(db)
	if rdb != nil {
		return cache.NewCachingSpeciesRepository(rdb, cfg.CandidateTTL, repo, "species")
	}
	return repo
}

// NewDatasetSource creates a Hugging Face dataset client with HTTP client.
func NewDatasetSource(cfg config.HuggingFaceConfig) *huggingface.DatasetRepository {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return huggingface.NewDatasetRepository(cfg.Config, httpClient)
}

// NewSeedUsecase creates a SeedUsecase that writes through the given store
// and falls back to the built-in catalogue.
func NewSeedUsecase(cfg config.HuggingFaceConfig, store speciesusecase.SpeciesWriter) *speciesusecase.SeedUsecase {
	rl := ratelimiter.NewRateLimiter(cfg.RateLimit, cfg.RateInterval)
	return speciesusecase.NewSeedUsecase(NewDatasetSource(cfg), catalog.Default(), store, rl)
}

// NewCareAdvisor creates the Gemini care advisor.
// It returns nil when disabled or when the client cannot be created, so the care endpoint answers 502.
func NewCareAdvisor(ctx context.Context, cfg config.GeminiConfig) speciesusecase.CareAdvisor {
	if !cfg.Enabled {
		return nil
	}
	advisor, err := gemini.NewGeminiCareAdvisor(ctx, cfg.Model)
	if err != nil {
		slog.Warn("Gemini unavailable. Running without care guides.", "error", err)
		return nil
	}
	return advisor
}
