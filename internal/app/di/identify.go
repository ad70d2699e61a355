package di

import (
	"context"

	"github.com/redis/go-redis/v9"

	"tree_backend/internal/feature/identification/adapters/vision"
	"tree_backend/internal/feature/identification/extractor"
	"tree_backend/internal/feature/identification/scoring"
	identusecase "tree_backend/internal/feature/identification/usecase"
	"tree_backend/internal/platform/cache"
	"tree_backend/internal/platform/config"
)

// NewScorer creates a Scorer for the configured confidence variant.
// A non-positive JitterMax disables jitter.
func NewScorer(cfg config.ScoringConfig) *scoring.Scorer {
	opts := []scoring.Option{scoring.WithPolicy(scoring.PolicyByName(cfg.Variant))}
	if cfg.JitterMax > 0 {
		opts = append(opts, scoring.WithJitter(cfg.JitterMax, nil))
	} else {
		opts = append(opts, scoring.WithoutJitter())
	}
	return scoring.NewScorer(opts...)
}

// NewFeatureExtractor creates the feature extractor.
// If Redis is available, it returns a Redis-cached implementation.
func NewFeatureExtractor(rdb *redis.Client, cfg config.CacheConfig) identusecase.FeatureExtractor {
	ex := extractor.New()
	if rdb != nil {
		return cache.NewFeatureCache(rdb, cfg.FeatureTTL, ex, "features")
	}
	return ex
}

// NewModerator creates the Vision SafeSearch moderator.
// It returns a nil moderator and a no-op closer when disabled.
func NewModerator(ctx context.Context, cfg config.VisionConfig) (identusecase.ImageModerator, func() error, error) {
	if !cfg.Enabled {
		return nil, func() error { return nil }, nil
	}
	m, err := vision.NewSafeSearchModerator(ctx)
	if err != nil {
		return nil, nil, err
	}
	return m, m.Close, nil
}
