package di

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tree_backend/internal/feature/identification/extractor"
	"tree_backend/internal/feature/identification/scoring"
	"tree_backend/internal/platform/cache"
	"tree_backend/internal/platform/config"
	infradb "tree_backend/internal/platform/db"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DB: infradb.Config{
			Driver:     infradb.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "tree.db"),
			Migrate:    true,
			Timeout:    time.Second,
		},
		JWT:     config.JWTConfig{Secret: "test-secret", Expiration: time.Hour},
		Scoring: config.ScoringConfig{Variant: "basic"},
	}
}

func TestNewScorer(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.ScoringConfig
		expected scoring.ConfidencePolicy
	}{
		{name: "success: basic", cfg: config.ScoringConfig{Variant: "basic"}, expected: scoring.BasicConfidence{}},
		{name: "success: enhanced", cfg: config.ScoringConfig{Variant: "enhanced", JitterMax: 0.05}, expected: scoring.EnhancedConfidence{}},
		{name: "success: unknown falls back to enhanced", cfg: config.ScoringConfig{Variant: "xyz"}, expected: scoring.EnhancedConfidence{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScorer(tt.cfg)
			assert.Equal(t, tt.expected, s.Policy())
		})
	}
}

func TestNewFeatureExtractor(t *testing.T) {
	t.Run("success: without redis", func(t *testing.T) {
		ex := NewFeatureExtractor(nil, config.CacheConfig{})
		assert.IsType(t, &extractor.Extractor{}, ex)
	})
	t.Run("success: with redis", func(t *testing.T) {
		rdb, _ := redismock.NewClientMock()
		ex := NewFeatureExtractor(rdb, config.CacheConfig{FeatureTTL: time.Hour})
		assert.IsType(t, &cache.FeatureCache{}, ex)
	})
}

func TestNewSpeciesStore(t *testing.T) {
	cfg := testConfig(t)
	db, err := infradb.OpenDB(cfg.DB)
	require.NoError(t, err)
	t.Cleanup(func() { infradb.Close(db) })

	rdb, _ := redismock.NewClientMock()
	assert.IsType(t, &cache.CachingSpeciesRepository{}, NewSpeciesStore(db, rdb, config.CacheConfig{}))
	assert.NotNil(t, NewSpeciesStore(db, nil, config.CacheConfig{}))
}

func TestNewModerator_Disabled(t *testing.T) {
	m, closeFn, err := NewModerator(context.Background(), config.VisionConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.NoError(t, closeFn())
}

func TestNewCareAdvisor_Disabled(t *testing.T) {
	assert.Nil(t, NewCareAdvisor(context.Background(), config.GeminiConfig{Enabled: false}))
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	assert.NotNil(t, app.Handlers.Device)
	assert.NotNil(t, app.Handlers.Identify)
	assert.NotNil(t, app.Handlers.Species)
	assert.NotNil(t, app.Handlers.History)
	assert.NotNil(t, app.Handlers.Readiness)
	assert.Nil(t, app.Redis)

	checks := app.readinessChecks()
	require.Contains(t, checks, "db")
	assert.NotContains(t, checks, "redis")
	assert.NoError(t, checks["db"](context.Background()))

	assert.NoError(t, app.Close())
}

func TestNewApp_UnsupportedDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.Driver = "oracle"

	app, err := NewApp(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, app)
}
