package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tree_backend/internal/app/router"
	devicehandler "tree_backend/internal/feature/device/transport/handler"
	deviceusecase "tree_backend/internal/feature/device/usecase"
	historyadapters "tree_backend/internal/feature/history/adapters"
	historyhandler "tree_backend/internal/feature/history/transport/handler"
	historyusecase "tree_backend/internal/feature/history/usecase"
	"tree_backend/internal/feature/identification/adapters/catalog"
	identhandler "tree_backend/internal/feature/identification/transport/handler"
	identusecase "tree_backend/internal/feature/identification/usecase"
	specieshandler "tree_backend/internal/feature/species/transport/handler"
	speciesusecase "tree_backend/internal/feature/species/usecase"
	"tree_backend/internal/platform/config"
	infradb "tree_backend/internal/platform/db"
	"tree_backend/internal/platform/http/handler"
	jwtmw "tree_backend/internal/platform/jwt"
	infraredis "tree_backend/internal/platform/redis"
)

// App は組み立て済みのハンドラーと、終了時に解放するリソースを保持します。
type App struct {
	Handlers router.Handlers
	DB       *gorm.DB
	Redis    *redis.Client

	closers []func() error
}

// NewApp は設定から全コンポーネントを組み立てます。
// Redisに接続できない場合はキャッシュなしで動作します。
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := infradb.OpenDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	app := &App{DB: db}
	app.closers = append(app.closers, func() error {
		infradb.Close(db)
		return nil
	})

	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			app.Redis = rdb
			app.closers = append(app.closers, rdb.Close)
		}
	}

	moderator, closeModerator, err := NewModerator(ctx, cfg.Vision)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to create moderator: %w", err)
	}
	app.closers = append(app.closers, closeModerator)

	if cfg.JWT.Secret == "" {
		slog.Warn("JWT_SECRET is not set. Device tokens will be rejected.")
	}

	// Repository
	speciesStore := NewSpeciesStore(db, app.Redis, cfg.Cache)
	historyRepo := historyadapters.NewHistoryRepository(db)
	favoriteRepo := historyadapters.NewFavoriteRepository(db)

	// Usecase
	historyUC := historyusecase.NewHistoryUsecase(historyRepo, favoriteRepo)
	identifyUC := identusecase.NewIdentifyUsecase(
		NewFeatureExtractor(app.Redis, cfg.Cache),
		NewScorer(cfg.Scoring),
		speciesStore,
		catalog.Default(),
		moderator,
		historyUC,
	)
	speciesUC := speciesusecase.NewSpeciesUsecase(speciesStore, NewCareAdvisor(ctx, cfg.Gemini))
	deviceUC := deviceusecase.NewDeviceUsecase(jwtmw.NewGenerator(cfg.JWT.Secret, cfg.JWT.Expiration))

	// Handler
	app.Handlers = router.Handlers{
		Device:    devicehandler.NewDeviceHandler(deviceUC),
		Identify:  identhandler.NewIdentifyHandler(identifyUC),
		Species:   specieshandler.NewSpeciesHandler(speciesUC),
		History:   historyhandler.NewHistoryHandler(historyUC),
		Readiness: handler.NewReadiness(app.readinessChecks(), 0),
	}
	return app, nil
}

func (a *App) readinessChecks() map[string]handler.Checker {
	checks := map[string]handler.Checker{
		"db": func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.Redis != nil {
		rdb := a.Redis
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}

// Close は生成順と逆順にリソースを解放します。
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
