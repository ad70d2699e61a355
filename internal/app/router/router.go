// Package router はHTTPルーティングを定義します。
package router

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	devicehandler "tree_backend/internal/feature/device/transport/handler"
	historyhandler "tree_backend/internal/feature/history/transport/handler"
	identhandler "tree_backend/internal/feature/identification/transport/handler"
	specieshandler "tree_backend/internal/feature/species/transport/handler"
	"tree_backend/internal/platform/http/handler"
	jwtmw "tree_backend/internal/platform/jwt"
)

// Handlers はルーターに登録するハンドラーの集合です。
type Handlers struct {
	Device    *devicehandler.DeviceHandler
	Identify  *identhandler.IdentifyHandler
	Species   *specieshandler.SpeciesHandler
	History   *historyhandler.HistoryHandler
	Readiness *handler.Readiness
}

// Options はルーター全体に関わる設定です。
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	r.OPTIONS("/healthz", handler.Health)
	if h.Readiness != nil {
		r.GET("/readyz", h.Readiness.Ready)
	}

	v1 := r.Group("/v1")
	// 端末登録（デバイストークン発行）
	v1.POST("/devices", h.Device.Register)

	// デバイストークン必須のルート
	auth := v1.Group("/")
	auth.Use(jwtmw.DeviceRequired(opts.JWTSecret))
	{
		auth.POST("/identify", h.Identify.Identify)

		auth.GET("/species", h.Species.List)
		auth.GET("/species/:id", h.Species.Get)
		auth.POST("/species/:id/care", h.Species.Care)

		auth.GET("/history", h.History.List)
		auth.DELETE("/history/:id", h.History.Delete)

		auth.GET("/favorites", h.History.ListFavorites)
		auth.POST("/favorites", h.History.AddFavorite)
		auth.DELETE("/favorites/:id", h.History.RemoveFavorite)
	}

	return r
}

// corsConfig は許可オリジンが空または "*" を含む場合、全オリジンを許可します。
func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AddAllowHeaders("Authorization")
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
