// Package redis はRedisクライアントの生成を提供します。
package redis

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config はRedis接続設定です。Hostが空の場合Redisは使いません。
type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled はRedisが設定されているかを返します。
func (c Config) Enabled() bool {
	return c.Host != ""
}

// Addr は host:port 形式のアドレスを返します。
func (c Config) Addr() string {
	port := c.Port
	if port == "" {
		port = "6379"
	}
	return net.JoinHostPort(c.Host, port)
}

// NewRedisClient はクライアントを生成し、疎通を確認します。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	addr := cfg.Addr()
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
