// Package config はアプリケーション設定を環境変数と任意の設定ファイルから読み込みます。
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"tree_backend/internal/platform/db"
	"tree_backend/internal/platform/externalapi/huggingface"
	"tree_backend/internal/platform/redis"
)

// Config はアプリケーション全体の設定です。
type Config struct {
	Server      ServerConfig
	DB          db.Config
	Redis       redis.Config
	Cache       CacheConfig
	JWT         JWTConfig
	HuggingFace HuggingFaceConfig
	Gemini      GeminiConfig
	Vision      VisionConfig
	Scoring     ScoringConfig
}

type ServerConfig struct {
	Port            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type CacheConfig struct {
	CandidateTTL time.Duration
	FeatureTTL   time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// HuggingFaceConfig はデータセット取得の設定です。RateLimit回/RateIntervalに制限します。
type HuggingFaceConfig struct {
	huggingface.Config
	RateLimit    int
	RateInterval time.Duration
}

type GeminiConfig struct {
	Enabled bool
	Model   string
}

type VisionConfig struct {
	Enabled bool
}

// ScoringConfig は信頼度算出方式（basic / enhanced）とジッター幅です。
type ScoringConfig struct {
	Variant   string
	JitterMax float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", "*")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("db.driver", db.DriverPostgres)
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.migrate", false)
	v.SetDefault("db.timeout", "60s")

	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.candidate_ttl", "10m")
	v.SetDefault("cache.feature_ttl", "24h")

	v.SetDefault("jwt.expiration", "720h")

	v.SetDefault("huggingface.base_url", huggingface.DefaultBaseURL)
	v.SetDefault("huggingface.dataset", huggingface.DefaultDataset)
	v.SetDefault("huggingface.timeout", "15s")
	v.SetDefault("huggingface.rate_limit", 2)
	v.SetDefault("huggingface.rate_interval", "1s")

	v.SetDefault("gemini.enabled", true)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("vision.enabled", false)

	v.SetDefault("scoring.variant", "enhanced")
	v.SetDefault("scoring.jitter_max", 0.05)
}

// Load は設定を読み込みます。
// キー "db.host" は環境変数 DB_HOST に対応します。pathが空の場合はカレントディレクトリの
// config.yaml を探し、無ければ環境変数と既定値だけを使います。
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// 既存のデプロイ環境で使われている変数名
	_ = v.BindEnv("db.instance", "DB_INSTANCE", "INSTANCE_CONNECTION_NAME")
	_ = v.BindEnv("db.migrate", "DB_MIGRATE", "RUN_MIGRATIONS")
	_ = v.BindEnv("huggingface.token", "HUGGINGFACE_TOKEN", "HF_TOKEN")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			AllowedOrigins:  splitList(v.GetStringSlice("server.allowed_origins")),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		DB: db.Config{
			Driver:       v.GetString("db.driver"),
			User:         v.GetString("db.user"),
			Password:     v.GetString("db.password"),
			Name:         v.GetString("db.name"),
			Host:         v.GetString("db.host"),
			Port:         v.GetString("db.port"),
			SSLMode:      v.GetString("db.sslmode"),
			InstanceName: v.GetString("db.instance"),
			SQLitePath:   v.GetString("db.sqlite_path"),
			Migrate:      v.GetBool("db.migrate"),
			Timeout:      v.GetDuration("db.timeout"),
		},
		Redis: redis.Config{
			Host:     v.GetString("redis.host"),
			Port:     v.GetString("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			CandidateTTL: v.GetDuration("cache.candidate_ttl"),
			FeatureTTL:   v.GetDuration("cache.feature_ttl"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
		},
		HuggingFace: HuggingFaceConfig{
			Config: huggingface.Config{
				BaseURL: v.GetString("huggingface.base_url"),
				Dataset: v.GetString("huggingface.dataset"),
				Token:   v.GetString("huggingface.token"),
				Timeout: v.GetDuration("huggingface.timeout"),
			},
			RateLimit:    v.GetInt("huggingface.rate_limit"),
			RateInterval: v.GetDuration("huggingface.rate_interval"),
		},
		Gemini: GeminiConfig{
			Enabled: v.GetBool("gemini.enabled"),
			Model:   v.GetString("gemini.model"),
		},
		Vision: VisionConfig{
			Enabled: v.GetBool("vision.enabled"),
		},
		Scoring: ScoringConfig{
			Variant:   v.GetString("scoring.variant"),
			JitterMax: v.GetFloat64("scoring.jitter_max"),
		},
	}
	return cfg, nil
}

// splitList は "a,b" 形式の環境変数とYAMLのリストの両方を受け付けます。
func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
