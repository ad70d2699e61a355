// Package db はGORMによるデータベース接続とマイグレーションを提供します。
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	historyadapters "tree_backend/internal/feature/history/adapters"
	speciesadapters "tree_backend/internal/feature/species/adapters"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// retryInterval は接続リトライの間隔です。
var retryInterval = 3 * time.Second

// Config はデータベース接続設定です。
type Config struct {
	Driver       string // postgres または sqlite
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	SSLMode      string
	InstanceName string // Cloud SQLのインスタンス接続名。設定時はUnixソケット経由で接続
	SQLitePath   string
	Migrate      bool
	Timeout      time.Duration
}

// Opener はDSNからDB接続を開く関数です。テストで差し替えます。
type Opener func(dsn string) (*gorm.DB, error)

// BuildDSN は設定から接続文字列を組み立てます。
// sqliteの場合はファイルパス、postgresの場合はkey=value形式のDSNを返します。
func BuildDSN(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		if cfg.SQLitePath == "" {
			return "file::memory:?cache=shared"
		}
		return cfg.SQLitePath
	}

	host := cfg.Host
	port := cfg.Port
	if cfg.InstanceName != "" {
		host = "/cloudsql/" + cfg.InstanceName
		port = ""
	}
	sslmode := cfg.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	parts := []string{
		"host=" + host,
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"dbname=" + cfg.Name,
	}
	if port != "" {
		parts = append(parts, "port="+port)
	}
	parts = append(parts, "sslmode="+sslmode, "TimeZone=UTC")
	return strings.Join(parts, " ")
}

// ConnectWithRetry はtimeoutに達するまで一定間隔で接続を再試行します。
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("DB接続に失敗、再試行します", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

// dialectorOpener はドライバー名に対応するOpenerを返します。
func dialectorOpener(driver string) (Opener, error) {
	gcfg := &gorm.Config{TranslateError: true}
	switch driver {
	case DriverPostgres, "":
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(postgres.Open(dsn), gcfg)
		}, nil
	case DriverSQLite:
		return func(dsn string) (*gorm.DB, error) {
			return gorm.Open(sqlite.Open(dsn), gcfg)
		}, nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

// OpenDB は設定に従って接続し、必要であればマイグレーションを実行します。
func OpenDB(cfg Config) (*gorm.DB, error) {
	open, err := dialectorOpener(cfg.Driver)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	db, err := ConnectWithRetry(BuildDSN(cfg), timeout, open)
	if err != nil {
		return nil, err
	}
	if cfg.Driver == DriverSQLite {
		// SQLiteは単一ライターのため接続を1本に絞る
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if cfg.Migrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	slog.Info("DB接続完了", "driver", cfg.Driver, "migrate", cfg.Migrate)
	return db, nil
}

// Migrate はアプリケーションのテーブルを作成・更新します。
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("db is nil")
	}
	if err := db.AutoMigrate(
		&speciesadapters.SpeciesModel{},
		&historyadapters.HistoryModel{},
		&historyadapters.FavoriteModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Close は下層の接続プールを閉じます。
func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		slog.Warn("DB接続の取得に失敗", "error", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Warn("DB接続のクローズに失敗", "error", err)
	}
}
