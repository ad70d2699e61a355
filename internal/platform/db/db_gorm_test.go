package db

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBuildDSN(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cfg      Config
		expected string
	}{
		{
			name: "success: tcp",
			cfg: Config{
				Driver: DriverPostgres, User: "testuser", Password: "testpass", Name: "testdb",
				Host: "localhost", Port: "5432",
			},
			expected: "host=localhost user=testuser password=testpass dbname=testdb port=5432 sslmode=disable TimeZone=UTC",
		},
		{
			name: "success: cloud sql socket takes precedence",
			cfg: Config{
				Driver: DriverPostgres, User: "testuser", Password: "testpass", Name: "testdb",
				Host: "localhost", Port: "5432", InstanceName: "project:region:instance", SSLMode: "require",
			},
			expected: "host=/cloudsql/project:region:instance user=testuser password=testpass dbname=testdb sslmode=require TimeZone=UTC",
		},
		{
			name:     "success: sqlite file",
			cfg:      Config{Driver: DriverSQLite, SQLitePath: "trees.db"},
			expected: "trees.db",
		},
		{
			name:     "success: sqlite in memory",
			cfg:      Config{Driver: DriverSQLite},
			expected: "file::memory:?cache=shared",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, BuildDSN(tt.cfg))
		})
	}
}

// TestConnectWithRetry_SuccessOnFirstTry は初回接続成功時にリトライせずDBを返すことを検証します。
func TestConnectWithRetry_SuccessOnFirstTry(t *testing.T) {
	t.Parallel()

	mockDB := &gorm.DB{}
	opener := func(dsn string) (*gorm.DB, error) {
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", 5*time.Second, opener)
	require.NoError(t, err)
	assert.Same(t, mockDB, db)
}

// TestConnectWithRetry_RetriesOnFailure は接続失敗時にリトライして最終的に成功することを検証します。
func TestConnectWithRetry_RetriesOnFailure(t *testing.T) {
	// retryIntervalを書き換えるため並列実行しない
	orig := retryInterval
	retryInterval = 10 * time.Millisecond
	t.Cleanup(func() { retryInterval = orig })

	mockDB := &gorm.DB{}
	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		if attemptCount < 3 {
			return nil, errors.New("connection refused")
		}
		return mockDB, nil
	}

	db, err := ConnectWithRetry("test-dsn", time.Second, opener)
	require.NoError(t, err)
	assert.Same(t, mockDB, db)
	assert.Equal(t, 3, attemptCount)
}

// TestConnectWithRetry_TimeoutAfterRetries はタイムアウト後にエラーが返されることを検証します。
func TestConnectWithRetry_TimeoutAfterRetries(t *testing.T) {
	t.Parallel()

	attemptCount := 0
	opener := func(dsn string) (*gorm.DB, error) {
		attemptCount++
		return nil, errors.New("connection refused")
	}

	_, err := ConnectWithRetry("test-dsn", 100*time.Millisecond, opener)
	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 1, attemptCount)
}

func TestOpenDB_SQLiteMigrates(t *testing.T) {
	t.Parallel()

	db, err := OpenDB(Config{Driver: DriverSQLite, SQLitePath: ":memory:", Migrate: true, Timeout: time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	for _, table := range []string{"tree_species", "identification_history", "favorites"} {
		assert.True(t, db.Migrator().HasTable(table), "table %s should exist", table)
	}
}

func TestOpenDB_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := OpenDB(Config{Driver: "mysql"})
	assert.ErrorContains(t, err, "unsupported db driver")
}
