package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	identity "tree_backend/internal/feature/identification/domain/entity"
	"tree_backend/internal/feature/species/usecase"
)

// mockSpeciesStore はテスト用のSpeciesStoreモック実装です。
type mockSpeciesStore struct {
	listCandidatesFn func(ctx context.Context) ([]identity.CandidateSpecies, error)
	listFn           func(ctx context.Context, limit int) ([]identity.CandidateSpecies, error)
	searchFn         func(ctx context.Context, query string, limit int) ([]identity.CandidateSpecies, error)
	findByIDFn       func(ctx context.Context, id uint) (*identity.CandidateSpecies, error)
	upsertBatchFn    func(ctx context.Context, species []identity.CandidateSpecies) error
}

func (m *mockSpeciesStore) ListCandidates(ctx context.Context) ([]identity.CandidateSpecies, error) {
	return m.listCandidatesFn(ctx)
}

func (m *mockSpeciesStore) List(ctx context.Context, limit int) ([]identity.CandidateSpecies, error) {
	return m.listFn(ctx, limit)
}

func (m *mockSpeciesStore) Search(ctx context.Context, query string, limit int) ([]identity.CandidateSpecies, error) {
	return m.searchFn(ctx, query, limit)
}

func (m *mockSpeciesStore) FindByID(ctx context.Context, id uint) (*identity.CandidateSpecies, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockSpeciesStore) UpsertBatch(ctx context.Context, species []identity.CandidateSpecies) error {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, species)
	}
	return nil
}

var maple = identity.CandidateSpecies{
	ID:          2,
	SpeciesName: "Acer saccharum",
	CommonName:  "Sugar Maple",
	Family:      "Sapindaceae",
	LeafType:    identity.TreeDeciduous,
	Declared: identity.DeclaredFeatures{
		LeafShape:      identity.LeafLobed,
		DominantColors: []identity.ColorClass{identity.ColorGreen, identity.ColorRed},
	},
}

func TestNewCachingSpeciesRepository_Defaults(t *testing.T) {
	t.Parallel()

	repo := NewCachingSpeciesRepository(nil, 0, &mockSpeciesStore{}, "")
	assert.Equal(t, 10*time.Minute, repo.ttl)
	assert.Equal(t, "species", repo.namespace)

	repo = NewCachingSpeciesRepository(nil, time.Minute, &mockSpeciesStore{}, "trees")
	assert.Equal(t, time.Minute, repo.ttl)
	assert.Equal(t, "trees", repo.namespace)
}

func TestCachingSpeciesRepository_ListCandidates_NilRedis(t *testing.T) {
	t.Parallel()

	calls := 0
	inner := &mockSpeciesStore{
		listCandidatesFn: func(ctx context.Context) ([]identity.CandidateSpecies, error) {
			calls++
			return []identity.CandidateSpecies{maple}, nil
		},
	}
	repo := NewCachingSpeciesRepository(nil, time.Minute, inner, "species")

	for range 2 {
		got, err := repo.ListCandidates(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 2, calls, "without redis every call reaches the store")
}

func TestCachingSpeciesRepository_ListCandidates_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached, err := json.Marshal([]identity.CandidateSpecies{maple})
	require.NoError(t, err)
	mock.ExpectGet("species:candidates").SetVal(string(cached))

	inner := &mockSpeciesStore{
		listCandidatesFn: func(ctx context.Context) ([]identity.CandidateSpecies, error) {
			t.Error("inner repository should not be called on cache hit")
			return nil, nil
		},
	}

	repo := NewCachingSpeciesRepository(rdb, 5*time.Minute, inner, "species")
	got, err := repo.ListCandidates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []identity.CandidateSpecies{maple}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingSpeciesRepository_Search_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expected := []identity.CandidateSpecies{maple}
	expectedJSON, err := json.Marshal(expected)
	require.NoError(t, err)

	key := "species:search:" + queryDigest("sugar maple") + ":20"
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockSpeciesStore{
		searchFn: func(ctx context.Context, query string, limit int) ([]identity.CandidateSpecies, error) {
			assert.Equal(t, "Sugar Maple", query)
			return expected, nil
		},
	}

	repo := NewCachingSpeciesRepository(rdb, 5*time.Minute, inner, "species")
	got, err := repo.Search(context.Background(), "Sugar Maple", 20)
	require.NoError(t, err)
	assert.Equal(t, expected, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachingSpeciesRepository_FindByID(t *testing.T) {
	t.Parallel()

	t.Run("success: corrupted entry replaced", func(t *testing.T) {
		t.Parallel()
		rdb, mock := redismock.NewClientMock()
		defer func() { _ = rdb.Close() }()

		expectedJSON, err := json.Marshal(&maple)
		require.NoError(t, err)
		mock.ExpectGet("species:id:2").SetVal("invalid json")
		mock.ExpectDel("species:id:2").SetVal(1)
		mock.ExpectSet("species:id:2", expectedJSON, 5*time.Minute).SetVal("OK")

		inner := &mockSpeciesStore{
			findByIDFn: func(ctx context.Context, id uint) (*identity.CandidateSpecies, error) {
				m := maple
				return &m, nil
			},
		}
		repo := NewCachingSpeciesRepository(rdb, 5*time.Minute, inner, "species")
		got, err := repo.FindByID(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, "Sugar Maple", got.CommonName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: not found is not cached", func(t *testing.T) {
		t.Parallel()
		rdb, mock := redismock.NewClientMock()
		defer func() { _ = rdb.Close() }()

		mock.ExpectGet("species:id:99").RedisNil()

		inner := &mockSpeciesStore{
			findByIDFn: func(ctx context.Context, id uint) (*identity.CandidateSpecies, error) {
				return nil, usecase.ErrSpeciesNotFound
			},
		}
		repo := NewCachingSpeciesRepository(rdb, 5*time.Minute, inner, "species")
		got, err := repo.FindByID(context.Background(), 99)
		assert.ErrorIs(t, err, usecase.ErrSpeciesNotFound)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCachingSpeciesRepository_UpsertBatch(t *testing.T) {
	t.Parallel()

	t.Run("success: namespace invalidated", func(t *testing.T) {
		t.Parallel()
		rdb, mock := redismock.NewClientMock()
		defer func() { _ = rdb.Close() }()

		mock.ExpectScan(0, "species:*", 200).SetVal([]string{"species:candidates", "species:id:2"}, 7)
		mock.ExpectDel("species:candidates", "species:id:2").SetVal(2)
		mock.ExpectScan(7, "species:*", 200).SetVal([]string{"species:list:50"}, 0)
		mock.ExpectDel("species:list:50").SetVal(1)

		repo := NewCachingSpeciesRepository(rdb, 5*time.Minute, &mockSpeciesStore{}, "species")
		require.NoError(t, repo.UpsertBatch(context.Background(), []identity.CandidateSpecies{maple}))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error: inner failure skips invalidation", func(t *testing.T) {
		t.Parallel()
		rdb, mock := redismock.NewClientMock()
		defer func() { _ = rdb.Close() }()

		expectedErr := errors.New("upsert error")
		inner := &mockSpeciesStore{
			upsertBatchFn: func(ctx context.Context, species []identity.CandidateSpecies) error {
				return expectedErr
			},
		}
		repo := NewCachingSpeciesRepository(rdb, 5*time.Minute, inner, "species")
		assert.ErrorIs(t, repo.UpsertBatch(context.Background(), []identity.CandidateSpecies{maple}), expectedErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("success: empty batch touches nothing", func(t *testing.T) {
		t.Parallel()
		rdb, mock := redismock.NewClientMock()
		defer func() { _ = rdb.Close() }()

		repo := NewCachingSpeciesRepository(rdb, 5*time.Minute, &mockSpeciesStore{}, "species")
		require.NoError(t, repo.UpsertBatch(context.Background(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestQueryDigest(t *testing.T) {
	t.Parallel()

	assert.Equal(t, queryDigest("mango tree"), queryDigest("Mango TREE"))
	assert.Len(t, queryDigest(""), 64)

	// 空白・記号の違いは別のキーになる
	queries := []string{"mango tree", "mango_tree", "mango*tree", "mango:tree", "mangotree"}
	seen := make(map[string]string, len(queries))
	for _, q := range queries {
		d := queryDigest(q)
		if prev, ok := seen[d]; ok {
			t.Fatalf("queries %q and %q share a cache key", prev, q)
		}
		seen[d] = q
	}
}

func TestCachingSpeciesRepository_Search_DistinctQueriesDoNotShareEntries(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	spaced := []identity.CandidateSpecies{maple}
	underscored := []identity.CandidateSpecies{}
	spacedJSON, err := json.Marshal(spaced)
	require.NoError(t, err)
	underscoredJSON, err := json.Marshal(underscored)
	require.NoError(t, err)

	spacedKey := "species:search:" + queryDigest("mango tree") + ":20"
	underscoredKey := "species:search:" + queryDigest("mango_tree") + ":20"
	mock.ExpectGet(spacedKey).RedisNil()
	mock.ExpectSet(spacedKey, spacedJSON, 5*time.Minute).SetVal("OK")
	mock.ExpectGet(underscoredKey).RedisNil()
	mock.ExpectSet(underscoredKey, underscoredJSON, 5*time.Minute).SetVal("OK")

	var calls []string
	inner := &mockSpeciesStore{
		searchFn: func(ctx context.Context, query string, limit int) ([]identity.CandidateSpecies, error) {
			calls = append(calls, query)
			if query == "mango tree" {
				return spaced, nil
			}
			return underscored, nil
		},
	}

	repo := NewCachingSpeciesRepository(rdb, 5*time.Minute, inner, "species")
	got, err := repo.Search(context.Background(), "mango tree", 20)
	require.NoError(t, err)
	assert.Equal(t, spaced, got)

	got, err = repo.Search(context.Background(), "mango_tree", 20)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.Equal(t, []string{"mango tree", "mango_tree"}, calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
