// Package cache provides Redis caching decorators for repositories and the feature extractor.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	identity "tree_backend/internal/feature/identification/domain/entity"
	identusecase "tree_backend/internal/feature/identification/usecase"
	"tree_backend/internal/feature/species/usecase"
)

// SpeciesStore is the repository surface the caching decorator wraps.
type SpeciesStore interface {
	ListCandidates(ctx context.Context) ([]identity.CandidateSpecies, error)
	List(ctx context.Context, limit int) ([]identity.CandidateSpecies, error)
	Search(ctx context.Context, query string, limit int) ([]identity.CandidateSpecies, error)
	FindByID(ctx context.Context, id uint) (*identity.CandidateSpecies, error)
	UpsertBatch(ctx context.Context, species []identity.CandidateSpecies) error
}

// CachingSpeciesRepository decorates a SpeciesStore with Redis caching.
// Every read is cached under the namespace and every write drops the whole namespace,
// since the catalogue is small and rarely written.
type CachingSpeciesRepository struct {
	inner     SpeciesStore
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var (
	_ identusecase.CandidateRepository = (*CachingSpeciesRepository)(nil)
	_ usecase.SpeciesRepository        = (*CachingSpeciesRepository)(nil)
	_ usecase.SpeciesWriter            = (*CachingSpeciesRepository)(nil)
)

// NewCachingSpeciesRepository decorates a SpeciesStore with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "species".
func NewCachingSpeciesRepository(rdb *redis.Client, ttl time.Duration, inner SpeciesStore, namespace string) *CachingSpeciesRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "species"
	}
	return &CachingSpeciesRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// ListCandidates returns the scoring candidates, cached as a single key.
func (c *CachingSpeciesRepository) ListCandidates(ctx context.Context) ([]identity.CandidateSpecies, error) {
	return readThrough(ctx, c, c.namespace+":candidates", func() ([]identity.CandidateSpecies, error) {
		return c.inner.ListCandidates(ctx)
	})
}

// List returns up to limit species ordered by common name.
func (c *CachingSpeciesRepository) List(ctx context.Context, limit int) ([]identity.CandidateSpecies, error) {
	key := fmt.Sprintf("%s:list:%d", c.namespace, limit)
	return readThrough(ctx, c, key, func() ([]identity.CandidateSpecies, error) {
		return c.inner.List(ctx, limit)
	})
}

// Search caches results per normalised query and limit.
func (c *CachingSpeciesRepository) Search(ctx context.Context, query string, limit int) ([]identity.CandidateSpecies, error) {
	key := fmt.Sprintf("%s:search:%s:%d", c.namespace, queryDigest(query), limit)
	return readThrough(ctx, c, key, func() ([]identity.CandidateSpecies, error) {
		return c.inner.Search(ctx, query, limit)
	})
}

// FindByID caches found species only; lookup errors are never cached.
func (c *CachingSpeciesRepository) FindByID(ctx context.Context, id uint) (*identity.CandidateSpecies, error) {
	key := fmt.Sprintf("%s:id:%d", c.namespace, id)
	return readThrough(ctx, c, key, func() (*identity.CandidateSpecies, error) {
		return c.inner.FindByID(ctx, id)
	})
}

// UpsertBatch writes through to the inner store and invalidates the namespace.
func (c *CachingSpeciesRepository) UpsertBatch(ctx context.Context, species []identity.CandidateSpecies) error {
	if err := c.inner.UpsertBatch(ctx, species); err != nil {
		return err
	}
	if c.rdb == nil || len(species) == 0 {
		return nil
	}
	// Best effort: stale entries expire with the TTL anyway
	_ = deleteByPattern(ctx, c.rdb, c.namespace+":*")
	return nil
}

// readThrough checks the cache, falls back to load and stores the result.
func readThrough[T any](ctx context.Context, c *CachingSpeciesRepository, key string, load func() (T, error)) (T, error) {
	if c.rdb == nil {
		return load()
	}

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load()
	if err != nil {
		return out, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return out, nil
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func deleteByPattern(ctx context.Context, rdb *redis.Client, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// queryDigest maps a search query to a key segment. Search is case-insensitive,
// so the query is lowercased first; every other byte stays significant.
func queryDigest(query string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(query)))
	return hex.EncodeToString(sum[:])
}
