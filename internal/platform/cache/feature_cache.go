package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"tree_backend/internal/feature/identification/domain/entity"
	"tree_backend/internal/feature/identification/usecase"
)

// FeatureCache decorates a FeatureExtractor so that re-uploads of the same image
// skip decoding. Keys are a BLAKE2b-256 digest of the image bytes and the filename,
// because filename hints take part in the record.
type FeatureCache struct {
	inner     usecase.FeatureExtractor
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.FeatureExtractor = (*FeatureCache)(nil)

// cachedFeatures carries the hint explicitly since FeatureRecord does not serialise it.
type cachedFeatures struct {
	Record entity.FeatureRecord `json:"record"`
	Hint   entity.FilenameHint  `json:"hint"`
}

// NewFeatureCache decorates an extractor with Redis caching.
// If ttl is 0, it defaults to 24 hours. If namespace is empty, it uses "features".
func NewFeatureCache(rdb *redis.Client, ttl time.Duration, inner usecase.FeatureExtractor, namespace string) *FeatureCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if namespace == "" {
		namespace = "features"
	}
	return &FeatureCache{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

// Extract returns the cached record for identical input, otherwise extracts and stores it.
// Extraction errors are never cached.
func (c *FeatureCache) Extract(ctx context.Context, imageData []byte, filename string) (entity.FeatureRecord, error) {
	if c.rdb == nil {
		return c.inner.Extract(ctx, imageData, filename)
	}

	key := c.cacheKey(imageData, filename)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var v cachedFeatures
		if err := json.Unmarshal(b, &v); err == nil {
			v.Record.Hint = v.Hint
			return v.Record, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	rec, err := c.inner.Extract(ctx, imageData, filename)
	if err != nil {
		return rec, err
	}

	if b, err := json.Marshal(cachedFeatures{Record: rec, Hint: rec.Hint}); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return rec, nil
}

func (c *FeatureCache) cacheKey(imageData []byte, filename string) string {
	h, _ := blake2b.New256(nil) // nil key never fails
	h.Write(imageData)
	h.Write([]byte{0})
	h.Write([]byte(filename))
	return c.namespace + ":" + hex.EncodeToString(h.Sum(nil))
}
