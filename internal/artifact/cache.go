package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 15 * time.Minute

// CachedFetcher is a read-through cache in front of another fetcher, keyed by
// (session, context, path). Cache failures degrade to the inner fetcher and
// are never surfaced to callers.
type CachedFetcher struct {
	inner  Fetcher
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedFetcher(inner Fetcher, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedFetcher {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &CachedFetcher{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func cacheKey(sessionID, contextID, path string) string {
	return fmt.Sprintf("loom:artifact:%s:%s:%s", sessionID, contextID, path)
}

func (f *CachedFetcher) FetchArtifact(ctx context.Context, sessionID, contextID, path string) (*Artifact, error) {
	key := cacheKey(sessionID, contextID, path)

	raw, err := f.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var art Artifact
		if err := json.Unmarshal(raw, &art); err == nil {
			return &art, nil
		}
		f.logger.Warn("dropping undecodable cached artifact", "key", key)
	} else if !errors.Is(err, redis.Nil) {
		f.logger.Warn("artifact cache read failed", "key", key, "error", err)
	}

	art, err := f.inner.FetchArtifact(ctx, sessionID, contextID, path)
	if err != nil || art == nil {
		return art, err
	}

	if data, err := json.Marshal(art); err == nil {
		if err := f.rdb.Set(ctx, key, data, f.ttl).Err(); err != nil {
			f.logger.Warn("artifact cache write failed", "key", key, "error", err)
		}
	}
	return art, nil
}
