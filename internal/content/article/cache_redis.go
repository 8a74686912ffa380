package article

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	publishedCachePrefix = "chambers:articles:published:"
	publishedCacheTTL    = time.Minute
)

// redisCmdable is the slice of the redis client the cache needs.
type redisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ListCache caches pages of the public published-article listing in Redis.
// Cache failures are logged and degrade to the store; they never fail the
// request.
type ListCache struct {
	client redisCmdable
	logger *slog.Logger
}

// NewListCache constructs the cache. Returns nil when client is nil so
// callers can treat a missing Redis as cache-off.
func NewListCache(client redisCmdable, logger *slog.Logger) *ListCache {
	if client == nil {
		return nil
	}
	return &ListCache{client: client, logger: logger}
}

func pageKey(limit, offset int) string {
	return fmt.Sprintf("%s%d:%d", publishedCachePrefix, limit, offset)
}

// Get returns the cached page and whether it was present.
func (c *ListCache) Get(ctx context.Context, limit, offset int) ([]*Article, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, pageKey(limit, offset)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WarnContext(ctx, "published-article cache read failed", "error", err)
		}
		return nil, false
	}
	var articles []*Article
	if err := json.Unmarshal(raw, &articles); err != nil {
		c.logger.WarnContext(ctx, "published-article cache entry corrupt", "error", err)
		return nil, false
	}
	return articles, true
}

// Put stores the page.
func (c *ListCache) Put(ctx context.Context, limit, offset int, articles []*Article) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(articles)
	if err != nil {
		c.logger.WarnContext(ctx, "published-article cache encode failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, pageKey(limit, offset), raw, publishedCacheTTL).Err(); err != nil {
		c.logger.WarnContext(ctx, "published-article cache write failed", "error", err)
	}
}

// InvalidateAll drops the first pages of the listing. Page keys are bounded
// by the listing's limit cap, so dropping the common pages on every content
// change keeps the public surface fresh without a key scan.
func (c *ListCache) InvalidateAll(ctx context.Context) {
	if c == nil {
		return
	}
	keys := make([]string, 0, 8)
	for _, limit := range []int{defaultListLimit, maxListLimit} {
		for offset := 0; offset < limit*4; offset += limit {
			keys = append(keys, pageKey(limit, offset))
		}
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "published-article cache invalidation failed", "error", err)
	}
}
