package permissions

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const treeCacheKey = "permission:tree"

// TreeCache keeps the rendered permission tree in Redis until the catalog
// changes. A nil cache disables caching.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache constructs a TreeCache.
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	return &TreeCache{client: client, ttl: ttl}
}

// Get returns the cached tree, or ok=false on miss or any cache error.
func (c *TreeCache) Get(ctx context.Context) ([]*TreeNode, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, treeCacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var tree []*TreeNode
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, false
	}
	return tree, true
}

// Set stores the tree. Failures are ignored; the cache is an optimisation.
func (c *TreeCache) Set(ctx context.Context, tree []*TreeNode) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, treeCacheKey, data, c.ttl).Err()
}

// Invalidate drops the cached tree.
func (c *TreeCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, treeCacheKey).Err()
}
