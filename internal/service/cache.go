package service

import (
	"strconv"
	"time"

	"github.com/campusmedia/gallery/internal/model"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// RenderCache keeps rendered description HTML. Entries are keyed by id and
// updatedAt, so an edited resource never serves stale markup.
type RenderCache struct {
	cache *expirable.LRU[string, string]
}

func NewRenderCache(maxSize int, ttl time.Duration) *RenderCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &RenderCache{
		cache: expirable.NewLRU[string, string](maxSize, nil, ttl),
	}
}

func renderKey(r *model.Resource) string {
	return r.ID + "@" + strconv.FormatInt(r.UpdatedAt.UnixNano(), 10)
}

func (c *RenderCache) Get(r *model.Resource) (string, bool) {
	html, ok := c.cache.Get(renderKey(r))
	if ok {
		renderCacheHits.Inc()
		return html, true
	}
	renderCacheMisses.Inc()
	return "", false
}

func (c *RenderCache) Set(r *model.Resource, html string) {
	c.cache.Add(renderKey(r), html)
}

// Forget drops every cached rendering of id.
func (c *RenderCache) Forget(id string) {
	prefix := id + "@"
	for _, key := range c.cache.Keys() {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			c.cache.Remove(key)
		}
	}
}

func (c *RenderCache) Len() int {
	return c.cache.Len()
}
