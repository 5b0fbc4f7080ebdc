package engine

import (
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of reports a Cache keeps.
const DefaultCacheSize = 4096

// Cache memoizes reports keyed by path and content. Reports are treated as
// read-only by callers.
type Cache struct {
	engine *Engine
	lru    *lru.Cache[string, Report]
}

// NewCache wraps e with an LRU of the given size. size <= 0 uses
// DefaultCacheSize.
func NewCache(e *Engine, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, Report](size)
	if err != nil {
		return nil, err
	}
	return &Cache{engine: e, lru: c}, nil
}

// Detect returns the cached report for (text, path) or computes and stores
// it.
func (c *Cache) Detect(text, path string) Report {
	key := cacheKey(text, path)
	if rep, ok := c.lru.Get(key); ok {
		return rep
	}
	rep := c.engine.Detect(text, path)
	c.lru.Add(key, rep)
	return rep
}

// Len returns the number of cached reports.
func (c *Cache) Len() int { return c.lru.Len() }

func cacheKey(text, path string) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
