package engine

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mitchellh/hashstructure/v2"

	"petproj/pkg/grid"
)

// Cache keeps recently built engines so that operators over the same
// geometry and grid share one resource.
type Cache struct {
	mu      sync.Mutex
	engines *lru.Cache[uint64, Engine]
}

// NewCache returns a cache holding at most size engines.
func NewCache(size int) (*Cache, error) {
	c, err := lru.New[uint64, Engine](size)
	if err != nil {
		return nil, fmt.Errorf("error creating engine cache: %w", err)
	}
	return &Cache{engines: c}, nil
}

type cacheKey struct {
	Geometry Geometry
	Grid     grid.Grid
	Options  Options
}

// Key hashes everything an engine build depends on.
func Key(geom Geometry, vol grid.Grid, opts Options) (uint64, error) {
	return hashstructure.Hash(cacheKey{Geometry: geom, Grid: vol, Options: opts}, hashstructure.FormatV2, nil)
}

// GetOrBuild returns the cached engine for the inputs or builds, stores and
// returns a new one. The build runs under the cache lock so concurrent
// callers never build the same engine twice.
func (c *Cache) GetOrBuild(geom Geometry, vol grid.Grid, opts Options, build Builder) (Engine, bool, error) {
	key, err := Key(geom, vol, opts)
	if err != nil {
		return nil, false, fmt.Errorf("error hashing engine key: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.engines.Get(key); ok {
		return e, true, nil
	}
	e, err := build(geom, vol, opts)
	if err != nil {
		return nil, false, err
	}
	c.engines.Add(key, e)
	return e, false, nil
}

// Len is the number of cached engines.
func (c *Cache) Len() int {
	return c.engines.Len()
}

// Purge drops every cached engine.
func (c *Cache) Purge() {
	c.engines.Purge()
}
