package formstate

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultProgramCacheSize bounds NewLRUProgramCache when size <= 0.
const DefaultProgramCacheSize = 256

type lruProgramCache struct {
	lru *lru.Cache[string, any]
}

// NewLRUProgramCache returns a bounded, concurrency-safe ProgramCache.
func NewLRUProgramCache(size int) (ProgramCache, error) {
	if size <= 0 {
		size = DefaultProgramCacheSize
	}
	cache, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("formstate: program cache: %w", err)
	}
	return &lruProgramCache{lru: cache}, nil
}

func (c *lruProgramCache) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

func (c *lruProgramCache) Set(key string, value any) {
	c.lru.Add(key, value)
}
