package cache

import (
	"sort"
	"sync"
)

type GenericCache struct {
	store sync.Map
}

// New returns an empty run-scoped cache.
func New() Cache {
	return &GenericCache{}
}

func (c *GenericCache) Get(key string) (interface{}, bool) {
	return c.store.Load(key)
}

func (c *GenericCache) Set(key string, value interface{}) {
	c.store.Store(key, value)
}

func (c *GenericCache) Merge(delta map[string]interface{}) {
	for k, v := range delta {
		c.Set(k, v)
	}
}

func (c *GenericCache) Keys() []string {
	keys := []string{}
	c.each(func(key string, _ interface{}) {
		keys = append(keys, key)
	})
	sort.Strings(keys)
	return keys
}

func (c *GenericCache) Snapshot() map[string]interface{} {
	out := make(map[string]interface{})
	c.each(func(key string, value interface{}) {
		out[key] = value
	})
	return out
}

func (c *GenericCache) each(f func(key string, value interface{})) {
	c.store.Range(func(key, value interface{}) bool {
		if k, ok := key.(string); ok {
			f(k, value)
		}
		return true
	})
}
