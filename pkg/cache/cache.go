// Package cache holds the execution context of a plan run: the key/value
// store that successful steps export into and later steps read placeholders
// from. A cache is created per run and dropped when the run ends.
package cache

// Reader is the read-only view handed to the reference resolver.
type Reader interface {
	Get(key string) (interface{}, bool)
}

type Cache interface {
	Reader
	Set(key string, value interface{})
	// Merge binds every entry of delta, overwriting existing keys.
	Merge(delta map[string]interface{})
	// Keys returns the bound keys in lexical order.
	Keys() []string
	// Snapshot returns a copy detached from the cache.
	Snapshot() map[string]interface{}
}
