package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericCache_GetSet(t *testing.T) {
	c := New()

	c.Set("key1", "value1")
	val, ok := c.Get("key1")
	require.True(t, ok)
	assert.Equal(t, "value1", val)

	_, ok = c.Get("nonexistent")
	assert.False(t, ok)

	c.Set("key1", "value1_overwritten")
	val, _ = c.Get("key1")
	assert.Equal(t, "value1_overwritten", val)
}

func TestGenericCache_MergeOverwrites(t *testing.T) {
	c := New()
	c.Merge(map[string]interface{}{"last_secret_id": 1, "other": "x"})
	c.Merge(map[string]interface{}{"last_secret_id": 2})

	v, _ := c.Get("last_secret_id")
	assert.Equal(t, 2, v)
	assert.Equal(t, []string{"last_secret_id", "other"}, c.Keys())
}

func TestGenericCache_MergeNilDelta(t *testing.T) {
	c := New()
	c.Merge(nil)
	assert.Equal(t, []string{}, c.Keys())
}

func TestGenericCache_SnapshotIsDetached(t *testing.T) {
	c := New()
	c.Set("a", 1)
	snap := c.Snapshot()
	snap["b"] = 2
	c.Set("c", 3)

	_, ok := c.Get("b")
	assert.False(t, ok)
	_, ok = snap["c"]
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "c"}, c.Keys())
}

func TestGenericCache_EmptySnapshotNotNil(t *testing.T) {
	snap := New().Snapshot()
	require.NotNil(t, snap)
	assert.Empty(t, snap)
	assert.Equal(t, []string{}, New().Keys())
}

func TestCachesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Set("k", "a")
	_, ok := b.Get("k")
	assert.False(t, ok)
}
