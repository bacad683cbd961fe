package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fedesasso/mysqlbatch/batch"
)

func newTestDiskCache(t *testing.T) *DiskProcedureCache {
	t.Helper()
	c, err := OpenDiskProcedureCache(DiskCacheConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestDiskProcedureCacheStoreAndLookup(t *testing.T) {
	c := newTestDiskCache(t)

	desc := &batch.ProcedureDescriptor{Name: "sp_find_user", ParamNames: []string{"id"}}
	require.NoError(t, c.Store("sp_find_user", desc))

	got, known, exists := c.Lookup("sp_find_user")
	require.True(t, known)
	require.True(t, exists)
	assert.Equal(t, desc.Name, got.Name)
	assert.Equal(t, desc.ParamNames, got.ParamNames)
}

func TestDiskProcedureCacheTombstone(t *testing.T) {
	c := newTestDiskCache(t)

	require.NoError(t, c.Store("sp_missing", nil))

	_, known, exists := c.Lookup("sp_missing")
	assert.True(t, known)
	assert.False(t, exists)
}

func TestDiskProcedureCacheLookupNeverStored(t *testing.T) {
	c := newTestDiskCache(t)
	_, known, exists := c.Lookup("never_seen")
	assert.False(t, known)
	assert.False(t, exists)
}

func TestDiskProcedureCacheToMemoryMap(t *testing.T) {
	c := newTestDiskCache(t)
	require.NoError(t, c.Store("a", &batch.ProcedureDescriptor{Name: "a"}))
	require.NoError(t, c.Store("b", nil))

	m, err := c.ToMemoryMap()
	require.NoError(t, err)

	desc, known, exists := m.Lookup("a")
	assert.True(t, known)
	assert.True(t, exists)
	assert.Equal(t, "a", desc.Name)

	_, known, exists = m.Lookup("b")
	assert.True(t, known)
	assert.False(t, exists)
}
