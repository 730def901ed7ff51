package caching

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c, err := NewCache(filepath.Join(t.TempDir(), "nested", "cache"), time.Hour)
	require.NoError(t, err)

	_, ok := c.Get("https://example.com")
	assert.False(t, ok, "empty cache should miss")

	require.NoError(t, c.Set("https://example.com", []byte("<html></html>")))

	data, ok := c.Get("https://example.com")
	require.True(t, ok)
	assert.Equal(t, "<html></html>", string(data))

	_, ok = c.Get("https://example.org")
	assert.False(t, ok)
}

func TestCache_Expired(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Minute)
	require.NoError(t, err)

	require.NoError(t, c.Set("https://example.com", []byte("old")))
	old := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(dir, c.key("https://example.com")), old, old))

	_, ok := c.Get("https://example.com")
	assert.False(t, ok, "stale entry should miss")
}

func TestCache_NoTTL(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, 0)
	require.NoError(t, err)

	require.NoError(t, c.Set("u", []byte("forever")))
	old := time.Now().Add(-24 * 365 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, c.key("u")), old, old))

	data, ok := c.Get("u")
	require.True(t, ok)
	assert.Equal(t, "forever", string(data))
}
