// Package caching stores raw page bodies on disk keyed by URL.
package caching

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a file-based cache with a TTL.
// A non-positive TTL means entries never expire.
type Cache struct {
	path string
	ttl  time.Duration
}

// NewCache creates the cache directory if needed.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{
		path: path,
		ttl:  ttl,
	}, nil
}

// key is the hex SHA-256 of the URL, used as the file name.
func (c *Cache) key(url string) string {
	hash := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x.html", hash)
}

// Get returns the cached body and true on a fresh hit.
func (c *Cache) Get(url string) ([]byte, bool) {
	filePath := filepath.Join(c.path, c.key(url))

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false // stale
	}

	data, err := os.ReadFile(filepath.Clean(filePath))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Set stores data for url, replacing any previous entry.
func (c *Cache) Set(url string, data []byte) error {
	filePath := filepath.Join(c.path, c.key(url))
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
