package internal

import (
	"crypto/md5"
	"fmt"
	"sync"
	"time"

	tt "github.com/gnolang/tdce/internal/types"
)

type CacheEntry struct {
	Hash         string
	Report       tt.FileReport
	CreatedAt    time.Time
	LastAccessed time.Time
}

// Cache remembers the report of every file by content hash, so repeated
// write events for an unchanged file do not re-run the analysis.
type Cache struct {
	entries map[string]CacheEntry
	mutex   sync.RWMutex
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]CacheEntry),
	}
}

// Set stores the report for filename with the given content.
func (c *Cache) Set(filename string, content []byte, report tt.FileReport) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()
	c.entries[filename] = CacheEntry{
		Hash:         contentHash(content),
		Report:       report,
		CreatedAt:    now,
		LastAccessed: now,
	}
}

// Get returns the stored report when content is unchanged.
func (c *Cache) Get(filename string, content []byte) (tt.FileReport, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[filename]
	if !exists {
		return tt.FileReport{}, false
	}

	if entry.Hash != contentHash(content) {
		delete(c.entries, filename)
		return tt.FileReport{}, false
	}

	entry.LastAccessed = time.Now()
	c.entries[filename] = entry

	return entry.Report, true
}

func (c *Cache) InvalidateAll() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]CacheEntry)
}

func contentHash(content []byte) string {
	return fmt.Sprintf("%x", md5.Sum(content))
}
