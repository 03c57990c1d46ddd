// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ontology

import (
	"context"
	"sync"
)

// Cache holds loaded ontologies for the process lifetime, keyed by
// (name, version). Population is at-most-once per key: concurrent first
// requests coalesce onto a single load and the rest wait. A failed load
// is not cached, so a later request retries.
//
// Tests inject a fresh Cache per case; nothing here is global.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	ready chan struct{} // closed when ont/err are set
	ont   *Ontology
	err   error
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// cacheKey is the identity an entry is stored under.
func cacheKey(name, version string) string {
	if version == "" {
		version = "latest"
	}
	return name + "@" + version
}

// Get returns the cached ontology for (name, version), loading it via
// load on first use. Waiters observe the loader's result; if the load
// fails, every coalesced caller gets the error and the entry is
// dropped.
func (c *Cache) Get(ctx context.Context, name, version string, load func(context.Context) (*Ontology, error)) (*Ontology, error) {
	key := cacheKey(name, version)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		select {
		case <-e.ready:
			return e.ont, e.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	e := &cacheEntry{ready: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.ont, e.err = load(ctx)
	if e.err != nil {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	}
	close(e.ready)

	return e.ont, e.err
}

// Len reports the number of populated or in-flight entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
