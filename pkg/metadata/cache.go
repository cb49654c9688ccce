package metadata

import (
	"context"
	"strings"
	"sync"
)

// Cache memoizes a Provider's lookups. Editors issue a describe per
// keystroke without it; with it, each SObject is described once until
// invalidated. Errors are never cached, so a transient failure retries on
// the next lookup.
//
// Safe for concurrent use.
type Cache struct {
	upstream Provider

	mu    sync.Mutex
	names []string
	got   bool
	field map[string][]*FieldDescriptor
	rel   map[string][]*RelationshipDescriptor
}

// NewCache wraps a provider with memoization.
func NewCache(upstream Provider) *Cache {
	return &Cache{
		upstream: upstream,
		field:    make(map[string][]*FieldDescriptor),
		rel:      make(map[string][]*RelationshipDescriptor),
	}
}

// SObjectNames fetches the full name list once and serves every prefix
// query from it.
func (c *Cache) SObjectNames(ctx context.Context, partial string) ([]string, error) {
	c.mu.Lock()
	names, ok := c.names, c.got
	c.mu.Unlock()

	if !ok {
		fetched, err := c.upstream.SObjectNames(ctx, "")
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.names, c.got = fetched, true
		names = fetched
		c.mu.Unlock()
	}

	prefix := strings.ToLower(partial)
	out := make([]string, 0, len(names))
	for _, name := range names {
		if prefix == "" || strings.HasPrefix(strings.ToLower(name), prefix) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Fields returns the cached field descriptors for an SObject, fetching on
// first use.
func (c *Cache) Fields(ctx context.Context, sobject string) ([]*FieldDescriptor, error) {
	key := strings.ToLower(sobject)

	c.mu.Lock()
	cached, ok := c.field[key]
	c.mu.Unlock()

	if !ok {
		fetched, err := c.upstream.Fields(ctx, sobject)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.field[key] = fetched
		c.mu.Unlock()
		cached = fetched
	}

	out := make([]*FieldDescriptor, len(cached))
	copy(out, cached)
	return out, nil
}

// Relationships returns the cached child relationships for an SObject,
// fetching on first use.
func (c *Cache) Relationships(ctx context.Context, sobject string) ([]*RelationshipDescriptor, error) {
	key := strings.ToLower(sobject)

	c.mu.Lock()
	cached, ok := c.rel[key]
	c.mu.Unlock()

	if !ok {
		fetched, err := c.upstream.Relationships(ctx, sobject)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.rel[key] = fetched
		c.mu.Unlock()
		cached = fetched
	}

	out := make([]*RelationshipDescriptor, len(cached))
	copy(out, cached)
	return out, nil
}

// Invalidate drops the cached entries for one SObject.
func (c *Cache) Invalidate(sobject string) {
	key := strings.ToLower(sobject)
	c.mu.Lock()
	delete(c.field, key)
	delete(c.rel, key)
	c.mu.Unlock()
}

// InvalidateAll drops every cached entry, forcing fresh describes.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.names, c.got = nil, false
	c.field = make(map[string][]*FieldDescriptor)
	c.rel = make(map[string][]*RelationshipDescriptor)
	c.mu.Unlock()
}
