//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

/*
Package memory implements the in-process cache backend, a mutex guarded
map of attribute snapshots. It keeps single process deployments and unit
tests away from external cache tiers.
*/
package memory

import (
	"context"
	"sync"

	"github.com/fogfish/sdbrec"
)

type key struct{ domain, name string }

// Cache is the in-memory implementation of sdbrec.Cache
type Cache struct {
	mu    sync.RWMutex
	items map[key]sdbrec.Attributes
}

var _ sdbrec.Cache = (*Cache)(nil)

// New creates the in-memory cache
func New() *Cache {
	return &Cache{items: map[key]sdbrec.Attributes{}}
}

// Get looks up the snapshot, sdbrec.ErrCacheMiss for unknown keys
func (c *Cache) Get(ctx context.Context, domain, name string) (sdbrec.Attributes, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	attrs, has := c.items[key{domain, name}]
	if !has {
		return nil, sdbrec.ErrCacheMiss
	}

	// copy out, the caller owns the snapshot
	snap := make(sdbrec.Attributes, len(attrs))
	for k, v := range attrs {
		snap[k] = v
	}

	return snap, nil
}

// Put stores the snapshot
func (c *Cache) Put(ctx context.Context, domain, name string, attrs sdbrec.Attributes) error {
	snap := make(sdbrec.Attributes, len(attrs))
	for k, v := range attrs {
		snap[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key{domain, name}] = snap
	return nil
}

// Del evicts the snapshot, unknown keys are ignored
func (c *Cache) Del(ctx context.Context, domain, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key{domain, name})
	return nil
}
