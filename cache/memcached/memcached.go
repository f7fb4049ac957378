//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

/*
Package memcached implements the cache backend over memcached, sharing
the cache tier between processes. Snapshots are stored as JSON objects,
the composite key is domain/name with a SHA-1 fallback for names the
memcached protocol cannot carry.
*/
package memcached

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/fogfish/faults"

	"github.com/fogfish/sdbrec"
)

const (
	errBackendIO      = faults.Type("memcached i/o failed")
	errUndefinedCache = faults.Type("undefined memcached client")
)

// Cache is the memcached implementation of sdbrec.Cache
type Cache struct {
	client Memcache
	expiry int32
}

var _ sdbrec.Cache = (*Cache)(nil)

// New creates the memcached cache backend
func New(opts ...Option) (*Cache, error) {
	conf := defaultOptions()
	for _, opt := range opts {
		opt(conf)
	}

	client := conf.client
	if client == nil {
		if len(conf.servers) == 0 {
			return nil, errUndefinedCache.New(fmt.Errorf("use WithServers or WithClient"))
		}
		client = memcache.New(conf.servers...)
	}

	return &Cache{client: client, expiry: conf.expiry}, nil
}

// Must panics on the construction error
func Must(c *Cache, err error) *Cache {
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks up the snapshot, sdbrec.ErrCacheMiss for unknown keys
func (c *Cache) Get(ctx context.Context, domain, name string) (sdbrec.Attributes, error) {
	item, err := c.client.Get(keyOf(domain, name))
	switch {
	case err == nil:
	case errors.Is(err, memcache.ErrCacheMiss):
		return nil, sdbrec.ErrCacheMiss
	default:
		return nil, errBackendIO.New(err)
	}

	attrs := sdbrec.Attributes{}
	if err := json.Unmarshal(item.Value, &attrs); err != nil {
		return nil, errBackendIO.New(err)
	}

	return attrs, nil
}

// Put stores the snapshot
func (c *Cache) Put(ctx context.Context, domain, name string, attrs sdbrec.Attributes) error {
	if attrs == nil {
		attrs = sdbrec.Attributes{}
	}

	val, err := json.Marshal(attrs)
	if err != nil {
		return errBackendIO.New(err)
	}

	item := &memcache.Item{
		Key:        keyOf(domain, name),
		Value:      val,
		Expiration: c.expiry,
	}

	if err := c.client.Set(item); err != nil {
		return errBackendIO.New(err)
	}

	return nil
}

// Del evicts the snapshot, unknown keys are ignored
func (c *Cache) Del(ctx context.Context, domain, name string) error {
	err := c.client.Delete(keyOf(domain, name))
	switch {
	case err == nil, errors.Is(err, memcache.ErrCacheMiss):
		return nil
	default:
		return errBackendIO.New(err)
	}
}

// memcached keys are limited to 250 printable bytes, longer or unsafe
// composites degrade to the SHA-1 of the composite
func keyOf(domain, name string) string {
	key := domain + "/" + name
	if len(key) <= 250 && legalKey(key) {
		return key
	}

	hash := sha1.Sum([]byte(key))
	return hex.EncodeToString(hash[:])
}

func legalKey(key string) bool {
	for i := 0; i < len(key); i++ {
		if key[i] <= ' ' || key[i] == 0x7f {
			return false
		}
	}
	return true
}
