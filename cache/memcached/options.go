//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

package memcached

import (
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Memcache declares the subset of the gomemcache client used by the
// backend. The protocol has no notion of request context, operations
// are bounded by the client timeout.
type Memcache interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
}

// Option type to configure the cache
type Option func(*Options)

// Config Options
type Options struct {
	servers []string
	client  Memcache
	expiry  int32
}

func defaultOptions() *Options {
	return &Options{}
}

// WithServers defines memcached endpoints in the host:port notation
func WithServers(servers ...string) Option {
	return func(c *Options) {
		c.servers = servers
	}
}

// WithClient injects the memcached client, use it to mock the backend
func WithClient(client Memcache) Option {
	return func(c *Options) {
		c.client = client
	}
}

// WithExpiry defines the lifetime of cached snapshots, zero keeps them
// until evicted by the server
func WithExpiry(ttl time.Duration) Option {
	return func(c *Options) {
		c.expiry = int32(ttl / time.Second)
	}
}
