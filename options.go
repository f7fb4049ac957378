//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

package sdbrec

import "github.com/rs/zerolog"

// Option type to configure the domain
type Option func(*Options)

// Config Options
type Options struct {
	domain     string
	prefix     string
	service    Service
	cache      Cache
	registry   *Registry
	log        zerolog.Logger
	consistent bool
}

func defaultOptions() *Options {
	return &Options{
		log: zerolog.Nop(),
	}
}

// WithDomain defines the domain name, default one is the lowercased name
// of the record type
func WithDomain(domain string) Option {
	return func(c *Options) {
		c.domain = domain
	}
}

// WithDomainPrefix prepends the prefix to the domain name, separating
// environments that share one account
func WithDomainPrefix(prefix string) Option {
	return func(c *Options) {
		c.prefix = prefix
	}
}

// WithService configures the storage service of the domain
func WithService(service Service) Option {
	return func(c *Options) {
		c.service = service
	}
}

// WithCache configures the read-through cache of the domain. Without a
// cache every row is built from the remote answer.
func WithCache(cache Cache) Option {
	return func(c *Options) {
		c.cache = cache
	}
}

// WithRegistry configures the recast registry of the domain
func WithRegistry(registry *Registry) Option {
	return func(c *Options) {
		c.registry = registry
	}
}

// WithLogger configures the logger, default one discards everything
func WithLogger(log zerolog.Logger) Option {
	return func(c *Options) {
		c.log = log
	}
}

// WithConsistent requests strongly consistent reads by default, cursors
// override it per query
func WithConsistent(consistent bool) Option {
	return func(c *Options) {
		c.consistent = consistent
	}
}
