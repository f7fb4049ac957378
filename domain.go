//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

package sdbrec

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// domain couples the collection name with the storage service, the cache,
// the recast registry and the nominal record type. It is the shared core of
// Domain[T] and every cursor it spawns.
type domain struct {
	name       string
	service    Service
	cache      Cache
	registry   *Registry
	log        zerolog.Logger
	consistent bool
	make       func() Record
	schema     *schema
}

/*

Domain[T] is the typed access point to one domain of the store. T is the
nominal record type of the domain, the concrete type of a fetched record may
differ when the recast registry resolves a subtype.

	db := sdbrec.Must(sdbrec.New[Planet](
	  sdbrec.WithDomain("planets"),
	  sdbrec.WithService(service),
	  sdbrec.WithCache(cache),
	))
*/
type Domain[T any] struct {
	domain
}

// New creates the typed access point to the domain
func New[T any](opts ...Option) (*Domain[T], error) {
	conf := defaultOptions()
	for _, opt := range opts {
		opt(conf)
	}

	if conf.service == nil {
		return nil, errUndefinedService.New(fmt.Errorf("use WithService"))
	}

	s, err := schemaOf[T]()
	if err != nil {
		return nil, err
	}

	if _, ok := any(new(T)).(Record); !ok {
		return nil, errInvalidEntity.New(fmt.Errorf("%T does not implement Record", new(T)))
	}

	name := conf.domain
	if name == "" {
		name = strings.ToLower(s.rtype.Name())
	}
	name = conf.prefix + name

	return &Domain[T]{domain{
		name:       name,
		service:    conf.service,
		cache:      conf.cache,
		registry:   conf.registry,
		log:        conf.log,
		consistent: conf.consistent,
		make:       func() Record { return any(new(T)).(Record) },
		schema:     s,
	}}, nil
}

// Must panics on the construction error
func Must[T any](db *Domain[T], err error) *Domain[T] {
	if err != nil {
		panic(err)
	}
	return db
}

//-----------------------------------------------------------------------------
//
// Cursors
//
//-----------------------------------------------------------------------------

// Find returns the lazy cursor over records matching the conjunction of
// conditions. No conditions match the whole domain in the store's default
// order.
func (d *domain) Find(conds ...Condition) *ResultSet {
	return newResultSet(d, conds)
}

// FromPage returns the cursor over an already fetched raw page. The page
// and a predicate are mutually exclusive entry points, a continuation of
// the supplied page walks the domain unconstrained; seed Find with Continue
// when the original predicate must be preserved.
func (d *domain) FromPage(page *Page) *ResultSet {
	rs := newResultSet(d, nil)
	if page == nil {
		page = &Page{}
	}
	rs.page = page
	rs.token = page.Token
	rs.state = stateReady
	return rs
}

//-----------------------------------------------------------------------------
//
// Key-value access
//
//-----------------------------------------------------------------------------

// Get reads one record by its item name, consulting the cache first. A
// remote miss is the NotFound error.
func (d *domain) Get(ctx context.Context, name string) (Record, error) {
	attrs, hit, err := d.fromCache(ctx, name)
	if err != nil {
		return nil, err
	}
	if hit {
		rec, _, err := d.build(name, attrs)
		return rec, err
	}

	attrs, err = d.service.Get(ctx, d.name, name, d.consistent)
	if err != nil {
		return nil, err
	}

	rec, s, err := d.build(name, attrs)
	if err != nil {
		return nil, err
	}

	if snap, err := snapshot(rec, s); err == nil {
		d.populate(ctx, name, snap)
	}
	return rec, nil
}

// Save persists the record, generating an item name for records that carry
// none, and refreshes the cache entry.
func (d *domain) Save(ctx context.Context, rec Record) error {
	s, err := d.schemaFor(rec)
	if err != nil {
		return err
	}

	if rec.ItemName() == "" {
		if err := setName(rec, s, uuid.NewString()); err != nil {
			return err
		}
	}

	return d.save(ctx, rec, s)
}

func (d *domain) save(ctx context.Context, rec Record, s *schema) error {
	attrs, err := snapshot(rec, s)
	if err != nil {
		return err
	}

	if err := d.service.Put(ctx, d.name, rec.ItemName(), attrs); err != nil {
		return err
	}

	d.populate(ctx, rec.ItemName(), attrs)
	return nil
}

// Remove deletes the record and its cache entry
func (d *domain) Remove(ctx context.Context, rec Record) error {
	return d.delete(ctx, rec.ItemName())
}

func (d *domain) delete(ctx context.Context, name string) error {
	if name == "" {
		return errInvalidEntity.New(fmt.Errorf("record has no item name"))
	}

	if err := d.service.Remove(ctx, d.name, name); err != nil {
		return err
	}

	if d.cache != nil {
		if err := d.cache.Del(ctx, d.name, name); err != nil {
			d.log.Debug().Err(err).
				Str("key", d.name+"/"+name).
				Msg("cache del failed")
		}
	}
	return nil
}

//-----------------------------------------------------------------------------
//
// Administration
//
//-----------------------------------------------------------------------------

// CreateDomain creates the domain at the store, idempotent
func (d *domain) CreateDomain(ctx context.Context) error {
	return d.service.CreateDomain(ctx, d.name)
}

// RemoveDomain deletes the domain and all of its items
func (d *domain) RemoveDomain(ctx context.Context) error {
	return d.service.RemoveDomain(ctx, d.name)
}
