//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

package sdbrec

import (
	"fmt"
	"reflect"
)

//-----------------------------------------------------------------------------
//
// Registry
//
//-----------------------------------------------------------------------------

/*

Registry maps values of the recast attribute to concrete record types.

A record type declares the recast attribute with the `recast` tag option:

	type Planet struct {
	  sdbrec.ID
	  Kind string `sdb:"kind,recast"`
	}

When a row is instantiated, the value of that attribute selects the concrete
type from the registry, falling back to the nominal type of the domain when
the value is absent or not registered. Registration is not safe for
concurrent use, bind all types during initialization.
*/
type Registry struct {
	kinds  map[string]variant
	byType map[reflect.Type]*schema
}

type variant struct {
	make   func() Record
	schema *schema
}

func NewRegistry() *Registry {
	return &Registry{
		kinds:  map[string]variant{},
		byType: map[reflect.Type]*schema{},
	}
}

// Recast binds the value of the recast attribute to the concrete type T.
// The type must embed ID (or implement Record on its pointer receiver),
// registration of anything else panics.
func Recast[T any](r *Registry, kind string) {
	rec, ok := any(new(T)).(Record)
	if !ok {
		panic(fmt.Sprintf("sdbrec: %T does not implement Record", new(T)))
	}

	s, err := schemaOf[T]()
	if err != nil {
		panic(fmt.Sprintf("sdbrec: recast %s: %s", kind, err))
	}

	r.kinds[kind] = variant{
		make:   func() Record { return any(new(T)).(Record) },
		schema: s,
	}
	r.byType[reflect.TypeOf(rec).Elem()] = s
}

func (r *Registry) resolve(kind string) (variant, bool) {
	if r == nil {
		return variant{}, false
	}
	v, has := r.kinds[kind]
	return v, has
}

func (r *Registry) schemaOfType(rt reflect.Type) (*schema, bool) {
	if r == nil {
		return nil, false
	}
	s, has := r.byType[rt]
	return s, has
}

//-----------------------------------------------------------------------------
//
// Record factory
//
//-----------------------------------------------------------------------------

// newRecord resolves the concrete type of the row and instantiates it.
// Resolution is a single lookup of the recast attribute value.
func (d *domain) newRecord(attrs Attributes) (Record, *schema) {
	if d.schema.recast == "" {
		return d.make(), d.schema
	}

	kind, has := attrs[d.schema.recast]
	if !has {
		return d.make(), d.schema
	}

	v, has := d.registry.resolve(kind)
	if !has {
		return d.make(), d.schema
	}

	return v.make(), v.schema
}

// build instantiates the typed record from the raw row. Cached snapshots
// pass through the same resolution, they are well-formed by construction.
func (d *domain) build(name string, attrs Attributes) (Record, *schema, error) {
	rec, s := d.newRecord(attrs)
	if err := hydrate(rec, s, name, attrs); err != nil {
		return nil, nil, err
	}
	return rec, s, nil
}

// schemaFor returns the schema of the record's dynamic type.
func (d *domain) schemaFor(rec Record) (*schema, error) {
	rt := reflect.TypeOf(rec)
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if rt == d.schema.rtype {
		return d.schema, nil
	}

	if s, has := d.registry.schemaOfType(rt); has {
		return s, nil
	}

	return nil, errInvalidEntity.New(fmt.Errorf("unregistered record type %T", rec))
}
