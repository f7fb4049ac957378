//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

//
// The file declares public types of the library
//

package sdbrec

import (
	"context"
	"fmt"
)

//-----------------------------------------------------------------------------
//
// Record
//
//-----------------------------------------------------------------------------

/*

Record is the most generic item type used by the library to abstract
readable/writable records of the attribute store.

The interface declares anything that has a unique item name within its
domain. Embed ID into the struct to implement the interface:

	type Planet struct {
	  sdbrec.ID
	  Color string `sdb:"color"`
	}
*/
type Record interface {
	ItemName() string
}

/*

ID is an embeddable identity of the record. The item name is never part of
the stored attribute map, it only addresses the item within the domain.
*/
type ID struct {
	Name string `sdb:"-"`
}

// NewID lifts item name to record identity
func NewID(name string) ID { return ID{Name: name} }

func (id ID) ItemName() string { return id.Name }

/*

Records is a sequence of Record, a convenient collector for FMap

	seq := sdbrec.Records{}
	rs.FMap(ctx, seq.Join)
*/
type Records []Record

// Join lifts drained records into the sequence
func (seq *Records) Join(r Record) error {
	*seq = append(*seq, r)
	return nil
}

//-----------------------------------------------------------------------------
//
// Wire types
//
//-----------------------------------------------------------------------------

/*

Attributes is the attribute map of a single item. SimpleDB stores typed
values as encoded strings, the codec of the library converts them back and
forth to struct fields.
*/
type Attributes map[string]string

/*

Item is a single row of the select result, the identity and its attributes.
*/
type Item struct {
	Name  string
	Attrs Attributes
}

/*

Page is one page of the select result. Empty Token designates the final
page. An empty page with a non empty token does not terminate the sequence,
the store is allowed to return partial pages.
*/
type Page struct {
	Items []Item
	Token string
}

/*

SelectQuery is the input of a single select round-trip: the compiled
expression, the continuation token of the previous page and the consistency
flag.
*/
type SelectQuery struct {
	Expr       string
	Token      string
	Consistent bool
}

/*

CountPage is the result of a single count round-trip. The store counts
incrementally, a non empty token means the scalar is partial and the count
continues from the token.
*/
type CountPage struct {
	Count int64
	Token string
}

//-----------------------------------------------------------------------------
//
// Storage service
//
//-----------------------------------------------------------------------------

/*

Selector executes compiled select expressions against the store.
*/
type Selector interface {
	Select(context.Context, *SelectQuery) (*Page, error)
	SelectCount(context.Context, *SelectQuery) (*CountPage, error)
}

/*

Getter reads a single item by its name.
*/
type Getter interface {
	Get(ctx context.Context, domain, name string, consistent bool) (Attributes, error)
}

/*

Writer persists and removes single items.
*/
type Writer interface {
	Put(ctx context.Context, domain, name string, attrs Attributes) error
	Remove(ctx context.Context, domain, name string) error
}

/*

Admin manages domains of the account.
*/
type Admin interface {
	CreateDomain(ctx context.Context, domain string) error
	RemoveDomain(ctx context.Context, domain string) error
}

/*

Service is the full storage trait the library consumes, implemented by
service/sdb for AWS SimpleDB.
*/
type Service interface {
	Selector
	Getter
	Writer
	Admin
}

//-----------------------------------------------------------------------------
//
// Cache
//
//-----------------------------------------------------------------------------

/*

Cache is a key-value store of attribute snapshots, keyed by (domain, item
name). Get fails with ErrCacheMiss when the key is unknown, any other error
designates a backend failure and is never treated as a miss. Implementations
guarantee key-level atomicity of concurrent Get/Put.
*/
type Cache interface {
	Get(ctx context.Context, domain, name string) (Attributes, error)
	Put(ctx context.Context, domain, name string, attrs Attributes) error
	Del(ctx context.Context, domain, name string) error
}

//-----------------------------------------------------------------------------
//
// Errors
//
//-----------------------------------------------------------------------------

/*

EOS designates the end of the sequence, returned by ResultSet.Next once the
cursor is exhausted.
*/
type EOS struct{}

func (EOS) Error() string { return "end of stream" }

/*

NotFound is an error to handle unknown items
*/
type NotFound struct {
	Domain string
	Name   string
}

func (e NotFound) Error() string {
	return fmt.Sprintf("Not Found (%s, %s)", e.Domain, e.Name)
}

func (e NotFound) NotFound() string { return e.Domain + "/" + e.Name }
