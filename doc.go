//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

/*
Package sdbrec implements typed records over AWS SimpleDB, a remote,
eventually consistent, schema-light attribute store reachable through
paginated select expressions.

The library solves the result-set problem of such stores: walking
multi-page selects transparently via continuation tokens, compensating
read-after-write inconsistency with a read-through cache that overrides
the remote answer, and rebuilding every row into the correct polymorphic
record type.

# Getting started

Define the domain model with a struct, declaring stored attributes with
the `sdb` tag and embedding ID for the identity:

	type Planet struct {
	  sdbrec.ID
	  Kind  string  `sdb:"kind,recast"`
	  Color string  `sdb:"color"`
	  Mass  float64 `sdb:"mass"`
	}

Create the typed access point to the domain, wiring the SimpleDB service
and optionally a cache:

	db := sdbrec.Must(sdbrec.New[Planet](
	  sdbrec.WithDomain("planets"),
	  sdbrec.WithService(sdb.Must(sdb.New())),
	  sdbrec.WithCache(memory.New()),
	))

Query with a lazy cursor, the library fetches pages on demand:

	rs := db.Find(sdbrec.Eq("color", "blue")).OrderBy("mass").Limit(20)
	for {
	  rec, err := rs.Next(ctx)
	  if errors.Is(err, sdbrec.EOS{}) {
	    break
	  }
	  if err != nil {
	    return err
	  }
	  planet := rec.(*Planet)
	  ...
	}

# Recast

The value of the attribute tagged `recast` selects the concrete record
type from the registry, so one domain holds a family of record types:

	reg := sdbrec.NewRegistry()
	sdbrec.Recast[GasGiant](reg, "gas_giant")

	db := sdbrec.Must(sdbrec.New[Planet](..., sdbrec.WithRegistry(reg)))

Rows whose kind attribute reads "gas_giant" come back as *GasGiant, all
others fall back to *Planet.

# Cache

The cache keeps the last known-good attribute snapshot per item. On every
fetched row the cache is consulted first and a hit overrides the remote
attributes, so a cursor observes local writes the store has not converged
to yet. See the cache/memory, cache/memcached and cache/ddb packages.
*/
package sdbrec
