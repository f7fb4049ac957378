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
	"errors"
	"fmt"
)

//
// The store is eventually consistent: a select may return rows older than
// the last local write. The cache keeps the last known-good snapshot per
// item and overrides the remote answer whenever both exist.
//

// fromCache looks the item up, distinguishing hit, miss and backend
// failure. A domain without cache always misses.
func (d *domain) fromCache(ctx context.Context, name string) (Attributes, bool, error) {
	if d.cache == nil {
		return nil, false, nil
	}

	attrs, err := d.cache.Get(ctx, d.name, name)
	switch {
	case errors.Is(err, ErrCacheMiss):
		return nil, false, nil

	case err != nil:
		err = errCacheIO.New(err)
		d.log.Warn().Err(err).
			Str("key", d.name+"/"+name).
			Msg("cache get failed")
		return nil, false, err

	case attrs == nil:
		return nil, false, errInvariant.New(
			fmt.Errorf("cache get of %s/%s reported neither hit nor miss", d.name, name))
	}

	return attrs, true, nil
}

// populate writes the snapshot into the cache, best effort
func (d *domain) populate(ctx context.Context, name string, attrs Attributes) {
	if d.cache == nil {
		return
	}

	if err := d.cache.Put(ctx, d.name, name, attrs); err != nil {
		d.log.Debug().Err(err).
			Str("key", d.name+"/"+name).
			Msg("cache put failed")
	}
}

// resolve reconciles one fetched row against the cache. A hit builds the
// record from the cached snapshot, ignoring the remote attributes. A miss
// builds from the row and populates the cache with the snapshot of the
// built record.
func (d *domain) resolve(ctx context.Context, row Item) (Record, error) {
	attrs, hit, err := d.fromCache(ctx, row.Name)
	if err != nil {
		return nil, err
	}

	if hit {
		rec, _, err := d.build(row.Name, attrs)
		return rec, err
	}

	rec, s, err := d.build(row.Name, row.Attrs)
	if err != nil {
		return nil, err
	}

	if snap, err := snapshot(rec, s); err == nil {
		d.populate(ctx, row.Name, snap)
	}

	return rec, nil
}
