//
// Copyright (C) 2022 Dmitry Kolesnikov
//
// This file may be modified and distributed under the terms
// of the MIT license.  See the LICENSE file for details.
// https://github.com/fogfish/sdbrec
//

package sdbrec

import (
	"errors"

	"github.com/fogfish/faults"
)

const (
	errMalformedQuery   = faults.Type("malformed query")
	errInvalidEntity    = faults.Type("invalid entity")
	errCacheIO          = faults.Type("cache i/o failed")
	errInvariant        = faults.Type("cache reconciliation reached impossible state")
	errUndefinedService = faults.Type("undefined storage service")
)

// ErrCacheMiss designates a clean cache miss, distinguishable from the
// backend failure. Cache drivers translate their native miss into it.
var ErrCacheMiss = errors.New("cache miss")
