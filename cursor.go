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
// cursor state
//
const (
	stateUnfetched = iota
	stateFetching
	stateRefetching
	stateReady
	stateExhausted
)

/*

ResultSet is a lazy cursor over matched records. It drives the store page
by page on demand, reconciles every row against the cache and instantiates
typed records one at a time.

The cursor is configured before the first access:

	rs := db.Find(sdbrec.Eq("color", "blue")).
	  OrderBy("mass").
	  Limit(20).
	  Consistent()

Next is the only iteration primitive, all other operations are built on
draining the cursor with it. A cursor is not safe for concurrent use.
*/
type ResultSet struct {
	domain *domain

	conds      []Condition
	ord        *order
	limit      int64
	consistent bool
	overlay    map[string]any

	expr  string
	token string
	page  *Page
	pos   int
	state int
	err   error
}

func newResultSet(d *domain, conds []Condition) *ResultSet {
	return &ResultSet{
		domain:     d,
		conds:      conds,
		consistent: d.consistent,
		state:      stateUnfetched,
	}
}

//-----------------------------------------------------------------------------
//
// Configuration, effective before the first access
//
//-----------------------------------------------------------------------------

// OrderBy sorts the sequence by the attribute in ascending order. The store
// requires the sort attribute to be constrained by the predicate.
func (rs *ResultSet) OrderBy(field string) *ResultSet {
	rs.ord = &order{field: field}
	return rs
}

// OrderByDesc sorts the sequence by the attribute in descending order
func (rs *ResultSet) OrderByDesc(field string) *ResultSet {
	rs.ord = &order{field: field, desc: true}
	return rs
}

// Limit caps the rows of a single fetch, the sequence still follows
// continuation tokens across pages. Use Token and Continue to cut the
// sequence at a page boundary and resume it later.
func (rs *ResultSet) Limit(n int64) *ResultSet {
	rs.limit = n
	return rs
}

// Continue resumes the sequence from the continuation token
func (rs *ResultSet) Continue(token string) *ResultSet {
	rs.token = token
	return rs
}

// Consistent requests strongly consistent reads from the store
func (rs *ResultSet) Consistent() *ResultSet {
	rs.consistent = true
	return rs
}

// Overlay assigns the attribute keyed values to every record the cursor
// yields, after instantiation. The mutation is not persisted unless the
// record is explicitly written back.
func (rs *ResultSet) Overlay(values map[string]any) *ResultSet {
	rs.overlay = values
	return rs
}

// Token is the continuation token at the cursor position, empty when the
// store reported no further pages.
func (rs *ResultSet) Token() string { return rs.token }

// Error returns the sticky error of the sequence evaluation
func (rs *ResultSet) Error() error { return rs.err }

//-----------------------------------------------------------------------------
//
// Iteration
//
//-----------------------------------------------------------------------------

// Next yields the record at the cursor position, fetching pages on demand.
// It returns EOS once the sequence is exhausted, permanently.
func (rs *ResultSet) Next(ctx context.Context) (Record, error) {
	if rs.err != nil {
		return nil, rs.err
	}

	switch rs.state {
	case stateExhausted:
		return nil, EOS{}
	case stateUnfetched:
		if err := rs.fetch(ctx, stateFetching); err != nil {
			return nil, err
		}
	}

	for rs.pos >= len(rs.page.Items) {
		if rs.token == "" {
			rs.state = stateExhausted
			return nil, EOS{}
		}
		if err := rs.fetch(ctx, stateRefetching); err != nil {
			return nil, err
		}
	}

	row := rs.page.Items[rs.pos]
	rs.pos++

	rec, err := rs.domain.resolve(ctx, row)
	if err != nil {
		return nil, err
	}

	if err := rs.applyOverlay(rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// fetch loads the next page, resetting the position to the head
func (rs *ResultSet) fetch(ctx context.Context, transient int) error {
	if rs.expr == "" {
		expr, err := compileSelect(rs.domain.name, projectAll, rs.conds, rs.ord, rs.limit)
		if err != nil {
			rs.err = err
			return err
		}
		rs.expr = expr
	}

	rs.state = transient
	page, err := rs.domain.service.Select(ctx, &SelectQuery{
		Expr:       rs.expr,
		Token:      rs.token,
		Consistent: rs.consistent,
	})
	if err != nil {
		rs.err = err
		return err
	}

	rs.page = page
	rs.pos = 0
	rs.token = page.Token
	rs.state = stateReady
	return nil
}

func (rs *ResultSet) applyOverlay(rec Record) error {
	if len(rs.overlay) == 0 {
		return nil
	}

	s, err := rs.domain.schemaFor(rec)
	if err != nil {
		return err
	}
	return patch(rec, s, rs.overlay)
}

// FMap applies the transformer to every record of the sequence
func (rs *ResultSet) FMap(ctx context.Context, f func(Record) error) error {
	for {
		rec, err := rs.Next(ctx)
		if errors.Is(err, EOS{}) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := f(rec); err != nil {
			return err
		}
	}
}

// All drains the cursor and returns every record produced, honoring
// whatever iteration state already existed.
func (rs *ResultSet) All(ctx context.Context) ([]Record, error) {
	seq := []Record{}
	for {
		rec, err := rs.Next(ctx)
		if errors.Is(err, EOS{}) {
			return seq, nil
		}
		if err != nil {
			return seq, err
		}
		seq = append(seq, rec)
	}
}

//-----------------------------------------------------------------------------
//
// Operations built on draining
//
//-----------------------------------------------------------------------------

// drain consumes the cursor, collecting the identities it produces
func (rs *ResultSet) drain(ctx context.Context) ([]any, error) {
	names := []any{}
	err := rs.FMap(ctx, func(rec Record) error {
		names = append(names, rec.ItemName())
		return nil
	})
	return names, err
}

// Count drains the cursor and returns the number of records it produced.
// With an extra predicate it instead issues one remote count constrained to
// the drained identities and the predicate. Either way the cursor is fully
// consumed as a side effect, it cannot be iterated afterwards.
func (rs *ResultSet) Count(ctx context.Context, extra ...Condition) (int64, error) {
	names, err := rs.drain(ctx)
	if err != nil {
		return 0, err
	}

	if len(extra) == 0 {
		return int64(len(names)), nil
	}
	if len(names) == 0 {
		return 0, nil
	}

	conds := append([]Condition{In(ItemName, names...)}, extra...)
	expr, err := compileSelect(rs.domain.name, projectCount, conds, nil, 0)
	if err != nil {
		return 0, err
	}

	q := &SelectQuery{Expr: expr, Consistent: rs.consistent}
	total := int64(0)
	for {
		cp, err := rs.domain.service.SelectCount(ctx, q)
		if err != nil {
			return 0, err
		}
		total += cp.Count
		if cp.Token == "" {
			return total, nil
		}
		q.Token = cp.Token
	}
}

// Search drains the cursor and returns a fresh cursor narrowed to the
// drained identities and the extra predicate, inheriting the consistency
// flag and the overlay. The identity list is bounded by the store's
// per-query comparison limit, narrow small result sets only.
func (rs *ResultSet) Search(ctx context.Context, extra ...Condition) (*ResultSet, error) {
	names, err := rs.drain(ctx)
	if err != nil {
		return nil, err
	}

	sub := newResultSet(rs.domain, nil)
	sub.consistent = rs.consistent
	sub.overlay = rs.overlay

	if len(names) == 0 {
		sub.state = stateExhausted
		return sub, nil
	}

	sub.conds = append([]Condition{In(ItemName, names...)}, extra...)
	return sub, nil
}

// Update drains the cursor, assigning the attribute keyed values to every
// record and writing it back, one record at a time. The operation is not
// atomic, a failure leaves the records updated so far persisted.
func (rs *ResultSet) Update(ctx context.Context, values map[string]any) error {
	return rs.FMap(ctx, func(rec Record) error {
		s, err := rs.domain.schemaFor(rec)
		if err != nil {
			return err
		}
		if err := patch(rec, s, values); err != nil {
			return err
		}
		return rs.domain.save(ctx, rec, s)
	})
}

// Delete drains the cursor, deleting every record in turn. Same partial
// failure semantics as Update.
func (rs *ResultSet) Delete(ctx context.Context) error {
	return rs.FMap(ctx, func(rec Record) error {
		return rs.domain.delete(ctx, rec.ItemName())
	})
}

//-----------------------------------------------------------------------------
//
// Pagination
//
//-----------------------------------------------------------------------------

// Paginate fast-forwards a freshly constructed cursor to the head of the
// requested page. When the cursor carries no limit, perPage becomes the
// limit. Pages are numbered from one, the first page is a no-op. The skip
// is implemented with count queries issued purely to obtain the
// continuation token of the offset.
func (rs *ResultSet) Paginate(ctx context.Context, perPage, page int) (*ResultSet, error) {
	if rs.err != nil {
		return rs, rs.err
	}
	if perPage <= 0 || page <= 0 {
		return rs, errMalformedQuery.New(fmt.Errorf("invalid page %d of size %d", page, perPage))
	}
	if rs.state != stateUnfetched {
		return rs, errMalformedQuery.New(fmt.Errorf("cursor is already iterated"))
	}

	if rs.limit == 0 {
		rs.Limit(int64(perPage))
	}
	if page == 1 {
		return rs, nil
	}

	remaining := int64(perPage) * int64(page-1)
	token := rs.token
	for {
		expr, err := compileSelect(rs.domain.name, projectCount, rs.conds, rs.ord, remaining)
		if err != nil {
			rs.err = err
			return rs, err
		}

		cp, err := rs.domain.service.SelectCount(ctx, &SelectQuery{
			Expr:       expr,
			Token:      token,
			Consistent: rs.consistent,
		})
		if err != nil {
			rs.err = err
			return rs, err
		}

		remaining -= cp.Count
		token = cp.Token

		if token == "" {
			// the store ran out of rows before the offset
			rs.state = stateExhausted
			return rs, nil
		}
		if remaining <= 0 {
			rs.token = token
			return rs, nil
		}
	}
}
