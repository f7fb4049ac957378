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
	"strconv"
	"strings"
)

/*

ItemName is the identity pseudo-field of the store. It is usable in
predicates and ordering exactly like an attribute but never appears in any
attribute map:

	db.Find(sdbrec.Eq(sdbrec.ItemName, "P1"))
*/
const ItemName = "itemName()"

//-----------------------------------------------------------------------------
//
// Condition
//
//-----------------------------------------------------------------------------

const (
	opAnd = "and"
	opOr  = "or"
	opNot = "not"
)

/*

Condition is a single predicate of the select expression, composed with And,
Or and Not. Attribute names are not validated locally, an attribute unknown
to the store surfaces as an error of the select round-trip.
*/
type Condition struct {
	op     string
	field  string
	args   []any
	nested []Condition
}

func Eq(field string, v any) Condition { return Condition{op: "=", field: field, args: []any{v}} }
func Ne(field string, v any) Condition { return Condition{op: "!=", field: field, args: []any{v}} }
func Lt(field string, v any) Condition { return Condition{op: "<", field: field, args: []any{v}} }
func Le(field string, v any) Condition { return Condition{op: "<=", field: field, args: []any{v}} }
func Gt(field string, v any) Condition { return Condition{op: ">", field: field, args: []any{v}} }
func Ge(field string, v any) Condition { return Condition{op: ">=", field: field, args: []any{v}} }

// Like matches the value pattern, use % as the wildcard
func Like(field string, v any) Condition {
	return Condition{op: "like", field: field, args: []any{v}}
}

// In matches any of the given values. The store bounds the number of
// comparisons per expression, keep the list small.
func In(field string, vs ...any) Condition {
	return Condition{op: "in", field: field, args: vs}
}

// Between matches values of the closed range [lo, hi]
func Between(field string, lo, hi any) Condition {
	return Condition{op: "between", field: field, args: []any{lo, hi}}
}

// Null matches items without the attribute
func Null(field string) Condition { return Condition{op: "is null", field: field} }

// NotNull matches items carrying the attribute
func NotNull(field string) Condition { return Condition{op: "is not null", field: field} }

// And composes conditions into a conjunction. Nested conjunctions are
// flattened by the compiler, the order of conditions is preserved.
func And(cs ...Condition) Condition { return Condition{op: opAnd, nested: cs} }

// Or composes conditions into a disjunction
func Or(cs ...Condition) Condition { return Condition{op: opOr, nested: cs} }

// Not negates the condition
func Not(c Condition) Condition { return Condition{op: opNot, nested: []Condition{c}} }

//-----------------------------------------------------------------------------
//
// Compiler
//
//-----------------------------------------------------------------------------

type projection int

const (
	projectAll projection = iota
	projectCount
	projectName
)

func (p projection) String() string {
	switch p {
	case projectCount:
		return "count(*)"
	case projectName:
		return "itemName()"
	default:
		return "*"
	}
}

type order struct {
	field string
	desc  bool
}

// compileSelect translates the predicate, ordering and limit into the
// select expression of the store. It does no attribute validation.
func compileSelect(domain string, proj projection, conds []Condition, ord *order, limit int64) (string, error) {
	if domain == "" {
		return "", errMalformedQuery.New(fmt.Errorf("domain is not defined"))
	}
	if limit < 0 {
		return "", errMalformedQuery.New(fmt.Errorf("negative limit %d", limit))
	}

	sb := &strings.Builder{}
	sb.WriteString("select ")
	sb.WriteString(proj.String())
	sb.WriteString(" from ")
	sb.WriteString(quoteName(domain))

	if len(conds) != 0 {
		sb.WriteString(" where ")
		if err := emitAnd(sb, conds); err != nil {
			return "", err
		}
	}

	if ord != nil {
		if ord.field == "" {
			return "", errMalformedQuery.New(fmt.Errorf("order by empty attribute"))
		}
		sb.WriteString(" order by ")
		sb.WriteString(quoteField(ord.field))
		if ord.desc {
			sb.WriteString(" desc")
		}
	}

	if limit > 0 {
		sb.WriteString(" limit ")
		sb.WriteString(strconv.FormatInt(limit, 10))
	}

	return sb.String(), nil
}

// emitAnd writes the conjunction, flattening nested And conditions into a
// single and-chain without reordering.
func emitAnd(sb *strings.Builder, conds []Condition) error {
	head := true
	var walk func(cs []Condition) error

	walk = func(cs []Condition) error {
		for _, c := range cs {
			if c.op == opAnd {
				if err := walk(c.nested); err != nil {
					return err
				}
				continue
			}
			if !head {
				sb.WriteString(" and ")
			}
			head = false
			if err := emitCond(sb, c); err != nil {
				return err
			}
		}
		return nil
	}

	return walk(conds)
}

func emitCond(sb *strings.Builder, c Condition) error {
	switch c.op {
	case opAnd:
		sb.WriteString("(")
		if err := emitAnd(sb, c.nested); err != nil {
			return err
		}
		sb.WriteString(")")
		return nil

	case opOr:
		if len(c.nested) == 0 {
			return errMalformedQuery.New(fmt.Errorf("empty disjunction"))
		}
		sb.WriteString("(")
		for i, n := range c.nested {
			if i != 0 {
				sb.WriteString(" or ")
			}
			if err := emitCond(sb, n); err != nil {
				return err
			}
		}
		sb.WriteString(")")
		return nil

	case opNot:
		sb.WriteString("not (")
		if err := emitCond(sb, c.nested[0]); err != nil {
			return err
		}
		sb.WriteString(")")
		return nil
	}

	if c.field == "" {
		return errMalformedQuery.New(fmt.Errorf("predicate with empty attribute"))
	}

	sb.WriteString(quoteField(c.field))

	switch c.op {
	case "is null", "is not null":
		sb.WriteString(" ")
		sb.WriteString(c.op)
		return nil

	case "in":
		if len(c.args) == 0 {
			return errMalformedQuery.New(fmt.Errorf("empty in list for %s", c.field))
		}
		sb.WriteString(" in (")
		for i, v := range c.args {
			if i != 0 {
				sb.WriteString(", ")
			}
			if err := emitValue(sb, v); err != nil {
				return err
			}
		}
		sb.WriteString(")")
		return nil

	case "between":
		sb.WriteString(" between ")
		if err := emitValue(sb, c.args[0]); err != nil {
			return err
		}
		sb.WriteString(" and ")
		return emitValue(sb, c.args[1])

	case "=", "!=", "<", "<=", ">", ">=", "like":
		sb.WriteString(" ")
		sb.WriteString(c.op)
		sb.WriteString(" ")
		return emitValue(sb, c.args[0])
	}

	return errMalformedQuery.New(fmt.Errorf("unknown operator %q", c.op))
}

func emitValue(sb *strings.Builder, v any) error {
	val, err := encodeValue(v)
	if err != nil {
		return err
	}

	sb.WriteString("'")
	sb.WriteString(strings.ReplaceAll(val, "'", "''"))
	sb.WriteString("'")
	return nil
}

// quoteField emits the attribute name, passing the identity pseudo-field
// through verbatim.
func quoteField(field string) string {
	if field == ItemName {
		return field
	}
	return quoteName(field)
}

func quoteName(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
