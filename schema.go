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
	"strings"
	"time"

	"github.com/fogfish/golem/hseq"
)

//
// Internal data structure to manage type schema
//

type kind int

const (
	kindSkip kind = iota
	kindString
	kindBool
	kindInt
	kindUint
	kindFloat
	kindTime
)

// field is a stored attribute of the record type
type field struct {
	name   string
	index  []int
	kind   kind
	ptr    bool
	recast bool
	isID   bool
}

/*

schema decodes the record type into the list of stored attributes. Fields
are declared with the `sdb:"name[,recast]"` tag, untagged fields are not
persisted. The embedded ID is the identity of the record, it never appears
in the attribute map.
*/
type schema struct {
	rtype  reflect.Type
	fields []field
	byName map[string]int
	id     []int
	recast string
}

var typeOfID = reflect.TypeOf(ID{})

func schemaOf[T any]() (*schema, error) {
	rt := reflect.TypeOf(new(T)).Elem()
	if rt.Kind() != reflect.Struct {
		return nil, errInvalidEntity.New(fmt.Errorf("%s is not a struct", rt))
	}

	seq := hseq.FMap(
		hseq.New[T](),
		func(t hseq.Type[T]) field {
			if t.StructField.Type == typeOfID {
				return field{isID: true, index: t.StructField.Index}
			}
			return fieldOf(t.StructField)
		},
	)

	s := &schema{
		rtype:  rt,
		fields: make([]field, 0, len(seq)),
		byName: make(map[string]int, len(seq)),
	}

	for _, f := range seq {
		switch {
		case f.isID:
			s.id = f.index
		case f.kind == kindSkip:
		default:
			if f.recast {
				if s.recast != "" {
					return nil, errInvalidEntity.New(
						fmt.Errorf("%s declares multiple recast attributes", rt))
				}
				s.recast = f.name
			}
			s.byName[f.name] = len(s.fields)
			s.fields = append(s.fields, f)
		}
	}

	if s.id == nil {
		s.id = findID(rt)
	}

	return s, nil
}

func findID(rt reflect.Type) []int {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.Anonymous && sf.Type == typeOfID {
			return sf.Index
		}
	}
	return nil
}

func fieldOf(sf reflect.StructField) field {
	if sf.PkgPath != "" {
		return field{kind: kindSkip}
	}

	tag := sf.Tag.Get("sdb")
	if tag == "" || tag == "-" {
		return field{kind: kindSkip}
	}

	opts := strings.Split(tag, ",")
	f := field{name: opts[0], index: sf.Index}
	if f.name == "" {
		f.name = sf.Name
	}
	for _, opt := range opts[1:] {
		if opt == "recast" {
			f.recast = true
		}
	}

	rt := sf.Type
	if rt.Kind() == reflect.Pointer {
		f.ptr = true
		rt = rt.Elem()
	}

	f.kind = kindOf(rt)
	return f
}

var typeOfTime = reflect.TypeOf(time.Time{})

func kindOf(rt reflect.Type) kind {
	if rt == typeOfTime {
		return kindTime
	}

	switch rt.Kind() {
	case reflect.String:
		return kindString
	case reflect.Bool:
		return kindBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return kindUint
	case reflect.Float32, reflect.Float64:
		return kindFloat
	default:
		return kindSkip
	}
}
