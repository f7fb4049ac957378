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
	"strconv"
	"time"
)

//
// SimpleDB stores attribute values as strings and compares them
// lexicographically. The codec encodes typed struct fields into strings so
// that equality and range predicates remain valid: integers are offset into
// the unsigned plane and zero padded, timestamps use RFC 3339. Query
// literals pass through the same encoding.
//

const signBit = uint64(1) << 63

func encodeInt(v int64) string { return fmt.Sprintf("%020d", uint64(v)^signBit) }

func decodeInt(s string) (int64, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return int64(u ^ signBit), nil
}

func encodeUint(v uint64) string { return fmt.Sprintf("%020d", v) }

// encodeValue encodes a query literal exactly as the codec stores it.
func encodeValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return encodeInt(int64(x)), nil
	case int8:
		return encodeInt(int64(x)), nil
	case int16:
		return encodeInt(int64(x)), nil
	case int32:
		return encodeInt(int64(x)), nil
	case int64:
		return encodeInt(x), nil
	case uint:
		return encodeUint(uint64(x)), nil
	case uint8:
		return encodeUint(uint64(x)), nil
	case uint16:
		return encodeUint(uint64(x)), nil
	case uint32:
		return encodeUint(uint64(x)), nil
	case uint64:
		return encodeUint(x), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 64), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case time.Time:
		return x.UTC().Format(time.RFC3339), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return encodeInt(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return encodeUint(rv.Uint()), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	}

	return "", errMalformedQuery.New(fmt.Errorf("unsupported literal %T", v))
}

func encodeField(fv reflect.Value, k kind) string {
	switch k {
	case kindString:
		return fv.String()
	case kindBool:
		return strconv.FormatBool(fv.Bool())
	case kindInt:
		return encodeInt(fv.Int())
	case kindUint:
		return encodeUint(fv.Uint())
	case kindFloat:
		return strconv.FormatFloat(fv.Float(), 'g', -1, 64)
	case kindTime:
		return fv.Interface().(time.Time).UTC().Format(time.RFC3339)
	}
	return ""
}

func decodeField(fv reflect.Value, k kind, s string) error {
	switch k {
	case kindString:
		fv.SetString(s)
	case kindBool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(v)
	case kindInt:
		v, err := decodeInt(s)
		if err != nil {
			return err
		}
		if fv.OverflowInt(v) {
			return fmt.Errorf("value %d overflows %s", v, fv.Type())
		}
		fv.SetInt(v)
	case kindUint:
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return err
		}
		if fv.OverflowUint(v) {
			return fmt.Errorf("value %d overflows %s", v, fv.Type())
		}
		fv.SetUint(v)
	case kindFloat:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		fv.SetFloat(v)
	case kindTime:
		v, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(v))
	}
	return nil
}

//-----------------------------------------------------------------------------
//
// Record hydration
//
//-----------------------------------------------------------------------------

func structOf(rec Record, s *schema) (reflect.Value, error) {
	rv := reflect.ValueOf(rec)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != s.rtype {
		return reflect.Value{}, errInvalidEntity.New(
			fmt.Errorf("%T is not *%s", rec, s.rtype))
	}
	return rv.Elem(), nil
}

// hydrate populates the record from the item name and attribute map.
// Attributes unknown to the schema are ignored, the store is schema-light.
func hydrate(rec Record, s *schema, name string, attrs Attributes) error {
	rv, err := structOf(rec, s)
	if err != nil {
		return err
	}

	if s.id != nil {
		rv.FieldByIndex(s.id).Field(0).SetString(name)
	}

	for _, f := range s.fields {
		val, has := attrs[f.name]
		if !has {
			continue
		}

		fv := rv.FieldByIndex(f.index)
		if f.ptr {
			fv.Set(reflect.New(fv.Type().Elem()))
			fv = fv.Elem()
		}

		if err := decodeField(fv, f.kind, val); err != nil {
			return errInvalidEntity.New(
				fmt.Errorf("attribute %s of %s: %w", f.name, s.rtype, err))
		}
	}

	return nil
}

// snapshot encodes the record into its attribute map. Nil pointers and
// empty strings are absent attributes, the identity is never included.
func snapshot(rec Record, s *schema) (Attributes, error) {
	rv, err := structOf(rec, s)
	if err != nil {
		return nil, err
	}

	attrs := make(Attributes, len(s.fields))
	for _, f := range s.fields {
		fv := rv.FieldByIndex(f.index)
		if f.ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}

		val := encodeField(fv, f.kind)
		if val == "" {
			continue
		}
		attrs[f.name] = val
	}

	return attrs, nil
}

// setName assigns the identity of the record
func setName(rec Record, s *schema, name string) error {
	rv, err := structOf(rec, s)
	if err != nil {
		return err
	}
	if s.id == nil {
		return errInvalidEntity.New(
			fmt.Errorf("%s has no embedded identity", s.rtype))
	}

	rv.FieldByIndex(s.id).Field(0).SetString(name)
	return nil
}

// patch applies attribute keyed values by direct field assignment
func patch(rec Record, s *schema, values map[string]any) error {
	rv, err := structOf(rec, s)
	if err != nil {
		return err
	}

	for attr, v := range values {
		at, has := s.byName[attr]
		if !has {
			return errInvalidEntity.New(
				fmt.Errorf("unknown attribute %s of %s", attr, s.rtype))
		}

		fv := rv.FieldByIndex(s.fields[at].index)
		if v == nil {
			fv.SetZero()
			continue
		}

		val := reflect.ValueOf(v)
		switch {
		case val.Type().AssignableTo(fv.Type()):
			fv.Set(val)
		case fv.Kind() == reflect.Pointer && val.Type().AssignableTo(fv.Type().Elem()):
			p := reflect.New(fv.Type().Elem())
			p.Elem().Set(val)
			fv.Set(p)
		case val.Type().ConvertibleTo(fv.Type()) &&
			(fv.Kind() != reflect.String || val.Kind() == reflect.String):
			fv.Set(val.Convert(fv.Type()))
		default:
			return errInvalidEntity.New(
				fmt.Errorf("attribute %s of %s is not assignable from %T", attr, s.rtype, v))
		}
	}

	return nil
}
