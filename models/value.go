// ABOUTME: Closed variant over the runtime shapes a schema-less field value can take
// ABOUTME: Classifies arbitrary Go values once so formatters can switch on Kind instead of probing
package models

import (
	"encoding/json"
	"reflect"
	"time"
)

// ValueKind identifies which variant a Value holds.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindLazyTime
	KindArray
	KindObject
	KindOther
)

var valueKindNames = map[ValueKind]string{
	KindNull:     "null",
	KindString:   "string",
	KindNumber:   "number",
	KindBool:     "bool",
	KindDate:     "date",
	KindLazyTime: "lazy-time",
	KindArray:    "array",
	KindObject:   "object",
	KindOther:    "other",
}

func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return "other"
}

// LazyTime is a timestamp that defers materialization behind an accessor.
// bson primitive.DateTime and Timestamp both satisfy it.
type LazyTime interface {
	Time() time.Time
}

// Value is a classified runtime value.
type Value struct {
	Kind ValueKind
	raw  any
}

// Raw returns the underlying value (dereferenced when it arrived as a pointer).
func (v Value) Raw() any {
	return v.raw
}

// ValueOf classifies an arbitrary value.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Value{Kind: KindNull}
	case string:
		return Value{Kind: KindString, raw: x}
	case bool:
		return Value{Kind: KindBool, raw: x}
	case json.Number:
		return Value{Kind: KindNumber, raw: x}
	case time.Time:
		return Value{Kind: KindDate, raw: x}
	case *time.Time:
		if x == nil {
			return Value{Kind: KindNull}
		}
		return Value{Kind: KindDate, raw: *x}
	case Record:
		return Value{Kind: KindObject, raw: x}
	case *Record:
		if x == nil {
			return Value{Kind: KindNull}
		}
		return Value{Kind: KindObject, raw: *x}
	case LazyTime:
		if isNilPointer(x) {
			return Value{Kind: KindNull}
		}
		return Value{Kind: KindLazyTime, raw: x}
	case interface{ Hex() string }:
		// Object identifiers render as their hex form.
		if isNilPointer(x) {
			return Value{Kind: KindNull}
		}
		return Value{Kind: KindString, raw: x.Hex()}
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Value{Kind: KindNull}
		}
		return ValueOf(rv.Elem().Interface())
	case reflect.String:
		return Value{Kind: KindString, raw: rv.String()}
	case reflect.Bool:
		return Value{Kind: KindBool, raw: rv.Bool()}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return Value{Kind: KindNumber, raw: v}
	case reflect.Slice:
		if rv.IsNil() {
			return Value{Kind: KindNull}
		}
		return Value{Kind: KindArray, raw: v}
	case reflect.Array:
		return Value{Kind: KindArray, raw: v}
	case reflect.Map:
		if rv.IsNil() {
			return Value{Kind: KindNull}
		}
		return Value{Kind: KindObject, raw: v}
	case reflect.Struct:
		return Value{Kind: KindObject, raw: v}
	default:
		return Value{Kind: KindOther, raw: v}
	}
}

// Len returns the element count of an array value, or 0.
func (v Value) Len() int {
	if v.Kind != KindArray {
		return 0
	}
	return reflect.ValueOf(v.raw).Len()
}

// Time materializes a date or lazy timestamp. The second return is false
// when the value is not temporal or its accessor panicked.
func (v Value) Time() (t time.Time, ok bool) {
	switch v.Kind {
	case KindDate:
		return v.raw.(time.Time), true
	case KindLazyTime:
		defer func() {
			if recover() != nil {
				t, ok = time.Time{}, false
			}
		}()
		return v.raw.(LazyTime).Time(), true
	default:
		return time.Time{}, false
	}
}

// IsEmpty reports null, absent or the empty string. Zero and false are not empty.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindNull:
		return true
	case KindString:
		return v.raw.(string) == ""
	default:
		return false
	}
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
