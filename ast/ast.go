// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines a value tree for JSON documents, and a parser that
// constructs value trees from forgiving JSON source.
package ast

import (
	"fmt"
	"maps"
	"math"
	"reflect"
	"slices"
	"strconv"

	"github.com/creachadair/fjson"
)

// A Value is an arbitrary JSON value.
type Value interface {
	// JSON returns the compact canonical JSON encoding of the value.
	JSON() string

	appendJSON([]byte) []byte
}

// A Number is a Value that represents a number, either Int or Float.
type Number interface {
	Value

	// Float64 returns the value as a floating-point number.
	Float64() float64

	// IsInt reports whether the value is an integer.
	IsInt() bool
}

type nullValue struct{}

// Null is the null constant.
var Null Value = nullValue{}

// JSON satisfies the Value interface.
func (nullValue) JSON() string { return "null" }

func (nullValue) appendJSON(buf []byte) []byte { return append(buf, "null"...) }

func (nullValue) String() string { return "null" }

// A Bool is a Boolean constant, true or false.
type Bool bool

// JSON satisfies the Value interface.
func (b Bool) JSON() string { return strconv.FormatBool(bool(b)) }

func (b Bool) appendJSON(buf []byte) []byte { return strconv.AppendBool(buf, bool(b)) }

// An Int is an integer value.
type Int int64

// JSON satisfies the Value interface.
func (z Int) JSON() string { return strconv.FormatInt(int64(z), 10) }

func (z Int) appendJSON(buf []byte) []byte { return strconv.AppendInt(buf, int64(z), 10) }

// Float64 satisfies the Number interface.
func (z Int) Float64() float64 { return float64(z) }

// IsInt satisfies the Number interface. It reports true.
func (Int) IsInt() bool { return true }

// A Float is a floating-point value.
type Float float64

// JSON satisfies the Value interface. The encoding always contains a decimal
// point or an exponent, so that it decodes as a Float and not an Int.
// Non-finite values encode as null.
func (f Float) JSON() string { return string(f.appendJSON(nil)) }

func (f Float) appendJSON(buf []byte) []byte {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return append(buf, "null"...)
	}

	// Follow the encoding/json choice of format: exponents for very large and
	// very small magnitudes only.
	format := byte('f')
	if abs := math.Abs(v); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	start := len(buf)
	buf = strconv.AppendFloat(buf, v, format, -1, 64)
	if format == 'e' {
		// Clean up e-09 to e-9.
		if n := len(buf); n-start >= 4 && buf[n-4] == 'e' && buf[n-3] == '-' && buf[n-2] == '0' {
			buf[n-2] = buf[n-1]
			buf = buf[:n-1]
		}
		return buf
	}
	for _, c := range buf[start:] {
		if c == '.' {
			return buf
		}
	}
	return append(buf, ".0"...)
}

// Float64 satisfies the Number interface.
func (f Float) Float64() float64 { return float64(f) }

// IsInt satisfies the Number interface. It reports false.
func (Float) IsInt() bool { return false }

// A String is a string value.
type String string

// JSON satisfies the Value interface.
func (s String) JSON() string { return fjson.Quote(string(s)) }

func (s String) appendJSON(buf []byte) []byte { return fjson.AppendQuote(buf, string(s)) }

// An Array is a sequence of values.
type Array []Value

// ArrayOf constructs an array from the given values.
func ArrayOf(vs ...Value) Array { return Array(vs) }

// Len reports the number of elements of a.
func (a Array) Len() int { return len(a) }

// JSON satisfies the Value interface.
func (a Array) JSON() string { return string(a.appendJSON(nil)) }

func (a Array) appendJSON(buf []byte) []byte {
	buf = append(buf, '[')
	for i, v := range a {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = v.appendJSON(buf)
	}
	return append(buf, ']')
}

// An Object is a collection of key-value members, in order.
type Object []*Member

// Len reports the number of members of o.
func (o Object) Len() int { return len(o) }

// Find returns the member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	for _, m := range o {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Keys returns the keys of o in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, m := range o {
		keys[i] = m.Key
	}
	return keys
}

// JSON satisfies the Value interface.
func (o Object) JSON() string { return string(o.appendJSON(nil)) }

func (o Object) appendJSON(buf []byte) []byte {
	buf = append(buf, '{')
	for i, m := range o {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = m.appendJSON(buf)
	}
	return append(buf, '}')
}

// A Member is a single key-value pair belonging to an Object.
type Member struct {
	Key   string
	Value Value
}

// Field constructs an object member with the given key and value.
func Field(key string, val Value) *Member { return &Member{Key: key, Value: val} }

// JSON renders the member as "key":value.
func (m *Member) JSON() string { return string(m.appendJSON(nil)) }

func (m *Member) appendJSON(buf []byte) []byte {
	buf = fjson.AppendQuote(buf, m.Key)
	buf = append(buf, ':')
	return m.Value.appendJSON(buf)
}

// ToString returns the compact canonical JSON encoding of v.
func ToString(v Value) string { return v.JSON() }

// ToValue converts a Go value to a Value. Strings, Booleans, integer and
// floating-point types, nil, and slices and string-keyed maps of these, are
// supported. Values that already implement Value are returned unchanged.
// Map keys are ordered lexicographically. ToValue panics for other types.
func ToValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case Value:
		return t
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case int:
		return Int(t)
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case []any:
		out := make(Array, len(t))
		for i, e := range t {
			out[i] = ToValue(e)
		}
		return out
	case map[string]any:
		return objectFromMap(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u := rv.Uint(); u <= math.MaxInt64 {
			return Int(u)
		}
		return Float(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float())
	case reflect.String:
		return String(rv.String())
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.Slice, reflect.Array:
		out := make(Array, rv.Len())
		for i := range rv.Len() {
			out[i] = ToValue(rv.Index(i).Interface())
		}
		return out
	}
	panic(fmt.Sprintf("unsupported value type %T", v))
}

func objectFromMap(m map[string]any) Object {
	out := make(Object, 0, len(m))
	for _, key := range slices.Sorted(maps.Keys(m)) {
		out = append(out, Field(key, ToValue(m[key])))
	}
	return out
}

// Equal reports whether a and b are structurally equal. Int and Float values
// are never equal to each other, and object members are compared in order.
func Equal(a, b Value) bool {
	switch at := a.(type) {
	case Array:
		bt, ok := b.(Array)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !Equal(at[i], bt[i]) {
				return false
			}
		}
		return true
	case Object:
		bt, ok := b.(Object)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if at[i].Key != bt[i].Key || !Equal(at[i].Value, bt[i].Value) {
				return false
			}
		}
		return true
	}
	return a == b
}
