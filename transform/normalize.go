// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package transform

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/creachadair/fjson/ast"
)

// A Normalizer is a Plugin that rewrites values into a canonical form.
// A zero Normalizer returns its input unchanged.
type Normalizer struct {
	SortKeys              bool // order object members by key
	RemoveNulls           bool // drop null members and array elements
	RemoveEmptyContainers bool // drop empty array and object members and elements
	PreferIntegers        bool // convert integral floats to integers
	TrimStrings           bool // remove leading and trailing whitespace from strings
	LowercaseStrings      bool // convert strings to lower case
	DedupeArrays          bool // sort array elements and remove duplicates

	// MaxDepth, if positive, is the depth below which values are copied
	// unchanged.
	MaxDepth int
}

// DefaultNormalizer returns a Normalizer that sorts keys and prefers
// integers, with a depth limit of 100.
func DefaultNormalizer() *Normalizer {
	return &Normalizer{SortKeys: true, PreferIntegers: true, MaxDepth: 100}
}

// Name satisfies the Plugin interface.
func (*Normalizer) Name() string { return "normalizer" }

// Validate satisfies the Plugin interface. It accepts all values.
func (*Normalizer) Validate(ast.Value) error { return nil }

// Transform satisfies the Plugin interface.
func (n *Normalizer) Transform(v ast.Value) (ast.Value, error) { return n.normalize(v, 0), nil }

func (n *Normalizer) normalize(v ast.Value, depth int) ast.Value {
	if n.MaxDepth > 0 && depth >= n.MaxDepth {
		return v
	}
	switch t := v.(type) {
	case ast.Object:
		out := make(ast.Object, 0, len(t))
		for _, m := range t {
			mv := n.normalize(m.Value, depth+1)
			if n.drop(mv) {
				continue
			}
			out = append(out, ast.Field(m.Key, mv))
		}
		if n.SortKeys {
			slices.SortStableFunc(out, func(a, b *ast.Member) int {
				return strings.Compare(a.Key, b.Key)
			})
		}
		return out

	case ast.Array:
		out := make(ast.Array, 0, len(t))
		for _, e := range t {
			ev := n.normalize(e, depth+1)
			if !n.drop(ev) {
				out = append(out, ev)
			}
		}
		if n.DedupeArrays {
			slices.SortStableFunc(out, compareValues)
			out = slices.CompactFunc(out, ast.Equal)
		}
		return out

	case ast.String:
		s := string(t)
		if n.TrimStrings {
			s = strings.TrimSpace(s)
		}
		if n.LowercaseStrings {
			s = strings.ToLower(s)
		}
		return ast.String(s)

	case ast.Float:
		f := float64(t)
		if n.PreferIntegers && f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return ast.Int(int64(f))
		}
		return t
	}
	return v
}

func (n *Normalizer) drop(v ast.Value) bool {
	if n.RemoveNulls && v == ast.Null {
		return true
	}
	if n.RemoveEmptyContainers {
		switch t := v.(type) {
		case ast.Array:
			return len(t) == 0
		case ast.Object:
			return len(t) == 0
		}
	}
	return false
}

// rank orders the kinds of value: null, Booleans, numbers, strings, arrays,
// and objects.
func rank(v ast.Value) int {
	switch v.(type) {
	case ast.Bool:
		return 1
	case ast.Int, ast.Float:
		return 2
	case ast.String:
		return 3
	case ast.Array:
		return 4
	case ast.Object:
		return 5
	}
	return 0
}

// compareValues is a total order on values used for deduplication. Objects
// compare by their encodings.
func compareValues(a, b ast.Value) int {
	if c := cmp.Compare(rank(a), rank(b)); c != 0 {
		return c
	}
	switch at := a.(type) {
	case ast.Bool:
		bt := b.(ast.Bool)
		if at == bt {
			return 0
		} else if !at {
			return -1
		}
		return 1
	case ast.Int:
		if bt, ok := b.(ast.Int); ok {
			return cmp.Compare(at, bt)
		}
		return cmp.Compare(at.Float64(), b.(ast.Number).Float64())
	case ast.Float:
		return cmp.Compare(at.Float64(), b.(ast.Number).Float64())
	case ast.String:
		return strings.Compare(string(at), string(b.(ast.String)))
	case ast.Array:
		bt := b.(ast.Array)
		for i := range min(len(at), len(bt)) {
			if c := compareValues(at[i], bt[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(at), len(bt))
	case ast.Object:
		return strings.Compare(at.JSON(), b.JSON())
	}
	return 0
}
