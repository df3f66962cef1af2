// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package transform provides an ordered registry of plugins that rewrite or
// check parsed values, and a configurable normalizer.
//
// The parser does not consult the registry; callers apply it to the result
// of a parse:
//
//	v, err := ast.Parse(input)
//	...
//	out, err := reg.Apply(v)
package transform

import (
	"errors"
	"fmt"

	"github.com/creachadair/fjson/ast"
	"github.com/creachadair/mds/mapset"
)

// A Plugin transforms and validates parsed values.
type Plugin interface {
	// Name returns the unique name of the plugin.
	Name() string

	// Transform returns a rewritten copy of v. It must not modify v.
	Transform(v ast.Value) (ast.Value, error)

	// Validate reports an error if v is not acceptable to the plugin.
	Validate(v ast.Value) error
}

// A Registry is an ordered collection of plugins with distinct names.
// A zero Registry is ready for use, but is not safe for concurrent
// modification.
type Registry struct {
	plugins []Plugin
	names   mapset.Set[string]
}

// ErrDuplicate is reported by Register for a plugin whose name is already
// registered.
var ErrDuplicate = errors.New("duplicate plugin name")

// Register adds p to the end of r.
func (r *Registry) Register(p Plugin) error {
	name := p.Name()
	if r.names.Has(name) {
		return fmt.Errorf("register %q: %w", name, ErrDuplicate)
	}
	if r.names == nil {
		r.names = mapset.New[string]()
	}
	r.names.Add(name)
	r.plugins = append(r.plugins, p)
	return nil
}

// Len reports the number of registered plugins.
func (r *Registry) Len() int { return len(r.plugins) }

// Names returns the names of the registered plugins, in order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.plugins))
	for i, p := range r.plugins {
		out[i] = p.Name()
	}
	return out
}

// Get returns the plugin with the given name, or nil.
func (r *Registry) Get(name string) Plugin {
	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// Apply runs the Transform method of each plugin in registration order,
// passing each the output of the previous one, and then runs the Validate
// method of each plugin on the final value.
func (r *Registry) Apply(v ast.Value) (ast.Value, error) {
	for _, p := range r.plugins {
		out, err := p.Transform(v)
		if err != nil {
			return nil, fmt.Errorf("transform %q: %w", p.Name(), err)
		}
		v = out
	}
	if err := r.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Validate runs the Validate method of each plugin on v, in order, and
// reports the first error.
func (r *Registry) Validate(v ast.Value) error {
	for _, p := range r.plugins {
		if err := p.Validate(v); err != nil {
			return fmt.Errorf("validate %q: %w", p.Name(), err)
		}
	}
	return nil
}
