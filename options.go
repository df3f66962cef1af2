// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package fjson

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"gopkg.in/yaml.v3"
)

// Options control which relaxations of the JSON grammar the scanner and parser
// accept, and whether syntax faults are repaired. Options are plain values and
// may be shared freely between concurrent parses.
type Options struct {
	AllowComments        bool `yaml:"allow_comments"`         // "//", "#" and "/* */" comments
	AllowTrailingCommas  bool `yaml:"allow_trailing_commas"`  // [1, 2,] and {"a": 1,}
	AllowUnquotedKeys    bool `yaml:"allow_unquoted_keys"`    // {key: 1}
	AllowSingleQuotes    bool `yaml:"allow_single_quotes"`    // 'text'
	ImplicitTopLevel     bool `yaml:"implicit_top_level"`     // a: 1, b: 2 and 1, 2, 3
	NewlineAsComma       bool `yaml:"newline_as_comma"`       // line breaks separate elements
	AllowExtendedNumbers bool `yaml:"allow_extended_numbers"` // 0x1F, +1, .5, 5., 1_000

	// MaxDepth is the maximum nesting depth of arrays and objects.
	// An implicit top-level container counts as one level.
	MaxDepth int `yaml:"max_depth"`

	// If EnableRepair is true, syntax faults are fixed inline when a repair
	// pattern applies, up to MaxRepairs fixes per document.
	EnableRepair bool `yaml:"enable_repair"`
	MaxRepairs   int  `yaml:"max_repairs"`

	// If FastRepair is true, the first applicable fix is taken rather than the
	// best-scoring one.
	FastRepair bool `yaml:"fast_repair"`

	// If ReportRepairs is true, the fixes applied are recorded and returned
	// with the parse result.
	ReportRepairs bool `yaml:"report_repairs"`
}

// Default limits.
const (
	DefaultMaxDepth   = 128
	DefaultMaxRepairs = 100
)

// DefaultOptions returns the default options: every relaxation is enabled,
// and repair is enabled with reporting.
func DefaultOptions() Options {
	return Options{
		AllowComments:        true,
		AllowTrailingCommas:  true,
		AllowUnquotedKeys:    true,
		AllowSingleQuotes:    true,
		ImplicitTopLevel:     true,
		NewlineAsComma:       true,
		AllowExtendedNumbers: true,
		MaxDepth:             DefaultMaxDepth,
		EnableRepair:         true,
		MaxRepairs:           DefaultMaxRepairs,
		ReportRepairs:        true,
	}
}

// StrictOptions returns options that accept only standard JSON.
func StrictOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth, MaxRepairs: DefaultMaxRepairs}
}

// LoadOptions decodes YAML-formatted options from data. Settings not mentioned
// in data keep their default values (see DefaultOptions).
func LoadOptions(data []byte) (Options, error) {
	opts := DefaultOptions()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("decode options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Validate reports an error if o has invalid limit settings.
func (o Options) Validate() error {
	if o.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", o.MaxDepth)
	}
	if o.MaxRepairs < 0 {
		return fmt.Errorf("max_repairs must be non-negative, got %d", o.MaxRepairs)
	}
	return nil
}

// Set sets the option with the given name to value. Names may be given in
// snake case ("allow_comments"), kebab case ("allow-comments"), or camel case
// ("allowComments", "AllowComments").
func (o *Options) Set(name, value string) error {
	key := strcase.ToSnake(strings.TrimSpace(name))
	if p, ok := o.intField(key); ok {
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("option %q: invalid integer %q", key, value)
		}
		*p = v
		return o.Validate()
	}
	if p, ok := o.boolField(key); ok {
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("option %q: invalid Boolean %q", key, value)
		}
		*p = v
		return nil
	}
	return fmt.Errorf("unknown option %q", name)
}

func (o *Options) intField(key string) (*int, bool) {
	switch key {
	case "max_depth":
		return &o.MaxDepth, true
	case "max_repairs":
		return &o.MaxRepairs, true
	}
	return nil, false
}

func (o *Options) boolField(key string) (*bool, bool) {
	switch key {
	case "allow_comments":
		return &o.AllowComments, true
	case "allow_trailing_commas":
		return &o.AllowTrailingCommas, true
	case "allow_unquoted_keys":
		return &o.AllowUnquotedKeys, true
	case "allow_single_quotes":
		return &o.AllowSingleQuotes, true
	case "implicit_top_level":
		return &o.ImplicitTopLevel, true
	case "newline_as_comma":
		return &o.NewlineAsComma, true
	case "allow_extended_numbers":
		return &o.AllowExtendedNumbers, true
	case "enable_repair":
		return &o.EnableRepair, true
	case "fast_repair":
		return &o.FastRepair, true
	case "report_repairs":
		return &o.ReportRepairs, true
	}
	return nil, false
}
