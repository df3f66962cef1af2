// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package fjson implements a scanner and the common types for a forgiving
// JSON parser.
//
// Forgiving JSON is a superset of JSON. Depending on the Options in effect it
// also accepts comments, trailing commas, unquoted object keys and string
// values, single-quoted strings, line breaks in place of commas, extended
// numeric literals, and top-level sequences of values or object members
// without enclosing brackets. When repair is enabled, common mistakes such as
// a missing comma or an unclosed array are fixed as the input is parsed.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for forgiving JSON. Construct
// a scanner from an input buffer and call its Next method to iterate over the
// tokens. Next advances to the next input token and returns nil, or reports
// an error:
//
//	s := fjson.NewScanner(input, fjson.DefaultOptions())
//	for s.Next() == nil {
//	   log.Printf("Next token: %v", s.Token())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other error
// has concrete type *fjson.Error and describes a lexical error in the input.
//
//	if s.Err() != io.EOF {
//	   log.Fatalf("Scanning failed: %v", s.Err())
//	}
//
// # Parsing
//
// The ast package parses input into a tree of values:
//
//	v, err := ast.Parse(input)
//
// To control the grammar and the repair engine, use ParseWithOptions or
// ParseDocument. ParseDocument also returns a record of each repair made:
//
//	opts := fjson.DefaultOptions()
//	opts.AllowSingleQuotes = false
//	doc, err := ast.ParseDocument(input, opts)
//	...
//	for _, r := range doc.Repairs {
//	   log.Printf("Repaired: %v", r)
//	}
//
// # Errors
//
// Errors from the scanner and the parser have concrete type *Error, which
// carries the location of the problem, a suggestion for fixing it, and an
// ErrorKind. The kinds are themselves errors, and can be used with errors.Is:
//
//	if errors.Is(err, fjson.ErrDepthExceeded) {
//	   log.Print("Input is nested too deeply")
//	}
//
// Use Excerpt to render the line of input at which an error occurred.
package fjson
