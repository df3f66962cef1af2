// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package fjson

import (
	"fmt"
	"strings"

	"github.com/creachadair/mds/mstr"
)

// An ErrorKind classifies the errors reported by the scanner and parser.
// ErrorKind values satisfy the error interface, so that a kind can be used
// as the target of errors.Is:
//
//	if errors.Is(err, fjson.ErrDepthExceeded) { ... }
type ErrorKind byte

// Constants defining the valid ErrorKind values.
const (
	ErrUnknown ErrorKind = iota

	// Lexical errors
	ErrUnexpectedChar      // a character that cannot begin a token
	ErrInvalidNumber       // a malformed numeric literal
	ErrInvalidString       // a malformed escape or control character in a string
	ErrUnterminatedString  // a string with no closing quote
	ErrUnterminatedComment // a block comment with no closing "*/"

	// Syntax errors
	ErrUnexpectedToken // a token that does not fit the grammar here
	ErrUnbalanced      // a closing bracket that does not match its opener
	ErrTrailingComma   // a comma before a closing bracket
	ErrFeatureDisabled // a relaxation that is not enabled by the options

	// Limits
	ErrDepthExceeded // nesting deeper than the configured maximum

	// Repair
	ErrRepairExhausted // a fault could not be repaired within the limits
)

var kindStr = [...]string{
	ErrUnknown:             "unknown error",
	ErrUnexpectedChar:      "unexpected character",
	ErrInvalidNumber:       "invalid number",
	ErrInvalidString:       "invalid string",
	ErrUnterminatedString:  "unterminated string",
	ErrUnterminatedComment: "unterminated comment",
	ErrUnexpectedToken:     "unexpected token",
	ErrUnbalanced:          "unbalanced brackets",
	ErrTrailingComma:       "trailing comma",
	ErrFeatureDisabled:     "feature disabled",
	ErrDepthExceeded:       "depth exceeded",
	ErrRepairExhausted:     "repair exhausted",
}

var kindHint = [...]string{
	ErrUnexpectedChar:      "check for typos or non-JSON characters",
	ErrInvalidNumber:       "check for leading zeroes and missing digits",
	ErrInvalidString:       `use valid escapes: \" \\ \/ \b \f \n \r \t \uXXXX`,
	ErrUnterminatedString:  "add the closing quote to the string",
	ErrUnterminatedComment: `close the comment with "*/"`,
	ErrUnexpectedToken:     "check for a missing comma or colon",
	ErrUnbalanced:          "check that brackets and braces are matched",
	ErrTrailingComma:       "remove the comma after the last element",
	ErrFeatureDisabled:     "enable the corresponding parser option",
	ErrDepthExceeded:       "reduce the nesting depth, or raise the limit",
	ErrRepairExhausted:     "fix the input by hand, or raise the repair limit",
}

func (k ErrorKind) String() string {
	if int(k) >= len(kindStr) {
		return kindStr[ErrUnknown]
	}
	return kindStr[k]
}

// Error satisfies the error interface.
func (k ErrorKind) Error() string { return k.String() }

// Suggestion returns a short hint for how to fix an error of this kind.
func (k ErrorKind) Suggestion() string {
	if int(k) >= len(kindHint) {
		return ""
	}
	return kindHint[k]
}

// Error is the concrete type of errors reported by the scanner, the parser,
// and the repair engine.
type Error struct {
	Kind       ErrorKind
	Message    string
	Location   Location
	Suggestion string

	// For ErrRepairExhausted, the fixes applied before the limit was reached.
	Repairs []RepairRecord

	// If not nil, the underlying cause of the error.
	Err error
}

// Errorf constructs an *Error of the given kind at loc.
func Errorf(kind ErrorKind, loc Location, msg string, args ...any) *Error {
	return &Error{
		Kind:       kind,
		Message:    fmt.Sprintf(msg, args...),
		Location:   loc,
		Suggestion: kind.Suggestion(),
	}
}

// Error satisfies the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("at %s: %s", e.Location.First, e.Message)
}

// Unwrap supports error wrapping.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the ErrorKind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(ErrorKind)
	return ok && k == e.Kind
}

// A Pattern identifies a class of syntax fault that the repair engine knows
// how to fix.
type Pattern byte

// Constants defining the valid Pattern values, in rule order.
const (
	NoPattern             Pattern = iota
	MissingSeparator              // two elements with no comma between them
	MissingColon                  // an object key with no colon after it
	UnterminatedString            // a string cut off by a line break or end of input
	UnterminatedContainer         // an array or object cut off by end of input
	MismatchedCloser              // "]" closing an object, or "}" closing an array
	TrailingComma                 // a comma before a closer, when not allowed
	StraySeparator                // a comma or colon where no separator belongs
	StrayCloser                   // a closer with no matching opener
)

var patternStr = [...]string{
	NoPattern:             "unknown fault",
	MissingSeparator:      "missing separator",
	MissingColon:          "missing colon",
	UnterminatedString:    "unterminated string",
	UnterminatedContainer: "unterminated container",
	MismatchedCloser:      "mismatched closer",
	TrailingComma:         "trailing comma",
	StraySeparator:        "stray separator",
	StrayCloser:           "stray closer",
}

func (p Pattern) String() string {
	if int(p) >= len(patternStr) {
		return patternStr[NoPattern]
	}
	return patternStr[p]
}

// A FixKind identifies an edit applied by the repair engine.
type FixKind byte

// Constants defining the valid FixKind values.
const (
	NoFix         FixKind = iota
	InsertComma           // insert "," before the current token
	InsertColon           // insert ":" before the current token
	CloseString           // add the missing closing quote to a string
	InsertCloser          // insert the closer the open container expects
	ReplaceCloser         // replace the current closer with the expected one
	DeleteToken           // discard the current token
)

var fixStr = [...]string{
	NoFix:         "no fix",
	InsertComma:   `insert ","`,
	InsertColon:   `insert ":"`,
	CloseString:   "close string",
	InsertCloser:  "insert closer",
	ReplaceCloser: "replace closer",
	DeleteToken:   "delete token",
}

func (f FixKind) String() string {
	if int(f) >= len(fixStr) {
		return fixStr[NoFix]
	}
	return fixStr[f]
}

// IsInsert reports whether f adds text without removing any.
func (f FixKind) IsInsert() bool {
	return f == InsertComma || f == InsertColon || f == CloseString || f == InsertCloser
}

// A RepairRecord describes one fix applied during parsing.
type RepairRecord struct {
	Fix      FixKind
	Pattern  Pattern
	Location Location // where the fault was detected
	Before   string   // the affected source text, "" for an insertion at a point
	After    string   // the text substituted for Before
}

func (r RepairRecord) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "at %s: %s: %s", r.Location.First, r.Pattern, r.Fix)
	if r.Before != "" || r.After != "" {
		fmt.Fprintf(&sb, " (%q -> %q)", mstr.Trunc(r.Before, 24), mstr.Trunc(r.After, 24))
	}
	return sb.String()
}
