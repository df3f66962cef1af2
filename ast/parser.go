// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/creachadair/fjson"
	"github.com/creachadair/fjson/repair"
	"github.com/creachadair/mds/stack"
)

// A Document is the result of parsing an input with ParseDocument.
type Document struct {
	Value Value

	// The fixes applied by the repair engine, in order. This is populated
	// only if the options enable ReportRepairs.
	Repairs []fjson.RepairRecord
}

// Parse parses input as a single JSON document using fjson.DefaultOptions.
func Parse(input []byte) (Value, error) {
	return ParseWithOptions(input, fjson.DefaultOptions())
}

// ParseString parses the string s as a single JSON document with opts.
func ParseString(s string, opts fjson.Options) (Value, error) {
	return ParseWithOptions([]byte(s), opts)
}

// ParseWithOptions parses input as a single JSON document with opts.
// In case of error, the concrete type of the error is *fjson.Error.
func ParseWithOptions(input []byte, opts fjson.Options) (Value, error) {
	doc, err := ParseDocument(input, opts)
	if err != nil {
		return nil, err
	}
	return doc.Value, nil
}

// IsValid reports whether input can be parsed with fjson.DefaultOptions.
func IsValid(input []byte) bool {
	_, err := Parse(input)
	return err == nil
}

// ParseDocument parses input as a single JSON document with opts, and returns
// the resulting value along with a log of any repairs. In case of error, no
// value is returned, and the concrete type of the error is *fjson.Error.
func ParseDocument(input []byte, opts fjson.Options) (_ *Document, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	p := &parser{
		s:    fjson.NewScanner(input, opts),
		opts: opts,
		stk:  stack.New[*frame](),
		keys: make(map[string]string),
	}
	if opts.EnableRepair {
		p.fix = repair.New(opts)
	}
	defer p.recoverParseError(&err)

	v := p.run()
	doc := &Document{Value: v}
	if p.fix != nil {
		doc.Repairs = p.fix.Log()
	}
	return doc, nil
}

type state byte

const (
	stBegin       state = iota // start of input
	stValue                    // expecting a value
	stArrayStart               // after "[": a value or "]"
	stObjectStart              // after "{": a key or "}"
	stKey                      // expecting an object key
	stColon                    // after a key: expecting ":"
	stSep                      // after a value in a container: separator or closer
	stTopSep                   // after a top-level value
	stDone
)

// A frame is an open array or object on the parser's work stack.
type frame struct {
	open     fjson.Token    // LBrace or LSquare
	loc      fjson.Location // of the opening token, if explicit
	implicit bool           // closed by end of input rather than a token

	arr   Array
	obj   Object
	index map[string]int // key to offset in obj, for duplicate keys
	key   string         // key of the member whose value is pending
}

func (f *frame) closer() fjson.Token { return f.open.Closer() }

func (f *frame) value() Value {
	if f.open == fjson.LBrace {
		if f.obj == nil {
			return Object{}
		}
		return f.obj
	}
	if f.arr == nil {
		return Array{}
	}
	return f.arr
}

// setMember adds a member with the pending key and value v. If the key is
// already present, the new value replaces the old one in place.
func (f *frame) setMember(v Value) {
	if i, ok := f.index[f.key]; ok {
		f.obj[i].Value = v
		return
	}
	if f.index == nil {
		f.index = make(map[string]int)
	}
	f.index[f.key] = len(f.obj)
	f.obj = append(f.obj, &Member{Key: f.key, Value: v})
}

// A parser constructs a value tree from the tokens of a scanner, using an
// explicit stack of open containers rather than recursion.
type parser struct {
	s    *fjson.Scanner
	opts fjson.Options
	fix  *repair.Engine // nil if repair is disabled
	stk  *stack.Stack[*frame]
	keys map[string]string // interned object keys

	top  Value // the completed top-level value
	peak int   // the greatest stack depth seen

	// Separator state, reset after each value.
	sepComma   bool
	sepNewline bool
	comma      fjson.Lexeme // the most recent separating comma
}

// parseAbort is the panic value used to unwind the parser on error.
type parseAbort struct{ err error }

func (p *parser) recoverParseError(errp *error) {
	if x := recover(); x != nil {
		if pa, ok := x.(parseAbort); ok {
			*errp = pa.err
			return
		}
		panic(x)
	}
}

func (p *parser) fail(err error) { panic(parseAbort{err}) }

func (p *parser) check(err error) {
	if err != nil {
		p.fail(err)
	}
}

func (p *parser) run() Value {
	st := stBegin
	var tok fjson.Token
	have := false
	for st != stDone {
		if !have {
			tok = p.next(st == stSep || st == stTopSep)
		}
		switch st {
		case stBegin:
			st, have = p.begin(tok)
		case stValue:
			st, have = p.parseValue(tok)
		case stArrayStart:
			st, have = p.arrayStart(tok)
		case stObjectStart:
			st, have = p.objectStart(tok)
		case stKey:
			st, have = p.parseKey(tok)
		case stColon:
			st, have = p.parseColon(tok)
		case stSep:
			st, have = p.separator(tok)
		case stTopSep:
			st, have = p.topSeparator(tok)
		default:
			panic(fmt.Sprintf("invalid parser state %d", st))
		}
	}
	return p.top
}

// next advances to the next token that is significant in the current state.
// Comments are always skipped; line breaks are skipped unless sep is true.
func (p *parser) next(sep bool) fjson.Token {
	for {
		err := p.s.Next()
		if err == io.EOF {
			return fjson.EOF
		} else if err != nil {
			return p.lexError(err)
		}
		tok := p.s.Token()
		if tok.IsComment() || (tok == fjson.Newline && !sep) {
			continue
		}
		return tok
	}
}

// lexError handles a lexical error from the scanner. An unterminated string is
// repairable; all other lexical errors are fatal.
func (p *parser) lexError(err error) fjson.Token {
	var e *fjson.Error
	if p.fix == nil || !errors.As(err, &e) || e.Kind != fjson.ErrUnterminatedString {
		p.fail(err)
	}
	p.fault(repair.Fault{
		Pattern:  fjson.UnterminatedString,
		Location: e.Location,
		Depth:    p.stk.Len(),
		Token:    fjson.String,
		Text:     string(p.s.Text()),
		Cause:    err,
	})
	p.check(p.s.CloseString())
	return fjson.String
}

// fault reports a syntax fault. If repair is disabled, the fault's cause is
// reported as the parse error. Otherwise, fault returns the fix chosen by the
// repair engine, or fails if no fix is possible.
func (p *parser) fault(f repair.Fault) repair.Fix {
	if p.fix == nil {
		p.fail(f.Cause)
	}
	fix, err := p.fix.Resolve(f)
	p.check(err)
	return fix
}

// faultHere constructs a fault of the given pattern at the current token.
func (p *parser) faultHere(pat fjson.Pattern, cause error) repair.Fault {
	return repair.Fault{
		Pattern:  pat,
		Location: p.s.Location(),
		Depth:    p.stk.Len(),
		Token:    p.s.Token(),
		Text:     string(p.s.Text()),
		Cause:    cause,
	}
}

// unexpected reports that the current token does not fit the grammar, and
// that no fix is known for it.
func (p *parser) unexpected(want ...fjson.Token) {
	p.fault(p.faultHere(fjson.NoPattern, p.syntaxError(fjson.ErrUnexpectedToken, "%v", tokLabel(want, p.s.Token()))))
}

func (p *parser) syntaxError(kind fjson.ErrorKind, msg string, args ...any) *fjson.Error {
	return fjson.Errorf(kind, p.s.Location(), msg, args...)
}

func (p *parser) begin(tok fjson.Token) (state, bool) {
	if tok == fjson.EOF {
		if p.opts.ImplicitTopLevel {
			p.top = Null
			return stDone, false
		}
		p.fail(p.syntaxError(fjson.ErrUnexpectedToken, "empty input"))
	}
	if tok.IsCloser() {
		p.fault(p.faultHere(fjson.StrayCloser,
			p.syntaxError(fjson.ErrUnbalanced, "unmatched %v", tok)))
		return stBegin, false
	}
	if p.opts.ImplicitTopLevel && isKeyLike(tok) && p.colonFollows() {
		p.push(&frame{open: fjson.LBrace, implicit: true})
		return stKey, true
	}
	return stValue, true
}

// colonFollows reports whether the next significant token after the current
// one is a colon. It does not change the state of the scanner.
func (p *parser) colonFollows() bool {
	m := p.s.Mark()
	defer p.s.Reset(m)
	for p.s.Next() == nil {
		if tok := p.s.Token(); !tok.IsTrivia() {
			return tok == fjson.Colon
		}
	}
	return false
}

func (p *parser) parseValue(tok fjson.Token) (state, bool) {
	switch tok {
	case fjson.LBrace:
		p.push(&frame{open: tok, loc: p.s.Location()})
		return stObjectStart, false
	case fjson.LSquare:
		p.push(&frame{open: tok, loc: p.s.Location()})
		return stArrayStart, false
	case fjson.Comma, fjson.Colon:
		p.fault(p.faultHere(fjson.StraySeparator,
			p.syntaxError(fjson.ErrUnexpectedToken, "expected value, got %v", tok)))
		return stValue, false
	}
	if !tok.IsScalar() {
		p.unexpected()
		return stValue, false // unreachable
	}
	return p.emit(p.scalar(tok)), false
}

func (p *parser) arrayStart(tok fjson.Token) (state, bool) {
	switch {
	case tok.IsCloser(), tok == fjson.EOF:
		return p.close(tok, stArrayStart)
	case tok == fjson.Comma, tok == fjson.Colon:
		p.fault(p.faultHere(fjson.StraySeparator,
			p.syntaxError(fjson.ErrUnexpectedToken, "expected value or %v, got %v", fjson.RSquare, tok)))
		return stArrayStart, false
	}
	return stValue, true
}

func (p *parser) objectStart(tok fjson.Token) (state, bool) {
	switch {
	case tok.IsCloser(), tok == fjson.EOF:
		return p.close(tok, stObjectStart)
	case tok == fjson.Comma:
		p.fault(p.faultHere(fjson.StraySeparator,
			p.syntaxError(fjson.ErrUnexpectedToken, "expected key or %v, got %v", fjson.RBrace, tok)))
		return stObjectStart, false
	}
	return stKey, true
}

func (p *parser) parseKey(tok fjson.Token) (state, bool) {
	f := p.frame()
	switch tok {
	case fjson.String:
		key, err := p.s.Unquote()
		p.check(err)
		f.key = p.intern(key)
	case fjson.Ident, fjson.Integer, fjson.Number, fjson.True, fjson.False, fjson.Null:
		if !p.opts.AllowUnquotedKeys {
			p.fail(p.syntaxError(fjson.ErrFeatureDisabled, "unquoted keys are not enabled"))
		}
		f.key = p.intern(string(p.s.Text()))
	default:
		p.unexpected(fjson.String)
	}
	return stColon, false
}

func (p *parser) parseColon(tok fjson.Token) (state, bool) {
	if tok == fjson.Colon {
		return stValue, false
	}
	cause := p.syntaxError(fjson.ErrUnexpectedToken, "%v", tokLabel([]fjson.Token{fjson.Colon}, tok))
	if !startsValue(tok) {
		p.fault(p.faultHere(fjson.NoPattern, cause))
	}
	f := p.faultHere(fjson.MissingColon, cause)
	f.Location = pointBefore(f.Location)
	p.fault(f)
	return stValue, true
}

// separator handles the tokens following a value inside a container: any
// number of line breaks, at most one comma, and then either the next element
// or the closer.
func (p *parser) separator(tok fjson.Token) (state, bool) {
	f := p.frame()
	switch {
	case tok == fjson.Newline:
		p.sepNewline = true
		return stSep, false

	case tok == fjson.Comma:
		if p.sepComma {
			p.fault(p.faultHere(fjson.StraySeparator,
				p.syntaxError(fjson.ErrUnexpectedToken, "unexpected %v after separator", tok)))
			return stSep, false
		}
		p.sepComma = true
		p.comma = p.s.Lexeme()
		return stSep, false

	case tok == fjson.Colon:
		p.fault(p.faultHere(fjson.StraySeparator,
			p.syntaxError(fjson.ErrUnexpectedToken, "unexpected %v after value", tok)))
		return stSep, false

	case tok.IsCloser(), tok == fjson.EOF:
		p.checkTrailingComma(tok)
		return p.close(tok, stSep)
	}

	next := stValue
	if f.open == fjson.LBrace {
		next = stKey
	}
	if p.sepComma || p.sepNewline {
		return next, true
	}

	want := []fjson.Token{fjson.Comma, f.closer()}
	if f.implicit {
		want[1] = fjson.EOF
	}
	flt := p.faultHere(fjson.MissingSeparator,
		p.syntaxError(fjson.ErrUnexpectedToken, "%v", tokLabel(want, tok)))
	if p.fault(flt).Kind == fjson.DeleteToken {
		return stSep, false
	}
	return next, true
}

// checkTrailingComma checks whether a separating comma precedes the closer at
// the current token, and whether that is permitted.
func (p *parser) checkTrailingComma(tok fjson.Token) {
	if !p.sepComma || p.opts.AllowTrailingCommas {
		return
	}
	p.sepComma = false
	p.fault(repair.Fault{
		Pattern:  fjson.TrailingComma,
		Location: p.comma.Location,
		Depth:    p.stk.Len(),
		Token:    fjson.Comma,
		Text:     string(p.comma.Text),
		Cause: fjson.Errorf(fjson.ErrTrailingComma, p.comma.Location,
			"trailing comma before %v", tok),
	})
}

// topSeparator handles the tokens following a complete top-level value.
// With ImplicitTopLevel, a separator followed by another value turns the
// document into an implicit array.
func (p *parser) topSeparator(tok fjson.Token) (state, bool) {
	switch {
	case tok == fjson.EOF:
		return stDone, false

	case tok == fjson.Newline:
		p.sepNewline = true
		return stTopSep, false

	case tok == fjson.Comma && p.opts.ImplicitTopLevel:
		p.beginImplicitArray()
		p.sepComma = true
		p.comma = p.s.Lexeme()
		return stSep, false

	case tok == fjson.Comma, tok == fjson.Colon:
		p.fault(p.faultHere(fjson.StraySeparator,
			p.syntaxError(fjson.ErrUnexpectedToken, "unexpected %v after value", tok)))
		return stTopSep, false

	case tok.IsCloser():
		p.fault(p.faultHere(fjson.StrayCloser,
			p.syntaxError(fjson.ErrUnbalanced, "unmatched %v", tok)))
		return stTopSep, false

	case !p.opts.ImplicitTopLevel:
		p.unexpected(fjson.EOF)
	}

	// A value follows the top-level value.
	if !p.sepNewline {
		flt := p.faultHere(fjson.MissingSeparator,
			p.syntaxError(fjson.ErrUnexpectedToken, "%v", tokLabel([]fjson.Token{fjson.Comma, fjson.EOF}, tok)))
		if p.fault(flt).Kind == fjson.DeleteToken {
			return stTopSep, false
		}
	}
	p.beginImplicitArray()
	return stValue, true
}

// beginImplicitArray pushes an implicit array whose first element is the
// completed top-level value.
func (p *parser) beginImplicitArray() {
	if p.peak+1 > p.opts.MaxDepth {
		p.fail(p.syntaxError(fjson.ErrDepthExceeded, "nesting depth exceeds %d", p.opts.MaxDepth))
	}
	prev := p.peak
	p.push(&frame{open: fjson.LSquare, implicit: true, arr: Array{p.top}})
	p.peak = max(p.peak, prev+1)
	p.top = nil
}

// close handles a closer or end of input for the innermost open container.
// If the token is not consumed, it remains current for the enclosing state.
// The state st is the one to resume if the token is discarded.
func (p *parser) close(tok fjson.Token, st state) (state, bool) {
	f := p.frame()
	switch {
	case tok == fjson.EOF && f.implicit:
		return p.finish(), true

	case tok == fjson.EOF:
		flt := p.faultHere(fjson.UnterminatedContainer,
			fjson.Errorf(fjson.ErrUnbalanced, p.s.Location(), "unclosed %v opened at %s", f.open, f.loc.First))
		flt.Expected = f.closer()
		p.fault(flt)
		return p.finish(), true

	case tok == f.closer() && !f.implicit:
		return p.finish(), false

	case f.implicit:
		p.fault(p.faultHere(fjson.StrayCloser,
			p.syntaxError(fjson.ErrUnbalanced, "unmatched %v", tok)))
		return st, false
	}

	flt := p.faultHere(fjson.MismatchedCloser,
		p.syntaxError(fjson.ErrUnbalanced, "expected %v to close %v at %s, got %v",
			f.closer(), f.open, f.loc.First, tok))
	flt.Expected = f.closer()
	flt.OuterMatch = p.outerMatch(tok)
	if p.fault(flt).Kind == fjson.ReplaceCloser {
		return p.finish(), false
	}
	return p.finish(), true
}

// outerMatch reports whether tok would close an explicit container enclosing
// the innermost one.
func (p *parser) outerMatch(tok fjson.Token) bool {
	for i := 1; i < p.stk.Len(); i++ {
		f, _ := p.stk.Peek(i)
		if !f.implicit && f.closer() == tok {
			return true
		}
	}
	return false
}

func (p *parser) frame() *frame {
	f, ok := p.stk.Peek(0)
	if !ok {
		panic("parser stack is empty")
	}
	return f
}

func (p *parser) push(f *frame) {
	if p.stk.Len() >= p.opts.MaxDepth {
		p.fail(p.syntaxError(fjson.ErrDepthExceeded, "nesting depth exceeds %d", p.opts.MaxDepth))
	}
	p.stk.Push(f)
	p.peak = max(p.peak, p.stk.Len())
}

// finish pops the innermost container and delivers its value to the
// enclosing container, or to the top level.
func (p *parser) finish() state {
	f, _ := p.stk.Pop()
	return p.emit(f.value())
}

// emit delivers a completed value to the innermost open container, and
// returns the state that follows it.
func (p *parser) emit(v Value) state {
	p.sepComma, p.sepNewline = false, false
	if p.stk.Len() == 0 {
		p.top = v
		return stTopSep
	}
	f := p.frame()
	if f.open == fjson.LBrace {
		f.setMember(v)
	} else {
		f.arr = append(f.arr, v)
	}
	return stSep
}

// scalar constructs a value from the current scalar token.
func (p *parser) scalar(tok fjson.Token) Value {
	switch tok {
	case fjson.True:
		return Bool(true)
	case fjson.False:
		return Bool(false)
	case fjson.Null:
		return Null
	case fjson.String:
		s, err := p.s.Unquote()
		p.check(err)
		return String(s)
	case fjson.Integer:
		if z, err := p.s.Int64(); err == nil {
			return Int(z)
		}
		// A decimal integer too large for int64 is kept as a float.
		f, err := p.s.Float64()
		p.check(err)
		return Float(f)
	case fjson.Number:
		f, err := p.s.Float64()
		p.check(err)
		return Float(f)
	case fjson.Ident:
		if !p.opts.AllowUnquotedKeys {
			p.fail(p.syntaxError(fjson.ErrFeatureDisabled, "unquoted strings are not enabled"))
		}
		return String(p.s.Text())
	}
	panic(fmt.Sprintf("unexpected scalar token %v", tok))
}

// intern returns a canonical copy of key, so that repeated keys in a document
// share storage.
func (p *parser) intern(key string) string {
	if s, ok := p.keys[key]; ok {
		return s
	}
	p.keys[key] = key
	return key
}

// isKeyLike reports whether tok can be an object key.
func isKeyLike(tok fjson.Token) bool { return tok.IsScalar() }

// startsValue reports whether tok can begin a value.
func startsValue(tok fjson.Token) bool {
	return tok.IsScalar() || tok == fjson.LBrace || tok == fjson.LSquare
}

// pointBefore returns the empty location at the start of loc.
func pointBefore(loc fjson.Location) fjson.Location {
	return fjson.Location{
		Span:  fjson.Span{Pos: loc.Pos, End: loc.Pos},
		First: loc.First,
		Last:  loc.First,
	}
}

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []fjson.Token, got any) string {
	if len(tokens) == 0 {
		return fmt.Sprintf("unexpected %v", got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, last)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}
