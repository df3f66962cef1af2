// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package fjson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/creachadair/fjson/internal/escape"

	"go4.org/mem"
)

// A Scanner reads lexical tokens from an input buffer.  Each call to Next
// advances the scanner to the next token, or reports an error.
//
// Which relaxations of the JSON token grammar are accepted is governed by the
// Options given when the scanner is constructed. Comments are always reported
// as tokens, never discarded.
type Scanner struct {
	src  []byte
	opts Options
	scanState
}

// cursor is a position in the input. Line and column are 0-based.
type cursor struct{ pos, line, col int }

type scanState struct {
	first  cursor // start of the current token
	cur    cursor // position after the current token
	tok    Token
	err    error
	closed bool // the current String token has its closing quote
}

// A Mark records the state of a Scanner so that it can be restored.
type Mark struct{ st scanState }

var byteOrderMark = []byte("\ufeff")

// NewScanner constructs a new lexical scanner that consumes input from src.
// The scanner does not modify src; the caller must not modify it while the
// scanner is in use.
func NewScanner(src []byte, opts Options) *Scanner {
	s := &Scanner{src: src, opts: opts}
	if bytes.HasPrefix(src, byteOrderMark) {
		s.cur.pos = len(byteOrderMark)
	}
	s.first = s.cur
	return s
}

// Options returns the options the scanner was constructed with.
func (s *Scanner) Options() Options { return s.opts }

// Next advances s to the next token of the input, or reports an error.
// At the end of the input, Next returns io.EOF and the token is EOF.
// Any other error has concrete type *Error.
func (s *Scanner) Next() error {
	s.err = nil
	s.tok = Invalid
	s.closed = false

	for {
		s.first = s.cur
		if s.cur.pos >= len(s.src) {
			s.tok = EOF
			return s.setErr(io.EOF)
		}
		ch := s.src[s.cur.pos]

		// Discard whitespace, except line breaks that are separators.
		switch ch {
		case ' ', '\t':
			s.step()
			continue
		case '\n', '\r':
			if !s.opts.NewlineAsComma {
				s.step()
				continue
			}
			if ch == '\r' && s.peekByte(1) == '\n' {
				s.step()
			}
			s.step()
			s.tok = Newline
			return nil
		}

		// Handle punctuation.
		if t, ok := selfDelim(ch); ok {
			s.step()
			s.tok = t
			return nil
		}

		switch {
		case ch == '"' || ch == '\'':
			return s.scanString(ch)
		case ch == '#', ch == '/' && (s.peekByte(1) == '/' || s.peekByte(1) == '*'):
			return s.scanComment(ch)
		case isNumStart(ch, s.peekByte(1)):
			return s.scanNumber()
		case isNameStart(ch):
			return s.scanName()
		case ch >= utf8.RuneSelf:
			r, n := utf8.DecodeRune(s.src[s.cur.pos:])
			if unicode.IsLetter(r) {
				return s.scanName()
			}
			s.skip(n)
			if r == utf8.RuneError && n == 1 {
				return s.failf(ErrUnexpectedChar, "invalid UTF-8 byte %#02x", ch)
			}
			return s.failf(ErrUnexpectedChar, "unexpected %q", r)
		}
		s.step()
		return s.failf(ErrUnexpectedChar, "unexpected %q", ch)
	}
}

// Token returns the type of the current token.
func (s *Scanner) Token() Token { return s.tok }

// Err returns the last error reported by Next.
func (s *Scanner) Err() error { return s.err }

// Text returns the undecoded text of the current token. The result aliases
// the input and must not be modified.
func (s *Scanner) Text() []byte { return s.src[s.first.pos:s.cur.pos] }

// Span returns the location span of the current token.
func (s *Scanner) Span() Span { return Span{Pos: s.first.pos, End: s.cur.pos} }

// Location returns the complete location of the current token.
func (s *Scanner) Location() Location {
	return Location{
		Span:  s.Span(),
		First: LineCol{Line: s.first.line + 1, Column: s.first.col},
		Last:  LineCol{Line: s.cur.line + 1, Column: s.cur.col},
	}
}

// Lexeme returns the current token with its text and location.
func (s *Scanner) Lexeme() Lexeme {
	return Lexeme{Token: s.tok, Text: s.Text(), Location: s.Location()}
}

// Mark returns a record of the current state of s, which can be passed to
// Reset to return to this point in the input.
func (s *Scanner) Mark() Mark { return Mark{st: s.scanState} }

// Reset restores s to the state recorded by m.
func (s *Scanner) Reset(m Mark) { s.scanState = m.st }

// Peek reports the token that the next call to Next would produce, without
// consuming it.
func (s *Scanner) Peek() (Lexeme, error) {
	save := s.scanState
	defer func() { s.scanState = save }()
	err := s.Next()
	return s.Lexeme(), err
}

// CloseString accepts an unterminated string literal, reported by the most
// recent call to Next, as a complete String token. It reports an error if the
// most recent call to Next did not report an unterminated string.
func (s *Scanner) CloseString() error {
	var e *Error
	if !errors.As(s.err, &e) || e.Kind != ErrUnterminatedString {
		return errors.New("no unterminated string to close")
	}
	s.tok, s.err, s.closed = String, nil, false
	return nil
}

// Unquote decodes the contents of the current String token.
func (s *Scanner) Unquote() (string, error) {
	if s.tok != String {
		return "", fmt.Errorf("token is %v, not string", s.tok)
	}
	body := s.Text()[1:]
	if s.closed {
		body = body[:len(body)-1]
	} else {
		body = trimEscape(body)
	}
	dec, err := escape.Unquote(mem.B(body))
	if err != nil {
		return "", s.errorf(ErrInvalidString, "%v", err)
	}
	return string(dec), nil
}

// Int64 decodes the current Integer token as a signed 64-bit integer.
func (s *Scanner) Int64() (int64, error) {
	if s.tok != Integer {
		return 0, fmt.Errorf("token is %v, not integer", s.tok)
	}
	v, err := strconv.ParseInt(cleanNumber(s.Text()), 0, 64)
	if err != nil {
		return 0, s.errorf(ErrInvalidNumber, "integer %s out of range", s.Text())
	}
	return v, nil
}

// Float64 decodes the current Integer or Number token as a 64-bit float.
// Integers with a radix prefix are not converted.
func (s *Scanner) Float64() (float64, error) {
	if s.tok != Integer && s.tok != Number {
		return 0, fmt.Errorf("token is %v, not number", s.tok)
	}
	text := cleanNumber(s.Text())
	if hasRadixPrefix(text) {
		return 0, s.errorf(ErrInvalidNumber, "integer %s out of range", s.Text())
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, s.errorf(ErrInvalidNumber, "number %s out of range", s.Text())
	}
	return v, nil
}

func (s *Scanner) scanString(quote byte) error {
	if quote == '\'' && !s.opts.AllowSingleQuotes {
		s.step()
		return s.failf(ErrFeatureDisabled, "single-quoted strings are not enabled")
	}
	s.step()
	for {
		if s.cur.pos >= len(s.src) {
			return s.failf(ErrUnterminatedString, "unterminated string at end of input")
		}
		ch := s.src[s.cur.pos]
		switch {
		case ch == quote:
			s.step()
			s.tok = String
			s.closed = true
			return nil

		case ch == '\n' || ch == '\r':
			return s.failf(ErrUnterminatedString, "line break in string")

		case ch == '\\':
			s.step()
			if s.cur.pos >= len(s.src) {
				return s.failf(ErrUnterminatedString, "unterminated string at end of input")
			}
			switch esc := s.src[s.cur.pos]; esc {
			case '"', '\'', '\\', '/', 'b', 'f', 'n', 'r', 't':
				s.step()
			case 'u':
				s.step()
				if err := s.readHex4(); err != nil {
					return err
				}
			case '\n', '\r':
				return s.failf(ErrUnterminatedString, "line break in string")
			default:
				s.step()
				return s.failf(ErrInvalidString, "invalid %q after escape", esc)
			}

		case ch < ' ':
			s.step()
			return s.failf(ErrInvalidString, "unescaped control %q", ch)

		case ch >= utf8.RuneSelf:
			r, n := utf8.DecodeRune(s.src[s.cur.pos:])
			s.skip(n)
			if r == utf8.RuneError && n == 1 {
				return s.failf(ErrInvalidString, "invalid UTF-8 byte %#02x in string", ch)
			}

		default:
			s.step()
		}
	}
}

// readHex4 reads exactly 4 hexadecimal digits from the input.
func (s *Scanner) readHex4() error {
	for i := 0; i < 4; i++ {
		if s.cur.pos >= len(s.src) {
			return s.failf(ErrUnterminatedString, "unterminated string at end of input")
		}
		ch := s.src[s.cur.pos]
		if !isHexDigit(ch) {
			return s.failf(ErrInvalidString, "invalid Unicode escape: not a hex digit: %q", ch)
		}
		s.step()
	}
	return nil
}

func (s *Scanner) scanNumber() error {
	start := s.cur.pos
	if c := s.src[start]; c == '-' || c == '+' {
		s.step()
	}
	radix := hasRadixPrefix(string(s.src[s.cur.pos:min(s.cur.pos+2, len(s.src))]))

	// Consume the longest run of characters that could belong to a number, so
	// that a malformed literal is reported with its whole span.
	for s.cur.pos < len(s.src) {
		c := s.src[s.cur.pos]
		if isNumRune(c) {
			s.step()
			continue
		} else if (c == '+' || c == '-') && !radix {
			if p := s.src[s.cur.pos-1]; p == 'e' || p == 'E' {
				s.step()
				continue
			}
		}
		break
	}

	tok, kind, msg := lexNumber(s.src[start:s.cur.pos], s.opts.AllowExtendedNumbers)
	if kind != ErrUnknown {
		return s.failf(kind, "%s: %q", msg, s.Text())
	}
	s.tok = tok
	return nil
}

func (s *Scanner) scanComment(first byte) error {
	if !s.opts.AllowComments {
		s.step()
		if first == '/' {
			s.step()
		}
		return s.failf(ErrFeatureDisabled, "comments are not enabled")
	}
	if first == '#' || s.peekByte(1) == '/' {
		// Line comment, up to but not including the line break.
		for s.cur.pos < len(s.src) && !isLineBreak(s.src[s.cur.pos]) {
			s.step()
		}
		s.tok = LineComment
		return nil
	}

	// Block comment.
	s.skip(2)
	for s.cur.pos < len(s.src) {
		if s.src[s.cur.pos] == '*' && s.peekByte(1) == '/' {
			s.skip(2)
			s.tok = BlockComment
			return nil
		}
		s.step()
	}
	return s.failf(ErrUnterminatedComment, "unterminated block comment")
}

func (s *Scanner) scanName() error {
	for s.cur.pos < len(s.src) {
		ch := s.src[s.cur.pos]
		if ch < utf8.RuneSelf {
			if !isNameRune(ch) {
				break
			}
			s.step()
			continue
		}
		r, n := utf8.DecodeRune(s.src[s.cur.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		s.skip(n)
	}
	switch string(s.Text()) {
	case "true":
		s.tok = True
	case "false":
		s.tok = False
	case "null":
		s.tok = Null
	default:
		s.tok = Ident
	}
	return nil
}

// step consumes one byte of input, updating the line and column.
// A line break is LF, CR LF, or a lone CR.
func (s *Scanner) step() {
	ch := s.src[s.cur.pos]
	s.cur.pos++
	if ch == '\n' || (ch == '\r' && !s.at('\n')) {
		s.cur.line++
		s.cur.col = 0
	} else {
		s.cur.col++
	}
}

func (s *Scanner) skip(n int) {
	for range n {
		s.step()
	}
}

func (s *Scanner) at(b byte) bool { return s.cur.pos < len(s.src) && s.src[s.cur.pos] == b }

// peekByte returns the byte at offset off from the current position, or 0.
func (s *Scanner) peekByte(off int) byte {
	if p := s.cur.pos + off; p < len(s.src) {
		return s.src[p]
	}
	return 0
}

func (s *Scanner) setErr(err error) error {
	s.err = err
	return err
}

// failf records and returns an error of the given kind, located at the span
// of input consumed for the current token so far.
func (s *Scanner) failf(kind ErrorKind, msg string, args ...any) error {
	return s.setErr(s.errorf(kind, msg, args...))
}

func (s *Scanner) errorf(kind ErrorKind, msg string, args ...any) *Error {
	return Errorf(kind, s.Location(), msg, args...)
}

func isLineBreak(ch byte) bool { return ch == '\n' || ch == '\r' }
func isDigit(ch byte) bool     { return '0' <= ch && ch <= '9' }
func isLetter(ch byte) bool    { return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') }
func isNumRune(ch byte) bool   { return isDigit(ch) || isLetter(ch) || ch == '_' || ch == '.' }
func isNameStart(ch byte) bool { return isLetter(ch) || ch == '_' || ch == '$' }
func isNameRune(ch byte) bool  { return isNameStart(ch) || isDigit(ch) || ch == '-' }

func isNumStart(ch, next byte) bool {
	switch ch {
	case '-', '+':
		return true
	case '.':
		return isDigit(next)
	}
	return isDigit(ch)
}

// trimEscape returns body without an incomplete escape sequence at its end.
// Any earlier escapes in body are complete.
func trimEscape(body []byte) []byte {
	for i := 0; i < len(body); i++ {
		if body[i] != '\\' {
			continue
		}
		n := 2
		if i+1 < len(body) && body[i+1] == 'u' {
			n = 6
		}
		if i+n > len(body) {
			return body[:i]
		}
		i += n - 1
	}
	return body
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}
