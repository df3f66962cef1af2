// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package fjson_test

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/creachadair/fjson"
	"github.com/google/go-cmp/cmp"
)

var (
	strict = fjson.StrictOptions()
	loose  = fjson.DefaultOptions()
)

// scanAll returns the tokens of input up to end of input or the first error.
func scanAll(input string, opts fjson.Options) ([]fjson.Token, error) {
	s := fjson.NewScanner([]byte(input), opts)
	var got []fjson.Token
	for {
		err := s.Next()
		if err == io.EOF {
			return got, nil
		} else if err != nil {
			return got, err
		}
		got = append(got, s.Token())
	}
}

func TestScanner(t *testing.T) {
	tests := []struct {
		input string
		want  []fjson.Token
	}{
		// Empty inputs
		{"", nil},
		{"  ", nil},
		{"\n\n  \n", nil},
		{"\t  \r\n \t  \r\n", nil},
		{"\ufeff  ", nil},

		// Constants
		{"true false null", []fjson.Token{fjson.True, fjson.False, fjson.Null}},

		// Punctuation
		{"{ [ ] } , :", []fjson.Token{
			fjson.LBrace, fjson.LSquare, fjson.RSquare, fjson.RBrace, fjson.Comma, fjson.Colon,
		}},

		// Strings
		{`"" "a b c" "a\nb\tc"`, []fjson.Token{fjson.String, fjson.String, fjson.String}},
		{`"\"\\\/\b\f\n\r\t"`, []fjson.Token{fjson.String}},
		{`"\u0000\u01fc\uaa9c"`, []fjson.Token{fjson.String}},

		// Numbers
		{`0 -1 5139 2.3 5e+9 3.6E+4 -0.001E-100`, []fjson.Token{
			fjson.Integer, fjson.Integer, fjson.Integer,
			fjson.Number, fjson.Number, fjson.Number, fjson.Number,
		}},

		// Mixed types
		{`{true,"false":-15 null[]}`, []fjson.Token{
			fjson.LBrace, fjson.True, fjson.Comma, fjson.String, fjson.Colon,
			fjson.Integer, fjson.Null, fjson.LSquare, fjson.RSquare, fjson.RBrace,
		}},
		{`{"a": true, "b":[null, 1, 0.5]}`, []fjson.Token{
			fjson.LBrace,
			fjson.String, fjson.Colon, fjson.True, fjson.Comma,
			fjson.String, fjson.Colon,
			fjson.LSquare,
			fjson.Null, fjson.Comma, fjson.Integer, fjson.Comma, fjson.Number,
			fjson.RSquare,
			fjson.RBrace,
		}},
		{`"a",1,true
       false["b"]
       `, []fjson.Token{
			fjson.String, fjson.Comma, fjson.Integer, fjson.Comma, fjson.True,
			fjson.False, fjson.LSquare, fjson.String, fjson.RSquare,
		}},

		// Bare words are identifiers, even if they cannot be used.
		{`nothing truly`, []fjson.Token{fjson.Ident, fjson.Ident}},
	}

	for _, test := range tests {
		got, err := scanAll(test.input, strict)
		if err != nil {
			t.Errorf("Next failed: %v", err)
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestScanner_forgiving(t *testing.T) {
	tests := []struct {
		input string
		want  []fjson.Token
	}{
		{"// c\n1 # d\n/* x\n y */", []fjson.Token{
			fjson.LineComment, fjson.Newline, fjson.Integer, fjson.LineComment,
			fjson.Newline, fjson.BlockComment,
		}},
		{`'a' "b" 'it\'s' "say 'hi'"`, []fjson.Token{
			fjson.String, fjson.String, fjson.String, fjson.String,
		}},
		{`abc $x _y a-b nullable`, []fjson.Token{
			fjson.Ident, fjson.Ident, fjson.Ident, fjson.Ident, fjson.Ident,
		}},
		{`0x1F 0o17 0b101 +1 .5 5. 1_000`, []fjson.Token{
			fjson.Integer, fjson.Integer, fjson.Integer, fjson.Integer,
			fjson.Number, fjson.Number, fjson.Integer,
		}},
		{"a\r\nb\rc\n", []fjson.Token{
			fjson.Ident, fjson.Newline, fjson.Ident, fjson.Newline, fjson.Ident, fjson.Newline,
		}},
		{"[1,\n\n2]", []fjson.Token{
			fjson.LSquare, fjson.Integer, fjson.Comma, fjson.Newline, fjson.Newline,
			fjson.Integer, fjson.RSquare,
		}},
	}
	for _, test := range tests {
		got, err := scanAll(test.input, loose)
		if err != nil {
			t.Errorf("Input %#q: unexpected error: %v", test.input, err)
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestScanner_errors(t *testing.T) {
	tests := []struct {
		input string
		opts  fjson.Options
		want  fjson.ErrorKind
	}{
		{`01`, loose, fjson.ErrInvalidNumber},
		{`-01.5`, loose, fjson.ErrInvalidNumber},
		{`-`, loose, fjson.ErrInvalidNumber},
		{`1e`, loose, fjson.ErrInvalidNumber},
		{`1e+`, loose, fjson.ErrInvalidNumber},
		{`1.2.3`, loose, fjson.ErrInvalidNumber},
		{`1abc`, loose, fjson.ErrInvalidNumber},
		{`1__0`, loose, fjson.ErrInvalidNumber},
		{`1_`, loose, fjson.ErrInvalidNumber},
		{`0x`, loose, fjson.ErrInvalidNumber},
		{`0xG`, loose, fjson.ErrInvalidNumber},
		{`0b102`, loose, fjson.ErrInvalidNumber},

		{`0x1F`, strict, fjson.ErrFeatureDisabled},
		{`+1`, strict, fjson.ErrFeatureDisabled},
		{`.5`, strict, fjson.ErrFeatureDisabled},
		{`5.`, strict, fjson.ErrFeatureDisabled},
		{`1_000`, strict, fjson.ErrFeatureDisabled},
		{`// comment`, strict, fjson.ErrFeatureDisabled},
		{`# comment`, strict, fjson.ErrFeatureDisabled},
		{`/* comment */`, strict, fjson.ErrFeatureDisabled},
		{`'single'`, strict, fjson.ErrFeatureDisabled},

		{`"abc`, loose, fjson.ErrUnterminatedString},
		{"\"ab\ncd\"", loose, fjson.ErrUnterminatedString},
		{`"ab\`, loose, fjson.ErrUnterminatedString},
		{`'ab"`, loose, fjson.ErrUnterminatedString},
		{`"\x"`, loose, fjson.ErrInvalidString},
		{`"\u12G4"`, loose, fjson.ErrInvalidString},
		{"\"a\x01b\"", loose, fjson.ErrInvalidString},
		{"\"a\xffb\"", loose, fjson.ErrInvalidString},

		{`/* abc`, loose, fjson.ErrUnterminatedComment},
		{`/* abc *`, loose, fjson.ErrUnterminatedComment},

		{`@`, loose, fjson.ErrUnexpectedChar},
		{`/x`, loose, fjson.ErrUnexpectedChar},
		{"\xff", loose, fjson.ErrUnexpectedChar},
	}
	for _, test := range tests {
		_, err := scanAll(test.input, test.opts)
		var e *fjson.Error
		if !errors.As(err, &e) {
			t.Errorf("Input %#q: got error %v, want *fjson.Error", test.input, err)
			continue
		}
		if e.Kind != test.want {
			t.Errorf("Input %#q: got kind %v, want %v (%v)", test.input, e.Kind, test.want, err)
		}
		if !errors.Is(err, test.want) {
			t.Errorf("Input %#q: errors.Is(%v, %v) is false", test.input, err, test.want)
		}
	}
}

func TestScanner_errorSpan(t *testing.T) {
	// A malformed number is reported with the span of the whole literal.
	s := fjson.NewScanner([]byte(`[1, 1.2.3]`), loose)
	var err error
	for err == nil {
		err = s.Next()
	}
	var e *fjson.Error
	if !errors.As(err, &e) {
		t.Fatalf("Next: got %v, want *fjson.Error", err)
	}
	if want := (fjson.Span{Pos: 4, End: 9}); e.Location.Span != want {
		t.Errorf("Error span: got %v, want %v", e.Location.Span, want)
	}
	if got, want := string(s.Text()), "1.2.3"; got != want {
		t.Errorf("Error text: got %q, want %q", got, want)
	}
}

func TestScanner_locations(t *testing.T) {
	const input = "{\n  \"a\": 15,\n  b: true\n}"
	type tokPos struct {
		Tok   fjson.Token
		Text  string
		First fjson.LineCol
	}
	want := []tokPos{
		{fjson.LBrace, "{", fjson.LineCol{Line: 1, Column: 0}},
		{fjson.String, `"a"`, fjson.LineCol{Line: 2, Column: 2}},
		{fjson.Colon, ":", fjson.LineCol{Line: 2, Column: 5}},
		{fjson.Integer, "15", fjson.LineCol{Line: 2, Column: 7}},
		{fjson.Comma, ",", fjson.LineCol{Line: 2, Column: 9}},
		{fjson.Ident, "b", fjson.LineCol{Line: 3, Column: 2}},
		{fjson.Colon, ":", fjson.LineCol{Line: 3, Column: 3}},
		{fjson.True, "true", fjson.LineCol{Line: 3, Column: 5}},
		{fjson.RBrace, "}", fjson.LineCol{Line: 4, Column: 0}},
	}

	opts := loose
	opts.NewlineAsComma = false
	s := fjson.NewScanner([]byte(input), opts)
	var got []tokPos
	for s.Next() == nil {
		got = append(got, tokPos{s.Token(), string(s.Text()), s.Location().First})
		if s.Token() == fjson.Integer {
			if want := (fjson.Span{Pos: 9, End: 11}); s.Span() != want {
				t.Errorf("Integer span: got %v, want %v", s.Span(), want)
			}
		}
	}
	if s.Err() != io.EOF {
		t.Errorf("Next failed: %v", s.Err())
	}
	if s.Token() != fjson.EOF {
		t.Errorf("Final token: got %v, want %v", s.Token(), fjson.EOF)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens (-want, +got):\n%s", diff)
	}
}

func TestScanner_peekAndMark(t *testing.T) {
	s := fjson.NewScanner([]byte(`[1, 2] // done`), loose)
	if err := s.Next(); err != nil || s.Token() != fjson.LSquare {
		t.Fatalf("Next: got %v, %v; want %v", s.Token(), err, fjson.LSquare)
	}

	lx, err := s.Peek()
	if err != nil {
		t.Fatalf("Peek: unexpected error: %v", err)
	}
	if lx.Token != fjson.Integer || string(lx.Text) != "1" {
		t.Errorf("Peek: got %v %q, want integer 1", lx.Token, lx.Text)
	}
	if s.Token() != fjson.LSquare {
		t.Errorf("After Peek: token is %v, want %v", s.Token(), fjson.LSquare)
	}

	m := s.Mark()
	for range 3 {
		if err := s.Next(); err != nil {
			t.Fatalf("Next: unexpected error: %v", err)
		}
	}
	if s.Token() != fjson.Integer || string(s.Text()) != "2" {
		t.Errorf("Next: got %v %q, want integer 2", s.Token(), s.Text())
	}
	s.Reset(m)
	if s.Token() != fjson.LSquare {
		t.Errorf("After Reset: token is %v, want %v", s.Token(), fjson.LSquare)
	}
	if err := s.Next(); err != nil || string(s.Text()) != "1" {
		t.Errorf("After Reset: Next got %q, %v; want 1", s.Text(), err)
	}
}

func TestScanner_closeString(t *testing.T) {
	s := fjson.NewScanner([]byte("'abc\n"), loose)
	err := s.Next()
	if !errors.Is(err, fjson.ErrUnterminatedString) {
		t.Fatalf("Next: got %v, want %v", err, fjson.ErrUnterminatedString)
	}
	if err := s.CloseString(); err != nil {
		t.Fatalf("CloseString: unexpected error: %v", err)
	}
	if s.Token() != fjson.String {
		t.Errorf("Token: got %v, want %v", s.Token(), fjson.String)
	}
	if got, err := s.Unquote(); err != nil || got != "abc" {
		t.Errorf("Unquote: got %q, %v; want abc", got, err)
	}
	if err := s.Next(); err != nil || s.Token() != fjson.Newline {
		t.Errorf("Next: got %v, %v; want %v", s.Token(), err, fjson.Newline)
	}
	if err := s.CloseString(); err == nil {
		t.Error("CloseString: got nil, want error")
	}

	// An incomplete escape at the end of an unclosed string is dropped.
	for _, tc := range []struct {
		input, want string
	}{
		{`"abc\`, "abc"},
		{"\"abc\\\n", "abc"},
		{`'a\'b\`, "a'b"},
		{`"x\u00`, "x"},
		{`"x\u`, "x"},
		{`"\u00e9\u`, "\u00e9"},
	} {
		s := fjson.NewScanner([]byte(tc.input), loose)
		if err := s.Next(); !errors.Is(err, fjson.ErrUnterminatedString) {
			t.Fatalf("Next %#q: got %v, want %v", tc.input, err, fjson.ErrUnterminatedString)
		}
		if err := s.CloseString(); err != nil {
			t.Fatalf("CloseString %#q: unexpected error: %v", tc.input, err)
		}
		if got, err := s.Unquote(); err != nil || got != tc.want {
			t.Errorf("Unquote %#q: got %q, %v; want %q", tc.input, got, err, tc.want)
		}
	}
}

func TestScanner_values(t *testing.T) {
	s := fjson.NewScanner([]byte(`"a\n\u00e9\ud83d\ude00" 'it\'s' -0 9223372036854775808 `+
		`0x1F 0xFFFFFFFFFFFFFFFFF 1_000 -0.0 5. 1e400`), loose)
	next := func() {
		t.Helper()
		if err := s.Next(); err != nil {
			t.Fatalf("Next: unexpected error: %v", err)
		}
	}

	next()
	if got, err := s.Unquote(); err != nil || got != "a\n\u00e9\U0001F600" {
		t.Errorf("Unquote: got %q, %v", got, err)
	}
	next()
	if got, err := s.Unquote(); err != nil || got != "it's" {
		t.Errorf("Unquote: got %q, %v", got, err)
	}
	next()
	if got, err := s.Int64(); err != nil || got != 0 {
		t.Errorf("Int64(-0): got %v, %v", got, err)
	}
	next()
	if _, err := s.Int64(); !errors.Is(err, fjson.ErrInvalidNumber) {
		t.Errorf("Int64(overflow): got %v, want %v", err, fjson.ErrInvalidNumber)
	}
	if got, err := s.Float64(); err != nil || got != 9223372036854775808 {
		t.Errorf("Float64(overflow): got %v, %v", got, err)
	}
	next()
	if got, err := s.Int64(); err != nil || got != 31 {
		t.Errorf("Int64(0x1F): got %v, %v", got, err)
	}
	next()
	if _, err := s.Int64(); err == nil {
		t.Error("Int64(hex overflow): got nil, want error")
	}
	if _, err := s.Float64(); !errors.Is(err, fjson.ErrInvalidNumber) {
		t.Errorf("Float64(hex overflow): got %v, want %v", err, fjson.ErrInvalidNumber)
	}
	next()
	if got, err := s.Int64(); err != nil || got != 1000 {
		t.Errorf("Int64(1_000): got %v, %v", got, err)
	}
	next()
	if got, err := s.Float64(); err != nil || got != 0 || !math.Signbit(got) {
		t.Errorf("Float64(-0.0): got %v, %v", got, err)
	}
	next()
	if s.Token() != fjson.Number {
		t.Errorf("Token(5.): got %v, want %v", s.Token(), fjson.Number)
	}
	if got, err := s.Float64(); err != nil || got != 5 {
		t.Errorf("Float64(5.): got %v, %v", got, err)
	}
	next()
	if _, err := s.Float64(); !errors.Is(err, fjson.ErrInvalidNumber) {
		t.Errorf("Float64(1e400): got %v, want %v", err, fjson.ErrInvalidNumber)
	}
}
