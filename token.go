// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package fjson

import "strings"

// Token is the type of a lexical token in the forgiving JSON grammar.
type Token byte

// Constants defining the valid Token values.
const (
	Invalid Token = iota // invalid token
	LBrace               // left brace "{"
	RBrace               // right brace "}"
	LSquare              // left square bracket "["
	RSquare              // right square bracket "]"
	Comma                // comma ","
	Colon                // colon ":"
	Integer              // number: integer with no fraction or exponent
	Number               // number with fraction and/or exponent
	String               // quoted string, single or double
	True                 // constant: true
	False                // constant: false
	Null                 // constant: null
	Ident                // bare identifier

	BlockComment // comment: /* ... */
	LineComment  // comment: // ... or # ...
	Newline      // line break, when newlines separate elements
	EOF          // end of input

	// Do not modify the order of the punctuation constants without updating
	// the self-delimiting token check below.
)

var tokenStr = [...]string{
	Invalid: "invalid token",
	LBrace:  `"{"`,
	RBrace:  `"}"`,
	LSquare: `"["`,
	RSquare: `"]"`,
	Comma:   `","`,
	Colon:   `":"`,
	Integer: "integer",
	Number:  "number",
	String:  "string",
	True:    "true",
	False:   "false",
	Null:    "null",
	Ident:   "identifier",

	BlockComment: "block comment",
	LineComment:  "line comment",
	Newline:      "newline",
	EOF:          "end of input",
}

func (t Token) String() string {
	v := int(t)
	if v >= len(tokenStr) {
		return tokenStr[Invalid]
	}
	return tokenStr[v]
}

// IsComment reports whether t is a comment token.
func (t Token) IsComment() bool { return t == LineComment || t == BlockComment }

// IsTrivia reports whether t carries no grammatical content outside of a
// separator position.
func (t Token) IsTrivia() bool { return t.IsComment() || t == Newline }

// IsScalar reports whether t begins a complete non-container value.
func (t Token) IsScalar() bool { return t >= Integer && t <= Ident }

// IsCloser reports whether t closes an array or object.
func (t Token) IsCloser() bool { return t == RBrace || t == RSquare }

// Closer returns the closing token matching an opening token, or Invalid.
func (t Token) Closer() Token {
	switch t {
	case LBrace:
		return RBrace
	case LSquare:
		return RSquare
	}
	return Invalid
}

// A Lexeme is a single token together with its source text and location.
// The Text field aliases the scanner input.
type Lexeme struct {
	Token    Token
	Text     []byte
	Location Location
}

var self = [...]Token{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch byte) (Token, bool) {
	i := strings.IndexByte("{}[],:", ch)
	if i >= 0 {
		return self[i], true
	}
	return Invalid, false
}
