// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package fjson

import (
	"errors"

	"github.com/creachadair/fjson/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string { return string(escape.Quote(mem.S(src))) }

// AppendQuote appends the JSON string encoding of src to buf.
func AppendQuote(buf []byte, src string) []byte { return escape.AppendQuote(buf, mem.S(src)) }

// Unquote decodes a quoted string value. The quotation marks, either double
// or single, are removed, and escape sequences are replaced with their
// unescaped equivalents.
//
// Invalid escapes are replaced by the Unicode replacement rune. Unquote
// reports an error for an incomplete escape sequence.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || (src[0] != '"' && src[0] != '\'') || src[len(src)-1] != src[0] {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(mem.S(src[1 : len(src)-1]))
}

// CloseQuoted returns the text of an unterminated string literal, including
// its opening quote, with the matching closing quote added. An incomplete
// escape sequence at the end of text is removed.
func CloseQuoted(text string) string {
	if text == "" {
		return `"`
	}
	return text[:1] + string(trimEscape([]byte(text[1:]))) + text[:1]
}
