// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package escape handles quoting and unquoting of JSON strings.
package escape

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"

	"go4.org/mem"
)

// Unquote decodes a byte slice containing the body of a quoted string, in
// either quotation style. The input must have the enclosing quotation marks
// already removed.
//
// Escape sequences are replaced with their unescaped equivalents. A \uXXXX
// escape for a high surrogate followed by one for a low surrogate is decoded
// as a single rune. Unpaired surrogates and unknown escapes are replaced by
// the Unicode replacement rune. Unquote reports an error for an incomplete
// escape sequence.
func Unquote(src mem.RO) ([]byte, error) {
	dec := make([]byte, 0, src.Len())
	i := mem.IndexByte(src, '\\')
	if i < 0 {
		return mem.Append(dec, src), nil
	}

	putRune := func(r rune) { dec = utf8.AppendRune(dec, r) }
	for i >= 0 {
		dec = mem.Append(dec, src.SliceTo(i))
		src = src.SliceFrom(i + 1)
		if src.Len() == 0 {
			return nil, errors.New("incomplete escape sequence")
		}
		c := src.At(0)
		src = src.SliceFrom(1)
		switch c {
		case '"', '\'', '\\', '/':
			dec = append(dec, c)
		case 'b':
			dec = append(dec, '\b')
		case 'f':
			dec = append(dec, '\f')
		case 'n':
			dec = append(dec, '\n')
		case 'r':
			dec = append(dec, '\r')
		case 't':
			dec = append(dec, '\t')
		case 'u':
			r, n, err := decodeUnicode(src)
			if err != nil {
				return nil, err
			}
			putRune(r)
			src = src.SliceFrom(n)
		default:
			putRune(utf8.RuneError)
		}
		i = mem.IndexByte(src, '\\')
	}
	return mem.Append(dec, src), nil
}

// decodeUnicode decodes the hex digits of a \u escape at the front of src,
// combining it with a following low-surrogate escape if there is one. It
// returns the rune and the number of bytes consumed.
func decodeUnicode(src mem.RO) (rune, int, error) {
	if src.Len() < 4 {
		return 0, 0, errors.New("incomplete Unicode escape")
	}
	v, ok := parseHex4(src)
	if !ok {
		return utf8.RuneError, 4, nil
	}
	r := rune(v)
	if !utf16.IsSurrogate(r) {
		return r, 4, nil
	}

	// A high surrogate must be followed by \uXXXX with a low surrogate.
	rest := src.SliceFrom(4)
	if rest.Len() >= 6 && rest.At(0) == '\\' && rest.At(1) == 'u' {
		if w, ok := parseHex4(rest.SliceFrom(2)); ok {
			if dr := utf16.DecodeRune(r, rune(w)); dr != utf8.RuneError {
				return dr, 10, nil
			}
		}
	}
	return utf8.RuneError, 4, nil
}

func parseHex4(data mem.RO) (int, bool) {
	var v int
	for i := 0; i < 4; i++ {
		b := data.At(i)
		v <<= 4
		if '0' <= b && b <= '9' {
			v += int(b - '0')
		} else if 'a' <= b && b <= 'f' {
			v += int(b - 'a' + 10)
		} else if 'A' <= b && b <= 'F' {
			v += int(b - 'A' + 10)
		} else {
			return 0, false
		}
	}
	return v, true
}
