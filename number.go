// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package fjson

import "strings"

// lexNumber classifies the text of a numeric literal. If the literal is valid
// it returns Integer or Number; otherwise it returns the kind of error and a
// description of the problem. Extended forms (a leading plus sign, a leading or
// trailing decimal point, digit separators, and radix prefixes) are accepted
// only if ext is true.
func lexNumber(text []byte, ext bool) (Token, ErrorKind, string) {
	p := text
	switch p[0] {
	case '+':
		if !ext {
			return Invalid, ErrFeatureDisabled, "leading plus sign is not enabled"
		}
		p = p[1:]
	case '-':
		p = p[1:]
	}
	if len(p) == 0 {
		return Invalid, ErrInvalidNumber, "missing digits after sign"
	}

	if len(p) > 1 && p[0] == '0' {
		if base := radixBase(p[1]); base != 0 {
			if !ext {
				return Invalid, ErrFeatureDisabled, "radix prefix is not enabled"
			} else if !validDigits(p[2:], base) {
				return Invalid, ErrInvalidNumber, "malformed radix literal"
			}
			return Integer, ErrUnknown, ""
		}
	}

	// Decimal: int [. frac] [e [sign] exp]
	ipart, p := spanDigits(p)
	var fpart []byte
	var isFrac, isExp bool
	if len(p) != 0 && p[0] == '.' {
		isFrac = true
		fpart, p = spanDigits(p[1:])
	}
	if len(p) != 0 && (p[0] == 'e' || p[0] == 'E') {
		isExp = true
		p = p[1:]
		if len(p) != 0 && (p[0] == '+' || p[0] == '-') {
			p = p[1:]
		}
		var epart []byte
		epart, p = spanDigits(p)
		if len(epart) == 0 {
			return Invalid, ErrInvalidNumber, "missing exponent digits"
		} else if k, msg := checkDigits(epart, ext); k != ErrUnknown {
			return Invalid, k, msg
		}
	}
	if len(p) != 0 {
		return Invalid, ErrInvalidNumber, "invalid character in number"
	}
	if len(ipart) == 0 && len(fpart) == 0 {
		return Invalid, ErrInvalidNumber, "missing digits"
	}
	if k, msg := checkDigits(ipart, ext); k != ErrUnknown {
		return Invalid, k, msg
	} else if k, msg := checkDigits(fpart, ext); k != ErrUnknown {
		return Invalid, k, msg
	}

	// Redundant leading zeroes are never allowed: 0, 0.5, -0 are OK; 01, -01.2 are not.
	if len(ipart) > 1 && ipart[0] == '0' {
		return Invalid, ErrInvalidNumber, "extra leading zeroes"
	}
	if len(ipart) == 0 && !ext {
		return Invalid, ErrFeatureDisabled, "leading decimal point is not enabled"
	}
	if isFrac && len(fpart) == 0 && !ext {
		return Invalid, ErrFeatureDisabled, "trailing decimal point is not enabled"
	}
	if isFrac || isExp {
		return Number, ErrUnknown, ""
	}
	return Integer, ErrUnknown, ""
}

// spanDigits splits p after its longest prefix of decimal digits and
// underscores.
func spanDigits(p []byte) (digits, rest []byte) {
	i := 0
	for i < len(p) && (isDigit(p[i]) || p[i] == '_') {
		i++
	}
	return p[:i], p[i:]
}

// checkDigits reports whether the underscores in a run of digits are allowed
// and correctly placed, each one between two digits.
func checkDigits(p []byte, ext bool) (ErrorKind, string) {
	for i, c := range p {
		if c != '_' {
			continue
		} else if !ext {
			return ErrFeatureDisabled, "digit separators are not enabled"
		} else if i == 0 || i == len(p)-1 || p[i-1] == '_' {
			return ErrInvalidNumber, "misplaced digit separator"
		}
	}
	return ErrUnknown, ""
}

// validDigits reports whether p is a non-empty run of digits in the given
// base, with underscores allowed only between digits.
func validDigits(p []byte, base int) bool {
	if len(p) == 0 || p[0] == '_' || p[len(p)-1] == '_' {
		return false
	}
	for i, c := range p {
		if c == '_' {
			if p[i-1] == '_' {
				return false
			}
			continue
		}
		if digitValue(c) >= base {
			return false
		}
	}
	return true
}

func digitValue(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10
	}
	return 99
}

func radixBase(c byte) int {
	switch c {
	case 'x', 'X':
		return 16
	case 'o', 'O':
		return 8
	case 'b', 'B':
		return 2
	}
	return 0
}

// hasRadixPrefix reports whether s, less any sign, begins with a radix prefix.
func hasRadixPrefix(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && radixBase(s[1]) != 0
}

// cleanNumber returns the text of a valid numeric literal in a form accepted
// by the strconv package.
func cleanNumber(text []byte) string {
	s := strings.ReplaceAll(string(text), "_", "")
	return strings.TrimPrefix(s, "+")
}
