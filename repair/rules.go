// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package repair

import "github.com/creachadair/fjson"

// A rule proposes one fix for one fault pattern. The order of the rule table
// is significant: it determines the choice under FastRepair, and breaks ties
// between equal scores otherwise.
type rule struct {
	pattern fjson.Pattern
	fix     fjson.FixKind
	token   fjson.Token      // the token inserted, if fixed by the rule
	when    func(Fault) bool // if not nil, the rule applies only when true
}

var rules = []rule{
	{pattern: fjson.MissingSeparator, fix: fjson.InsertComma, token: fjson.Comma},
	{pattern: fjson.MissingSeparator, fix: fjson.DeleteToken, when: isScalar},
	{pattern: fjson.MissingColon, fix: fjson.InsertColon, token: fjson.Colon},
	{pattern: fjson.UnterminatedString, fix: fjson.CloseString},
	{pattern: fjson.UnterminatedContainer, fix: fjson.InsertCloser},
	{pattern: fjson.MismatchedCloser, fix: fjson.ReplaceCloser},
	{pattern: fjson.MismatchedCloser, fix: fjson.InsertCloser, when: outerMatch},
	{pattern: fjson.TrailingComma, fix: fjson.DeleteToken},
	{pattern: fjson.StraySeparator, fix: fjson.DeleteToken},
	{pattern: fjson.StrayCloser, fix: fjson.DeleteToken},
}

func outerMatch(f Fault) bool { return f.OuterMatch }

// isScalar reports whether the offending token is a complete value by itself.
func isScalar(f Fault) bool { return f.Token.IsScalar() }

// score ranks a fix: insertions first, then substitutions, then deletions.
// Each step of weight outranks the difference in tokens preserved.
func score(k fjson.FixKind) int {
	var weight, kept int
	switch k {
	case fjson.InsertComma, fjson.InsertColon, fjson.InsertCloser, fjson.CloseString:
		weight, kept = 3, 1
	case fjson.ReplaceCloser:
		weight = 2
	case fjson.DeleteToken:
		weight = 1
	}
	return weight*10 + kept
}
