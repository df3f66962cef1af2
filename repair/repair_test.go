// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package repair_test

import (
	"errors"
	"testing"

	"github.com/creachadair/fjson"
	"github.com/creachadair/fjson/repair"
	"github.com/google/go-cmp/cmp"
)

func at(pos int) fjson.Location {
	return fjson.Location{
		Span:  fjson.Span{Pos: pos, End: pos + 1},
		First: fjson.LineCol{Line: 1, Column: pos},
		Last:  fjson.LineCol{Line: 1, Column: pos + 1},
	}
}

func TestCandidates(t *testing.T) {
	e := repair.New(fjson.DefaultOptions())
	tests := []struct {
		name  string
		fault repair.Fault
		want  []repair.Fix
	}{
		{"ScalarAfterValue", repair.Fault{
			Pattern: fjson.MissingSeparator, Token: fjson.Integer, Text: "2",
		}, []repair.Fix{
			{Kind: fjson.InsertComma, Token: fjson.Comma, Score: 31},
			{Kind: fjson.DeleteToken, Score: 10},
		}},
		{"ContainerAfterValue", repair.Fault{
			Pattern: fjson.MissingSeparator, Token: fjson.LBrace, Text: "{",
		}, []repair.Fix{
			{Kind: fjson.InsertComma, Token: fjson.Comma, Score: 31},
		}},
		{"MissingColon", repair.Fault{Pattern: fjson.MissingColon, Token: fjson.String}, []repair.Fix{
			{Kind: fjson.InsertColon, Token: fjson.Colon, Score: 31},
		}},
		{"OpenString", repair.Fault{Pattern: fjson.UnterminatedString}, []repair.Fix{
			{Kind: fjson.CloseString, Score: 31},
		}},
		{"OpenArray", repair.Fault{
			Pattern: fjson.UnterminatedContainer, Token: fjson.EOF, Expected: fjson.RSquare,
		}, []repair.Fix{
			{Kind: fjson.InsertCloser, Token: fjson.RSquare, Score: 31},
		}},
		{"WrongCloser", repair.Fault{
			Pattern: fjson.MismatchedCloser, Token: fjson.RBrace, Expected: fjson.RSquare,
		}, []repair.Fix{
			{Kind: fjson.ReplaceCloser, Token: fjson.RSquare, Score: 20},
		}},
		{"WrongCloserOuter", repair.Fault{
			Pattern: fjson.MismatchedCloser, Token: fjson.RBrace, Expected: fjson.RSquare, OuterMatch: true,
		}, []repair.Fix{
			{Kind: fjson.ReplaceCloser, Token: fjson.RSquare, Score: 20},
			{Kind: fjson.InsertCloser, Token: fjson.RSquare, Score: 31},
		}},
		{"TrailingComma", repair.Fault{Pattern: fjson.TrailingComma, Token: fjson.Comma}, []repair.Fix{
			{Kind: fjson.DeleteToken, Score: 10},
		}},
		{"StraySeparator", repair.Fault{Pattern: fjson.StraySeparator, Token: fjson.Colon}, []repair.Fix{
			{Kind: fjson.DeleteToken, Score: 10},
		}},
		{"StrayCloser", repair.Fault{Pattern: fjson.StrayCloser, Token: fjson.RSquare}, []repair.Fix{
			{Kind: fjson.DeleteToken, Score: 10},
		}},
		{"NoPattern", repair.Fault{Token: fjson.Colon}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Candidates(tc.fault)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Candidates (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	fault := repair.Fault{
		Pattern:    fjson.MismatchedCloser,
		Location:   at(6),
		Depth:      2,
		Token:      fjson.RBrace,
		Text:       "}",
		Expected:   fjson.RSquare,
		OuterMatch: true,
	}

	t.Run("Scored", func(t *testing.T) {
		e := repair.New(fjson.DefaultOptions())
		fix, err := e.Resolve(fault)
		if err != nil {
			t.Fatalf("Resolve: unexpected error: %v", err)
		}
		if fix.Kind != fjson.InsertCloser || !fix.Insert() {
			t.Errorf("Resolve: got %+v, want insert closer", fix)
		}
		want := []fjson.RepairRecord{{
			Fix:      fjson.InsertCloser,
			Pattern:  fjson.MismatchedCloser,
			Location: at(6),
			After:    "]",
		}}
		if diff := cmp.Diff(want, e.Log()); diff != "" {
			t.Errorf("Log (-want, +got):\n%s", diff)
		}
	})

	t.Run("Fast", func(t *testing.T) {
		opts := fjson.DefaultOptions()
		opts.FastRepair = true
		e := repair.New(opts)
		fix, err := e.Resolve(fault)
		if err != nil {
			t.Fatalf("Resolve: unexpected error: %v", err)
		}
		if fix.Kind != fjson.ReplaceCloser || fix.Insert() {
			t.Errorf("Resolve: got %+v, want replace closer", fix)
		}
		want := []fjson.RepairRecord{{
			Fix:      fjson.ReplaceCloser,
			Pattern:  fjson.MismatchedCloser,
			Location: at(6),
			Before:   "}",
			After:    "]",
		}}
		if diff := cmp.Diff(want, e.Log()); diff != "" {
			t.Errorf("Log (-want, +got):\n%s", diff)
		}
	})

	t.Run("Unreported", func(t *testing.T) {
		opts := fjson.DefaultOptions()
		opts.ReportRepairs = false
		e := repair.New(opts)
		if _, err := e.Resolve(fault); err != nil {
			t.Fatalf("Resolve: unexpected error: %v", err)
		}
		if e.Count() != 1 {
			t.Errorf("Count: got %d, want 1", e.Count())
		}
		if log := e.Log(); log != nil {
			t.Errorf("Log: got %v, want nil", log)
		}
	})

	t.Run("CloseString", func(t *testing.T) {
		e := repair.New(fjson.DefaultOptions())
		fix, err := e.Resolve(repair.Fault{
			Pattern:  fjson.UnterminatedString,
			Location: at(0),
			Token:    fjson.String,
			Text:     "'abc",
		})
		if err != nil {
			t.Fatalf("Resolve: unexpected error: %v", err)
		}
		if fix.Kind != fjson.CloseString {
			t.Errorf("Resolve: got %v, want %v", fix.Kind, fjson.CloseString)
		}
		log := e.Log()
		if len(log) != 1 || log[0].Before != "'abc" || log[0].After != "'abc'" {
			t.Errorf("Log: got %+v, want 'abc -> 'abc'", log)
		}

		if _, err := e.Resolve(repair.Fault{
			Pattern:  fjson.UnterminatedString,
			Location: at(5),
			Token:    fjson.String,
			Text:     `"x\u00`,
		}); err != nil {
			t.Fatalf("Resolve: unexpected error: %v", err)
		}
		if log := e.Log(); len(log) != 2 || log[1].After != `"x"` {
			t.Errorf("Log: got %+v, want a closed string without its escape", log)
		}
	})
}

func TestResolve_limits(t *testing.T) {
	cause := fjson.Errorf(fjson.ErrUnexpectedToken, at(3), "unexpected %v", fjson.Integer)
	comma := func(pos int) repair.Fault {
		return repair.Fault{
			Pattern:  fjson.MissingSeparator,
			Location: at(pos),
			Depth:    1,
			Token:    fjson.Integer,
			Text:     "1",
			Cause:    cause,
		}
	}
	checkExhausted := func(t *testing.T, err error, nrep int) {
		t.Helper()
		var e *fjson.Error
		if !errors.As(err, &e) || e.Kind != fjson.ErrRepairExhausted {
			t.Fatalf("Resolve: got %v, want %v", err, fjson.ErrRepairExhausted)
		}
		if len(e.Repairs) != nrep {
			t.Errorf("Repairs: got %d, want %d", len(e.Repairs), nrep)
		}
		t.Logf("Got expected error: %v", err)
	}

	t.Run("MaxRepairs", func(t *testing.T) {
		opts := fjson.DefaultOptions()
		opts.MaxRepairs = 2
		e := repair.New(opts)
		for _, pos := range []int{3, 7} {
			if _, err := e.Resolve(comma(pos)); err != nil {
				t.Fatalf("Resolve at %d: unexpected error: %v", pos, err)
			}
		}
		_, err := e.Resolve(comma(11))
		checkExhausted(t, err, 2)
		if !errors.Is(err, fjson.ErrUnexpectedToken) {
			t.Errorf("Error %v does not wrap its cause", err)
		}
		if e.Count() != 2 {
			t.Errorf("Count: got %d, want 2", e.Count())
		}
	})

	t.Run("NoRepairs", func(t *testing.T) {
		opts := fjson.DefaultOptions()
		opts.MaxRepairs = 0
		_, err := repair.New(opts).Resolve(comma(3))
		checkExhausted(t, err, 0)
	})

	t.Run("NoProgress", func(t *testing.T) {
		e := repair.New(fjson.DefaultOptions())
		if _, err := e.Resolve(comma(3)); err != nil {
			t.Fatalf("Resolve: unexpected error: %v", err)
		}

		// The same pattern at a different depth is a different fault.
		deeper := comma(3)
		deeper.Depth = 2
		if _, err := e.Resolve(deeper); err != nil {
			t.Fatalf("Resolve: unexpected error: %v", err)
		}

		_, err := e.Resolve(comma(3))
		checkExhausted(t, err, 2)
	})

	t.Run("NoRule", func(t *testing.T) {
		e := repair.New(fjson.DefaultOptions())
		_, err := e.Resolve(repair.Fault{Location: at(3), Token: fjson.Colon, Cause: cause})
		checkExhausted(t, err, 0)
		if !errors.Is(err, fjson.ErrUnexpectedToken) {
			t.Errorf("Error %v does not wrap its cause", err)
		}
		var ferr *fjson.Error
		if errors.As(err, &ferr) {
			if want := "no repair for " + cause.Message; ferr.Message != want {
				t.Errorf("Message: got %q, want %q", ferr.Message, want)
			}
		}
		if e.Count() != 0 {
			t.Errorf("Count: got %d, want 0", e.Count())
		}
	})
}
