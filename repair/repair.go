// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package repair implements the fault-repair engine used by the parser.
//
// When the parser meets a syntax fault and repair is enabled, it classifies
// the fault as one of the patterns defined by the fjson package and passes it
// to an Engine. The engine consults a fixed, ordered table of rules to find
// the candidate fixes for that pattern, chooses one, and records it. The
// parser then applies the fix and continues from the same point in the input.
//
// The engine enforces two bounds. No more than Options.MaxRepairs fixes are
// applied to a single document, and no fault may recur at the same input
// offset and nesting depth, so that repair always makes forward progress.
// When a bound is reached, or no rule applies, the engine reports an error
// of kind fjson.ErrRepairExhausted.
package repair

import (
	"errors"
	"fmt"

	"github.com/creachadair/fjson"
	"github.com/creachadair/mds/mapset"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("fjson.repair")

// A Fault describes a syntax fault detected by the parser.
type Fault struct {
	Pattern  fjson.Pattern
	Location fjson.Location // the offending token, or the point of a missing one
	Depth    int            // nesting depth at the fault

	Token fjson.Token // the offending token
	Text  string      // the source text of the offending token

	// For UnterminatedContainer and MismatchedCloser, the closer the
	// innermost open container expects.
	Expected fjson.Token

	// For MismatchedCloser, whether an enclosing container would be closed
	// by the offending token.
	OuterMatch bool

	// The syntax error that would be reported if the fault is not repaired.
	Cause error
}

// A Fix is an edit proposed for a Fault.
type Fix struct {
	Kind  fjson.FixKind
	Token fjson.Token // the token inserted or substituted, if any
	Score int         // higher is preferred
}

// Insert reports whether the fix inserts a token in front of the current one.
func (f Fix) Insert() bool {
	return f.Kind == fjson.InsertComma || f.Kind == fjson.InsertColon || f.Kind == fjson.InsertCloser
}

// An Engine chooses and records fixes for the faults of a single document.
// An Engine is not safe for concurrent use.
type Engine struct {
	opts fjson.Options
	log  []fjson.RepairRecord
	n    int
	seen mapset.Set[faultKey]
}

type faultKey struct {
	pos, depth int
	pattern    fjson.Pattern
}

// New constructs an Engine governed by the repair settings of opts.
func New(opts fjson.Options) *Engine {
	return &Engine{opts: opts, seen: mapset.New[faultKey]()}
}

// Count reports the number of fixes applied so far.
func (e *Engine) Count() int { return e.n }

// Log returns the fixes applied so far, in order. It is empty unless the
// engine's options enable ReportRepairs.
func (e *Engine) Log() []fjson.RepairRecord {
	if len(e.log) == 0 {
		return nil
	}
	return append([]fjson.RepairRecord(nil), e.log...)
}

// Candidates returns the fixes proposed for f by the rule table, in table
// order, with their scores. It returns nil if no rule applies.
func (e *Engine) Candidates(f Fault) []Fix {
	var out []Fix
	for _, r := range rules {
		if r.pattern != f.Pattern || (r.when != nil && !r.when(f)) {
			continue
		}
		fix := Fix{Kind: r.fix, Token: r.token}
		if fix.Token == fjson.Invalid && (r.fix == fjson.InsertCloser || r.fix == fjson.ReplaceCloser) {
			fix.Token = f.Expected
		}
		fix.Score = score(fix.Kind)
		out = append(out, fix)
	}
	return out
}

// Resolve chooses a fix for f and records it. With FastRepair the first
// candidate in table order is chosen, otherwise the best-scoring candidate,
// with ties going to the earlier rule.
//
// Resolve reports an error of kind fjson.ErrRepairExhausted if no rule
// applies to f, if the repair limit has been reached, or if f repeats an
// earlier fault at the same position and depth.
func (e *Engine) Resolve(f Fault) (Fix, error) {
	key := faultKey{pos: f.Location.Pos, depth: f.Depth, pattern: f.Pattern}
	if e.seen.Has(key) {
		return Fix{}, e.exhausted(f, "no progress repairing %s", f.Pattern)
	}
	if e.n >= e.opts.MaxRepairs {
		return Fix{}, e.exhausted(f, "%s: limit of %d repairs reached", f.Pattern, e.opts.MaxRepairs)
	}
	cands := e.Candidates(f)
	if len(cands) == 0 {
		return Fix{}, e.exhausted(f, "no repair for %s", describe(f))
	}

	best := cands[0]
	if !e.opts.FastRepair {
		for _, c := range cands[1:] {
			if c.Score > best.Score {
				best = c
			}
		}
	}

	e.seen.Add(key)
	e.n++
	rec := fjson.RepairRecord{
		Fix:      best.Kind,
		Pattern:  f.Pattern,
		Location: f.Location,
	}
	rec.Before, rec.After = edit(f, best)
	if e.opts.ReportRepairs {
		e.log = append(e.log, rec)
	}
	log.Debugf("repair %d: %v", e.n, rec)
	return best, nil
}

func (e *Engine) exhausted(f Fault, msg string, args ...any) error {
	err := fjson.Errorf(fjson.ErrRepairExhausted, f.Location, msg, args...)
	err.Repairs = e.Log()
	err.Err = f.Cause
	log.Debugf("repair failed after %d fixes: %v", e.n, err)
	return err
}

func describe(f Fault) string {
	var e *fjson.Error
	if errors.As(f.Cause, &e) {
		return e.Message
	} else if f.Cause != nil {
		return f.Cause.Error()
	}
	return f.Pattern.String()
}

// edit returns the source text affected by applying fix to f, and the text
// that replaces it.
func edit(f Fault, fix Fix) (before, after string) {
	switch fix.Kind {
	case fjson.InsertComma:
		return "", ","
	case fjson.InsertColon:
		return "", ":"
	case fjson.InsertCloser:
		return "", closerText(fix.Token)
	case fjson.ReplaceCloser:
		return f.Text, closerText(fix.Token)
	case fjson.CloseString:
		return f.Text, fjson.CloseQuoted(f.Text)
	case fjson.DeleteToken:
		return f.Text, ""
	}
	return "", ""
}

func closerText(t fjson.Token) string {
	switch t {
	case fjson.RBrace:
		return "}"
	case fjson.RSquare:
		return "]"
	}
	return fmt.Sprint(t)
}
