// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// A Formatter carries the settings for pretty-printing values.
// A zero value is ready for use with default settings.
type Formatter struct {
	// Indent is the text used for each level of indentation.
	// If empty, two spaces are used.
	Indent string

	// If Compact is true, arrays and objects whose elements are all scalars
	// are rendered on a single line.
	Compact bool
}

func (f Formatter) indent() string {
	if f.Indent == "" {
		return "  "
	}
	return f.Indent
}

// Format renders a pretty-printed representation of v to w using the settings
// from f. The output has no trailing newline.
func (f Formatter) Format(w io.Writer, v Value) error {
	bw := bufio.NewWriter(w)
	f.formatValue(bw, v, "")
	return bw.Flush()
}

// ToPrettyString renders v as indented JSON, with indent spaces per level.
// If indent <= 0, the output is the same as v.JSON().
func ToPrettyString(v Value, indent int) string {
	if indent <= 0 {
		return v.JSON()
	}
	var buf bytes.Buffer
	f := Formatter{Indent: strings.Repeat(" ", indent)}
	if f.Format(&buf, v) != nil {
		return ""
	}
	return buf.String()
}

// formatValue writes a representation of v to w. The first line is not
// indented; subsequent lines are indented by indent plus the nesting level.
func (f Formatter) formatValue(w *bufio.Writer, v Value, indent string) {
	switch t := v.(type) {
	case Array:
		f.formatArray(w, t, indent)
	case Object:
		f.formatObject(w, t, indent)
	case nil:
		panic("nil value")
	default:
		w.WriteString(t.JSON())
	}
}

func (f Formatter) formatArray(w *bufio.Writer, a Array, indent string) {
	if len(a) == 0 {
		w.WriteString("[]")
		return
	} else if f.isBoring(a) {
		w.WriteString("[")
		for i, v := range a {
			if i > 0 {
				w.WriteString(", ")
			}
			w.WriteString(v.JSON())
		}
		w.WriteString("]")
		return
	}

	adent := indent + f.indent()
	w.WriteString("[\n")
	for i, v := range a {
		w.WriteString(adent)
		f.formatValue(w, v, adent)
		if i < len(a)-1 {
			w.WriteByte(',')
		}
		w.WriteByte('\n')
	}
	fmt.Fprint(w, indent, "]")
}

func (f Formatter) formatObject(w *bufio.Writer, o Object, indent string) {
	if len(o) == 0 {
		w.WriteString("{}")
		return
	} else if f.isBoring(o) {
		w.WriteString("{")
		for i, m := range o {
			if i > 0 {
				w.WriteString(", ")
			}
			fmt.Fprint(w, String(m.Key).JSON(), ": ", m.Value.JSON())
		}
		w.WriteString("}")
		return
	}

	mdent := indent + f.indent()
	w.WriteString("{\n")
	for i, m := range o {
		fmt.Fprint(w, mdent, String(m.Key).JSON(), ": ")
		f.formatValue(w, m.Value, mdent)
		if i < len(o)-1 {
			w.WriteByte(',')
		}
		w.WriteByte('\n')
	}
	fmt.Fprint(w, indent, "}")
}

// maxLineItems is the largest number of elements a compact array or object
// may have.
const maxLineItems = 6

// isBoring reports whether v is simple enough to be rendered on one line.
func (f Formatter) isBoring(v Value) bool {
	if !f.Compact {
		return false
	}
	switch t := v.(type) {
	case Array:
		if len(t) > maxLineItems {
			return false
		}
		for _, e := range t {
			if !isScalar(e) {
				return false
			}
		}
	case Object:
		if len(t) > maxLineItems {
			return false
		}
		for _, m := range t {
			if !isScalar(m.Value) {
				return false
			}
		}
	}
	return true
}

func isScalar(v Value) bool {
	switch v.(type) {
	case Array, Object:
		return false
	}
	return true
}
