package fjson

import (
	"bytes"
	"fmt"
	"strings"
)

// A Span describes a contiguous span of a source input.
type Span struct {
	Pos int // the start offset, 0-based
	End int // the end offset, 0-based (noninclusive)
}

// Len reports the length of the span in bytes.
func (s Span) Len() int { return s.End - s.Pos }

func (s Span) String() string { return fmt.Sprintf("%d..%d", s.Pos, s.End) }

// A LineCol describes the line number and column offset of a location in
// source text.
type LineCol struct {
	Line   int // line number, 1-based
	Column int // byte offset of column in line, 0-based
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Column) }

// A Location describes the complete location of a range of source text,
// including line and column offsets.
type Location struct {
	Span
	First, Last LineCol
}

func (loc Location) String() string {
	if loc.First == loc.Last {
		return loc.First.String()
	}
	return fmt.Sprintf("%s-%s", loc.First, loc.Last)
}

// Excerpt renders the line of input containing the start of loc, followed by
// a line with a caret under the starting column. It returns "" if loc does not
// fall within input.
func Excerpt(input []byte, loc Location) string {
	if loc.Pos < 0 || loc.Pos > len(input) {
		return ""
	}
	start := bytes.LastIndexByte(input[:loc.Pos], '\n') + 1
	end := bytes.IndexByte(input[loc.Pos:], '\n')
	if end < 0 {
		end = len(input)
	} else {
		end += loc.Pos
	}
	line := strings.TrimRight(string(input[start:end]), "\r")

	// Preserve tabs in the gutter so the caret lines up in a terminal.
	var pad strings.Builder
	for _, b := range input[start:loc.Pos] {
		if b == '\t' {
			pad.WriteByte('\t')
		} else {
			pad.WriteByte(' ')
		}
	}
	return line + "\n" + pad.String() + "^"
}
