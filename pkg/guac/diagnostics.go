package guac

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ----------------------------------------------------------------------------
// Diagnostics

// A Diagnostic is the human-readable report for one parse or semantic error:
// a line/col header, the offending source line (tabs expanded so the caret
// row stays aligned), a caret underline covering the error span and an
// optional message plus a "did you mean" hint.
//
//	line: 1, col: 1
//	x;
//	^
//	err : _var should be defined before being used!
type Diagnostic struct {
	Line, Col int
	Source    string // The offending source line, tabs already expanded
	Width     int    // Caret count, 1 for point errors
	Message   string
	Hint      string
}

// NewDiagnostic builds the report for the [begin, end) span. Parse errors pass
// begin == end == the high-water mark and get a single caret, checker errors
// pass the offending node's span and get it underlined in full.
func NewDiagnostic(c *Cursor, begin, end int, message, hint string) *Diagnostic {
	line, col := c.Position(begin)

	width := end - begin
	if width < 1 {
		width = 1
	}

	return &Diagnostic{
		Line: line, Col: col,
		Source:  c.Line(begin),
		Width:   width,
		Message: message,
		Hint:    hint,
	}
}

// Error renders the multi-line report, making a Diagnostic usable anywhere a
// plain error is expected.
func (d *Diagnostic) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "line: %d, col: %d\n", d.Line, d.Col)
	b.WriteString(d.Source + "\n")
	b.WriteString(strings.Repeat(" ", d.Col-1) + strings.Repeat("^", d.Width))

	if d.Message != "" {
		b.WriteString("\nerr : " + d.Message)
	}
	if d.Hint != "" {
		b.WriteString("\nhint: did you mean '" + d.Hint + "'?")
	}

	return b.String()
}

// Suggest picks the closest candidate to a misspelled name, or "" when none
// comes close enough to be worth proposing.
func Suggest(name string, candidates []string) string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}

	sort.Sort(ranks)
	if ranks[0].Distance > 3 {
		return ""
	}

	return ranks[0].Target
}
