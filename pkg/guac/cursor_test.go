package guac_test

import (
	"testing"

	"github.com/RaxoCoding/guacamole-lang/pkg/guac"
)

func TestMatchingPrimitives(t *testing.T) {
	t.Run("ReadChar advances on match only", func(t *testing.T) {
		c := guac.NewCursor("ab")

		if c.ReadChar('b') {
			t.Errorf("expected 'b' not to match at position 0")
		}
		if c.Pos() != 0 {
			t.Errorf("expected position 0 after failed match, got %d", c.Pos())
		}
		if !c.ReadChar('a') || !c.ReadChar('b') {
			t.Errorf("expected 'a' then 'b' to match")
		}
		if !c.EOF() {
			t.Errorf("expected EOF after consuming the whole input")
		}
		if c.ReadChar('b') {
			t.Errorf("expected match at EOF to fail")
		}
	})

	t.Run("ReadRange and ReadNotRange", func(t *testing.T) {
		c := guac.NewCursor("a9")

		if c.ReadRange('0', '9') {
			t.Errorf("expected 'a' to fall outside [0-9]")
		}
		if !c.ReadNotRange('0', '9') {
			t.Errorf("expected 'a' to match the complement of [0-9]")
		}
		if !c.ReadRange('0', '9') {
			t.Errorf("expected '9' to match [0-9]")
		}
	})

	t.Run("ReadSet and ReadNotSet", func(t *testing.T) {
		c := guac.NewCursor("+x")

		if !c.ReadSet("+-!") {
			t.Errorf("expected '+' to match the set")
		}
		if c.ReadSet("+-!") {
			t.Errorf("expected 'x' not to match the set")
		}
		if !c.ReadNotSet("+-!") {
			t.Errorf("expected 'x' to match the complement set")
		}
	})

	t.Run("ReadText is all-or-nothing", func(t *testing.T) {
		c := guac.NewCursor("whale")

		if c.ReadText("while") {
			t.Errorf("expected 'while' not to match 'whale'")
		}
		if c.Pos() != 0 {
			t.Errorf("expected position restored to 0 after partial match, got %d", c.Pos())
		}
		if !c.ReadText("whale") {
			t.Errorf("expected 'whale' to match in full")
		}
	})

	t.Run("ReadUntil consumes the delimiter", func(t *testing.T) {
		c := guac.NewCursor("abc\ndef")

		if !c.ReadUntil('\n') {
			t.Errorf("expected read up to the newline to succeed")
		}
		if c.Pos() != 4 {
			t.Errorf("expected position 4 just past the newline, got %d", c.Pos())
		}
		if c.ReadUntil('\n') {
			t.Errorf("expected read to fail when the delimiter is missing")
		}
		if !c.EOF() {
			t.Errorf("expected the failed read to stop at EOF")
		}
	})

	t.Run("ReadInt and ReadID", func(t *testing.T) {
		c := guac.NewCursor("123abc_9 9x _id")

		if !c.ReadInt() {
			t.Errorf("expected '123' to match as an integer")
		}
		if !c.ReadID() {
			t.Errorf("expected 'abc_9' to match as an identifier")
		}

		c.ReadChar(' ')
		if c.ReadID() {
			t.Errorf("expected '9x' not to match as an identifier")
		}

		c.ReadInt()
		c.ReadChar('x')
		c.ReadChar(' ')
		if !c.ReadID() {
			t.Errorf("expected '_id' to match as an identifier")
		}
	})

	t.Run("ReadFloat", func(t *testing.T) {
		accepted := []string{"3.14", "-2.5", ".5", "1.", "+1.5e3", "2.5E-2"}
		for _, input := range accepted {
			c := guac.NewCursor(input)
			if !c.ReadFloat() {
				t.Errorf("expected %q to match as a float", input)
			}
		}

		c := guac.NewCursor("abc")
		if c.ReadFloat() {
			t.Errorf("expected 'abc' not to match as a float")
		}
	})

	t.Run("SkipSpace", func(t *testing.T) {
		c := guac.NewCursor(" \t\n x")

		c.SkipSpace()
		if !c.ReadChar('x') {
			t.Errorf("expected 'x' right after the skipped whitespace")
		}
	})
}

func TestHighWaterMark(t *testing.T) {
	t.Run("Never decreases across successful steps", func(t *testing.T) {
		c := guac.NewCursor("abc def")

		mark := c.HighWater()
		steps := []func() bool{
			func() bool { return c.ReadChar('a') },
			func() bool { return c.ReadID() },
			func() bool { c.SkipSpace(); return true },
			func() bool { return c.ReadText("def") },
		}

		for i, step := range steps {
			if !step() {
				t.Fatalf("step %d unexpectedly failed", i)
			}
			if c.HighWater() < mark {
				t.Errorf("high-water decreased from %d to %d at step %d", mark, c.HighWater(), i)
			}
			mark = c.HighWater()
		}
	})

	t.Run("Survives a backtrack", func(t *testing.T) {
		c := guac.NewCursor("abcdef")

		c.ReadText("abcd")
		c.Reset(0)

		if c.Pos() != 0 {
			t.Errorf("expected position restored to 0, got %d", c.Pos())
		}
		if c.HighWater() != 4 {
			t.Errorf("expected high-water to stay at 4, got %d", c.HighWater())
		}
	})

	t.Run("Partial literal pulls the mark back one byte", func(t *testing.T) {
		c := guac.NewCursor("whale")

		c.ReadText("while")
		if c.HighWater() != 1 {
			t.Errorf("expected high-water 1 after the partial keyword, got %d", c.HighWater())
		}
	})
}

func TestNamedCaptures(t *testing.T) {
	t.Run("Capture returns the covered range", func(t *testing.T) {
		c := guac.NewCursor("hello = 3")

		c.BeginCapture("VAR")
		c.ReadID()
		c.EndCapture("VAR")

		if got := c.Capture("VAR"); got != "hello" {
			t.Errorf("expected capture 'hello', got %q", got)
		}
		if begin, end := c.CaptureSpan("VAR"); begin != 0 || end != 5 {
			t.Errorf("expected span (0, 5), got (%d, %d)", begin, end)
		}
	})

	t.Run("A tag holds the last recorded range only", func(t *testing.T) {
		c := guac.NewCursor("foo bar")

		c.BeginCapture("VAR")
		c.ReadID()
		c.EndCapture("VAR")
		c.SkipSpace()
		c.BeginCapture("VAR")
		c.ReadID()
		c.EndCapture("VAR")

		if got := c.Capture("VAR"); got != "bar" {
			t.Errorf("expected the second capture 'bar', got %q", got)
		}
	})

	t.Run("Unknown tags", func(t *testing.T) {
		c := guac.NewCursor("x")

		if c.EndCapture("NOPE") {
			t.Errorf("expected EndCapture to fail for a tag never begun")
		}
		if got := c.Capture("NOPE"); got != "" {
			t.Errorf("expected empty capture for an unknown tag, got %q", got)
		}
	})
}

func TestPositions(t *testing.T) {
	t.Run("Offset to line and column", func(t *testing.T) {
		c := guac.NewCursor("ab\ncd\nef")

		test := func(offset, line, col int) {
			gotLine, gotCol := c.Position(offset)
			if gotLine != line || gotCol != col {
				t.Errorf("offset %d: expected (%d, %d), got (%d, %d)", offset, line, col, gotLine, gotCol)
			}
		}

		test(0, 1, 1)
		test(1, 1, 2)
		test(3, 2, 1)
		test(4, 2, 2)
		test(6, 3, 1)
		test(8, 3, 3)
	})

	t.Run("Line extraction with tab expansion", func(t *testing.T) {
		c := guac.NewCursor("first\n\tx = 1\nlast")

		if got := c.Line(8); got != " x = 1" {
			t.Errorf("expected the middle line with the tab expanded, got %q", got)
		}
		if got := c.Line(0); got != "first" {
			t.Errorf("expected the first line, got %q", got)
		}
		if got := c.Line(17); got != "last" {
			t.Errorf("expected the last line at EOF, got %q", got)
		}
	})
}
