package guac

import "strings"

// ----------------------------------------------------------------------------
// Text cursor

// The cursor owns the raw source text and the two positions the whole parsing
// pass revolves around: the current index, which productions advance and reset
// freely while backtracking, and the high-water index, the furthest position
// ever reached. The high-water mark only moves forward (the literal matcher is
// the single, deliberate exception) and is where parse diagnostics point: in a
// PEG-ordered grammar the longest partial match is the best error location.
//
// The matching primitives share one contract: on success they advance the
// current index past the consumed bytes and return true; on failure they
// return false and leave the current index where it was. ReadUntil and
// ReadFloat are the exceptions: they keep whatever they consumed before
// failing.
type Cursor struct {
	content   string
	current   int
	highWater int
	captures  map[string]capture
}

// A capture records the byte range the cursor covered between BeginCapture and
// EndCapture for one tag. Each tag holds the last recorded range only.
type capture struct{ begin, end int }

// Initializes and returns to the caller a brand new 'Cursor' over 'content'.
func NewCursor(content string) *Cursor {
	return &Cursor{content: content, captures: map[string]capture{}}
}

// Len returns the length of the source buffer.
func (c *Cursor) Len() int { return len(c.content) }

// Pos returns the current index.
func (c *Cursor) Pos() int { return c.current }

// HighWater returns the furthest index ever reached.
func (c *Cursor) HighWater() int { return c.highWater }

// Reset moves the current index back to 'pos' without lowering the high-water
// mark; a current index lying beyond the mark raises it first. Productions
// save Pos() on entry and Reset on failure.
func (c *Cursor) Reset(pos int) {
	if c.current > c.highWater {
		c.highWater = c.current
	}

	c.current = pos
}

// EOF reports whether the current index sits past the last byte.
func (c *Cursor) EOF() bool { return c.current >= len(c.content) }

func (c *Cursor) advance() {
	c.current++
	if c.current > c.highWater {
		c.highWater = c.current
	}
}

// ----------------------------------------------------------------------------
// Matching primitives

// Next accepts any single byte, it fails only at EOF.
func (c *Cursor) Next() bool {
	if c.EOF() {
		return false
	}

	c.advance()
	return true
}

// ReadChar accepts exactly the byte 'b'.
func (c *Cursor) ReadChar(b byte) bool {
	if c.EOF() {
		return false
	}

	if c.content[c.current] == b {
		return c.Next()
	}
	return false
}

// ReadRange accepts one byte within [lo, hi].
func (c *Cursor) ReadRange(lo, hi byte) bool {
	if c.EOF() {
		return false
	}

	if lo <= c.content[c.current] && c.content[c.current] <= hi {
		return c.Next()
	}
	return false
}

// ReadNotRange accepts one byte outside [lo, hi].
func (c *Cursor) ReadNotRange(lo, hi byte) bool {
	if c.EOF() {
		return false
	}

	if c.content[c.current] < lo || hi < c.content[c.current] {
		return c.Next()
	}
	return false
}

// ReadSet accepts one byte contained in 'set'.
func (c *Cursor) ReadSet(set string) bool {
	if c.EOF() {
		return false
	}

	if strings.IndexByte(set, c.content[c.current]) >= 0 {
		return c.Next()
	}
	return false
}

// ReadNotSet accepts one byte not contained in 'set'.
func (c *Cursor) ReadNotSet(set string) bool {
	if c.EOF() {
		return false
	}

	if strings.IndexByte(set, c.content[c.current]) >= 0 {
		return false
	}
	return c.Next()
}

// ReadText accepts the literal 'text' all-or-nothing: a partial match restores
// the current index. When the mismatch happens right at the high-water mark the
// mark is pulled back one byte (never below the start of the buffer), so that
// a half-matched keyword does not drag diagnostics into the middle of a
// literal nobody wrote.
func (c *Cursor) ReadText(text string) bool {
	if c.EOF() {
		return false
	}

	tmp := c.current
	for i := 0; i < len(text); i++ {
		if c.EOF() || c.content[c.current] != text[i] {
			if c.highWater == c.current && c.highWater > 0 {
				c.highWater--
			}
			c.current = tmp
			return false
		}
		c.advance()
	}

	return true
}

// ReadUntil consumes bytes up to and including the next occurrence of 'b'.
// Reaching EOF ends the read and reports failure.
func (c *Cursor) ReadUntil(b byte) bool {
	if c.EOF() {
		return false
	}

	for !c.EOF() && c.content[c.current] != b {
		c.advance()
	}

	return c.Next()
}

// ReadInt accepts [0-9]+.
func (c *Cursor) ReadInt() bool {
	if c.EOF() {
		return false
	}

	digits := 0
	for c.ReadRange('0', '9') {
		digits++
	}

	return digits > 0
}

// ReadID accepts [a-zA-Z_][a-zA-Z_0-9]*.
func (c *Cursor) ReadID() bool {
	if c.EOF() {
		return false
	}

	if c.ReadRange('a', 'z') || c.ReadRange('A', 'Z') || c.ReadChar('_') {
		for c.ReadRange('a', 'z') || c.ReadRange('A', 'Z') || c.ReadChar('_') || c.ReadRange('0', '9') {
		}
		return true
	}

	return false
}

// ReadFloat accepts ('-' / '+')* (Dec / Frac) Exp? with Dec <- Int '.' Int?,
// Frac <- '.' Int and Exp <- ('e' / 'E') ('-' / '+')? Int. The grammar never
// produces floats, the primitive is part of the cursor's matcher set anyway.
func (c *Cursor) ReadFloat() bool {
	for c.ReadChar('-') || c.ReadChar('+') {
	}

	if c.readFloatDec() || c.readFloatFrac() {
		c.readFloatExp()
		return true
	}

	return false
}

func (c *Cursor) readFloatDec() bool {
	if c.ReadInt() && c.ReadChar('.') {
		c.ReadInt()
		return true
	}

	return false
}

func (c *Cursor) readFloatFrac() bool {
	return c.ReadChar('.') && c.ReadInt()
}

func (c *Cursor) readFloatExp() bool {
	if c.ReadChar('e') || c.ReadChar('E') {
		if !c.ReadChar('-') {
			c.ReadChar('+')
		}

		return c.ReadInt()
	}

	return false
}

// SkipSpace greedily consumes spaces, tabs and newlines.
func (c *Cursor) SkipSpace() {
	for c.ReadSet(" \n\t") {
	}
}

// ----------------------------------------------------------------------------
// Named captures

// BeginCapture records the current index as the begin of the range tagged
// 'tag', overwriting whatever range the tag held before.
func (c *Cursor) BeginCapture(tag string) {
	c.captures[tag] = capture{begin: c.current, end: c.current}
}

// EndCapture records the current index as the end of the range tagged 'tag'.
// It fails when no BeginCapture ever ran for the tag.
func (c *Cursor) EndCapture(tag string) bool {
	rng, ok := c.captures[tag]
	if !ok {
		return false
	}

	rng.end = c.current
	c.captures[tag] = rng
	return true
}

// Capture returns a copy of the text covered by the tagged range, or "" for an
// unknown tag.
func (c *Cursor) Capture(tag string) string {
	rng, ok := c.captures[tag]
	if !ok || rng.end < rng.begin {
		return ""
	}

	return c.content[rng.begin:rng.end]
}

// CaptureSpan returns the (begin, end) byte offsets of the tagged range.
func (c *Cursor) CaptureSpan(tag string) (int, int) {
	rng := c.captures[tag]
	return rng.begin, rng.end
}

// ----------------------------------------------------------------------------
// Diagnostic helpers

// Position converts the byte offset into a 1-based (line, column) pair by
// counting newlines from the start of the buffer.
func (c *Cursor) Position(offset int) (int, int) {
	if offset > len(c.content) {
		offset = len(c.content)
	}

	line, col := 1, 1
	for i := 0; i < offset; i++ {
		if c.content[i] == '\n' {
			line, col = line+1, 1
		} else {
			col++
		}
	}

	return line, col
}

// Line extracts the source line containing the byte offset, with tabs replaced
// by single spaces so that caret underlining stays aligned.
func (c *Cursor) Line(offset int) string {
	if offset > len(c.content) {
		offset = len(c.content)
	}

	begin := offset
	for begin > 0 && c.content[begin-1] != '\n' {
		begin--
	}

	end := offset
	for end < len(c.content) && c.content[end] != '\n' {
		end++
	}

	return strings.ReplaceAll(c.content[begin:end], "\t", " ")
}
