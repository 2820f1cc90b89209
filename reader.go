package neon

import (
	"bytes"
	"fmt"

	"github.com/lestrrat-go/strcursor"
)

// Position is a line and column in the input, both 1-based.
type Position struct {
	Line   int
	Column int
}

// Pos returns the position itself. It exists so that embedding a Position
// satisfies the Event interface.
func (p Position) Pos() Position {
	return p
}

func (p Position) String() string {
	return fmt.Sprintf("line %d, column %d", p.Line, p.Column)
}

// reader supplies decoded characters one at a time with one character of
// lookahead. It owns an ordered queue of input sources; sources are
// consumed in order and dropped upon exhaustion, and new sources may be
// appended at any time. Each source is scanned through a strcursor
// cursor; the reader layers line/column accounting and XML
// character-range validation on top.
type reader struct {
	queue   []strcursor.Cursor
	line    int
	column  int
	xml11   bool
	afterCR bool
	closed  bool
}

func newReader(src []byte) *reader {
	r := &reader{line: 1, column: 1}
	r.feed(src)
	return r
}

// feed appends an input source to the queue. Legal at any time, including
// mid-parse; the templating protocol depends on it.
func (r *reader) feed(src []byte) {
	if r.closed {
		return
	}
	r.queue = append(r.queue, strcursor.NewRuneCursor(bytes.NewReader(src)))
}

func (r *reader) close() {
	r.queue = nil
	r.closed = true
}

func (r *reader) position() Position {
	return Position{Line: r.line, Column: r.column}
}

// head returns the frontmost source that still has characters, dropping
// exhausted ones.
func (r *reader) head() strcursor.Cursor {
	for len(r.queue) > 0 {
		cur := r.queue[0]
		if !cur.Done() {
			return cur
		}
		r.queue = r.queue[1:]
	}
	return nil
}

// peek returns the next character without consuming it. The second return
// value is false at end of input.
func (r *reader) peek() (rune, bool) {
	cur := r.head()
	if cur == nil {
		return 0, false
	}
	return cur.Peek(), true
}

// next consumes one character. End of input is a syntax error against
// production [1]; a codepoint outside the active version's Char range is
// one against production [2].
func (r *reader) next() (rune, error) {
	c, ok := r.advance()
	if !ok {
		return 0, syntaxError("1", ErrPrematureEOF)
	}
	if !isChar(c, r.xml11) {
		return 0, syntaxError("2", fmt.Errorf("invalid character U+%04X", c))
	}
	return c, nil
}

// nextOpt is next for positions where end of input is acceptable. The
// boolean reports whether a character was consumed.
func (r *reader) nextOpt() (rune, bool, error) {
	c, ok := r.advance()
	if !ok {
		return 0, false, nil
	}
	if !isChar(c, r.xml11) {
		return 0, true, syntaxError("2", fmt.Errorf("invalid character U+%04X", c))
	}
	return c, true, nil
}

func (r *reader) advance() (rune, bool) {
	cur := r.head()
	if cur == nil {
		return 0, false
	}
	c := cur.Peek()
	cur.Advance(1)

	// Line accounting: LF advances the line, and so does a lone CR; the
	// LF of a CR LF pair must not count twice.
	switch c {
	case '\r':
		r.line++
		r.column = 1
		r.afterCR = true
	case '\n':
		if !r.afterCR {
			r.line++
		}
		r.column = 1
		r.afterCR = false
	default:
		r.column++
		r.afterCR = false
	}
	return c, true
}
