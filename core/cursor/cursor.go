// Package cursor reads characters from a script one at a time, with a small
// lookahead buffer and line tracking.
package cursor

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode/utf8"
)

// EOF is returned in place of a character once the stream is exhausted.
const EOF rune = -1

// rawBase is added to bytes that aren't valid UTF-8 so they stay distinct from
// every real character and can be written back unchanged.
const rawBase rune = utf8.MaxRune + 1

// MaxLookahead is the number of characters LookaheadContains may buffer
// before giving up.
const MaxLookahead = 4096

var (
	// Blank holds the whitespace characters that never end a statement.
	Blank = Chars(" \t\r\v\f")
	// Newline holds only the newline character.
	Newline = Chars("\n")
)

// Cursor is a character reader over any io.Reader. It is not safe for
// concurrent use.
type Cursor struct {
	src   *bufio.Reader
	ahead []rune
	eof   bool
	err   error
	line  int
}

// New creates a cursor positioned at the start of r on line 1. Bytes that
// aren't valid UTF-8 are kept as they are.
func New(r io.Reader) *Cursor {
	return &Cursor{src: bufio.NewReader(r), line: 1}
}

// Line returns the 1-based line of the next character.
func (c *Cursor) Line() int {
	return c.line
}

// Err returns the first read error other than io.EOF.
func (c *Cursor) Err() error {
	return c.err
}

// fill makes sure at least n characters are buffered, returning false if the
// stream ends first.
func (c *Cursor) fill(n int) bool {
	for len(c.ahead) < n {
		if c.eof {
			return false
		}
		r, size, err := c.src.ReadRune()
		if err != nil {
			c.eof = true
			if !errors.Is(err, io.EOF) {
				c.err = err
			}
			return false
		}
		if r == utf8.RuneError && size == 1 {
			if r, err = c.rawByte(); err != nil {
				c.eof, c.err = true, err
				return false
			}
		}
		c.ahead = append(c.ahead, r)
	}
	return true
}

// rawByte re-reads the invalid byte ReadRune just returned.
func (c *Cursor) rawByte() (rune, error) {
	if err := c.src.UnreadRune(); err != nil {
		return 0, err
	}
	b, err := c.src.ReadByte()
	if err != nil {
		return 0, err
	}
	return rawBase + rune(b), nil
}

// IsRaw reports whether r stands for a byte that isn't valid UTF-8.
func IsRaw(r rune) bool {
	return rawBase <= r && r < rawBase+0x100
}

// WriteRune appends r to sb, writing raw bytes back as they were read.
func WriteRune(sb *strings.Builder, r rune) {
	if IsRaw(r) {
		sb.WriteByte(byte(r - rawBase))
		return
	}
	sb.WriteRune(r)
}

// Peek returns the next character without consuming it.
func (c *Cursor) Peek() rune {
	if !c.fill(1) {
		return EOF
	}
	return c.ahead[0]
}

// Next consumes and returns the next character.
func (c *Cursor) Next() rune {
	if !c.fill(1) {
		return EOF
	}
	r := c.ahead[0]
	c.ahead = c.ahead[1:]
	if r == '\n' {
		c.line++
	}
	return r
}

// ConsumeUntil consumes characters up to, but not including, the first member
// of stop. It returns the consumed text and the character that stopped it,
// which is EOF at the end of the stream.
func (c *Cursor) ConsumeUntil(stop Set) (string, rune) {
	var sb strings.Builder
	for {
		r := c.Peek()
		if r == EOF || stop.Contains(r) {
			return sb.String(), r
		}
		WriteRune(&sb, c.Next())
	}
}

// SkipSpace consumes blanks, and newlines too if newlines is set, stopping at
// the first other character.
func (c *Cursor) SkipSpace(newlines bool) {
	skip := Blank
	if newlines {
		skip = skip.Union(Newline)
	}
	c.ConsumeUntil(skip.Complement())
}

// SkipLineComment consumes everything up to the next newline, leaving the
// newline itself in the stream.
func (c *Cursor) SkipLineComment() {
	c.ConsumeUntil(Newline)
}

// LookaheadContains reports whether target appears before any member of stop
// or the end of the stream. Nothing is consumed. If no answer is found within
// MaxLookahead characters it reports false.
func (c *Cursor) LookaheadContains(target rune, stop Set) bool {
	for i := 0; i < MaxLookahead; i++ {
		if !c.fill(i + 1) {
			return false
		}
		switch r := c.ahead[i]; {
		case r == target:
			return true
		case stop.Contains(r):
			return false
		}
	}
	return false
}
