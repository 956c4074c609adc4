package cursor

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
)

func TestPeekNext(t *testing.T) {
	c := New(strings.NewReader("ab"))

	assert.Equal(t, 'a', c.Peek())
	assert.Equal(t, 'a', c.Peek(), "peek must not consume")
	assert.Equal(t, 'a', c.Next())
	assert.Equal(t, 'b', c.Next())
	assert.Equal(t, EOF, c.Peek())
	assert.Equal(t, EOF, c.Next())
	assert.Nil(t, c.Err())
}

func TestConsumeUntil(t *testing.T) {
	cases := map[string]struct {
		input    string
		stop     Set
		wantText string
		wantStop rune
		wantNext rune
	}{
		"stops-at-member": {
			input:    "echo hi",
			stop:     Chars(" \t"),
			wantText: "echo",
			wantStop: ' ',
			wantNext: ' ',
		},
		"stops-at-eof": {
			input:    "echo",
			stop:     Chars(" "),
			wantText: "echo",
			wantStop: EOF,
			wantNext: EOF,
		},
		"immediate-stop": {
			input:    ";ls",
			stop:     Chars(";"),
			wantText: "",
			wantStop: ';',
			wantNext: ';',
		},
		"predicate-set": {
			input:    "abc123",
			stop:     Func(func(r rune) bool { return r >= '0' && r <= '9' }),
			wantText: "abc",
			wantStop: '1',
			wantNext: '1',
		},
		"multibyte": {
			input:    "héllo wörld",
			stop:     Chars(" "),
			wantText: "héllo",
			wantStop: ' ',
			wantNext: ' ',
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			c := New(strings.NewReader(tc.input))
			text, stop := c.ConsumeUntil(tc.stop)

			assert.Equal(t, tc.wantText, text)
			assert.Equal(t, tc.wantStop, stop)
			assert.Equal(t, tc.wantNext, c.Peek())
		})
	}
}

func TestSkipSpace(t *testing.T) {
	t.Run("blanks-only", func(t *testing.T) {
		c := New(strings.NewReader(" \t \nx"))
		c.SkipSpace(false)
		assert.Equal(t, '\n', c.Peek())
		assert.Equal(t, 1, c.Line())
	})

	t.Run("with-newlines", func(t *testing.T) {
		c := New(strings.NewReader(" \n\t\n  x"))
		c.SkipSpace(true)
		assert.Equal(t, 'x', c.Peek())
		assert.Equal(t, 3, c.Line())
	})
}

func TestSkipLineComment(t *testing.T) {
	c := New(strings.NewReader("# a comment\necho"))
	c.SkipLineComment()

	assert.Equal(t, '\n', c.Peek())
	assert.Equal(t, 1, c.Line())
	c.Next()
	assert.Equal(t, 2, c.Line())
	assert.Equal(t, 'e', c.Peek())
}

func TestLineCounting(t *testing.T) {
	c := New(strings.NewReader("a\nb\n\nc"))
	for c.Next() != EOF {
	}

	// Three newlines were consumed.
	assert.Equal(t, 4, c.Line())
}

func TestLookaheadContains(t *testing.T) {
	stop := Chars(" \t;\n")
	cases := map[string]struct {
		input string
		want  bool
	}{
		"assignment":       {"X=1", true},
		"command":          {"echo x=1", false},
		"eof-first":        {"echo", false},
		"terminator-first": {"ls;X=1", false},
		"empty":            {"", false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			c := New(strings.NewReader(tc.input))
			assert.Equal(t, tc.want, c.LookaheadContains('=', stop))

			// Nothing was consumed.
			rest, _ := c.ConsumeUntil(Set{})
			assert.Equal(t, tc.input, rest)
		})
	}
}

func TestLookaheadContains_NonSeekable(t *testing.T) {
	// OneByteReader hides any Seek or ReadRune method of the underlying reader.
	c := New(iotest.OneByteReader(strings.NewReader("NAME=value")))

	assert.True(t, c.LookaheadContains('=', Blank))
	text, stop := c.ConsumeUntil(Chars("="))
	assert.Equal(t, "NAME", text)
	assert.Equal(t, '=', stop)
}

func TestLookaheadContains_Bounded(t *testing.T) {
	input := strings.Repeat("a", MaxLookahead) + "="
	c := New(strings.NewReader(input))

	assert.False(t, c.LookaheadContains('=', Blank))
	assert.Equal(t, 'a', c.Peek())
}

func TestErr(t *testing.T) {
	boom := errors.New("boom")
	c := New(io.MultiReader(strings.NewReader("ab"), iotest.ErrReader(boom)))

	text, stop := c.ConsumeUntil(Chars(";"))
	assert.Equal(t, "ab", text)
	assert.Equal(t, EOF, stop)
	assert.ErrorIs(t, c.Err(), boom)
}

func TestSet(t *testing.T) {
	digits := Func(func(r rune) bool { return r >= '0' && r <= '9' })
	set := Chars("ab").Union(digits)

	assert.True(t, set.Contains('a'))
	assert.True(t, set.Contains('7'))
	assert.False(t, set.Contains('c'))
	assert.False(t, set.Contains(EOF))

	comp := set.Complement()
	assert.False(t, comp.Contains('a'))
	assert.True(t, comp.Contains('c'))
	assert.False(t, comp.Contains(EOF), "EOF is never a member")

	assert.False(t, Set{}.Contains('a'))
}

func TestInvalidUTF8(t *testing.T) {
	c := New(strings.NewReader("caf\xe9 \xff\xfe|é"))

	text, stop := c.ConsumeUntil(Chars(" |"))
	assert.Equal(t, "caf\xe9", text)
	assert.Equal(t, ' ', stop)
	c.Next()

	assert.True(t, IsRaw(c.Peek()))
	text, stop = c.ConsumeUntil(Chars("|"))
	assert.Equal(t, "\xff\xfe", text)
	assert.Equal(t, '|', stop)
	c.Next()

	assert.Equal(t, 'é', c.Peek())
	assert.False(t, IsRaw(c.Next()))
	assert.Equal(t, EOF, c.Peek())
}

func TestInvalidUTF8_Lookahead(t *testing.T) {
	c := New(strings.NewReader("N\xe9=v"))

	assert.True(t, c.LookaheadContains('=', Blank))
	text, _ := c.ConsumeUntil(Chars("="))
	assert.Equal(t, "N\xe9", text)
}
