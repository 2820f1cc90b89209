package neon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderSequence(t *testing.T) {
	r := newReader([]byte("ab"))
	r.feed([]byte("cd"))

	var got []rune
	for {
		c, ok, err := r.nextOpt()
		require.NoError(t, err, "nextOpt should succeed")
		if !ok {
			break
		}
		got = append(got, c)
	}
	require.Equal(t, "abcd", string(got), "sources are consumed in order")
}

func TestReaderPosition(t *testing.T) {
	inputs := map[string][]Position{
		"a\nb":   {{1, 2}, {2, 1}, {2, 2}},
		"a\r\nb": {{1, 2}, {2, 1}, {2, 1}, {2, 2}},
		"\rb":    {{2, 1}, {2, 2}},
	}
	for input, expected := range inputs {
		r := newReader([]byte(input))
		require.Equal(t, Position{Line: 1, Column: 1}, r.position(), "initial position")
		for i, want := range expected {
			_, err := r.next()
			require.NoError(t, err, "next should succeed (%q, step %d)", input, i)
			require.Equal(t, want, r.position(), "position after step %d of %q", i, input)
		}
	}
}

func TestReaderInvalidChar(t *testing.T) {
	r := newReader([]byte{0x01})
	_, err := r.next()
	require.Error(t, err, "control character is invalid under XML 1.0")

	var serr ErrSyntax
	require.True(t, errors.As(err, &serr), "error is ErrSyntax")
	require.Equal(t, "2", serr.Production, "violates production [2]")

	// the same codepoint is valid under XML 1.1
	r = newReader([]byte{0x01})
	r.xml11 = true
	c, err := r.next()
	require.NoError(t, err, "U+0001 is a valid XML 1.1 character")
	require.Equal(t, rune(0x01), c)
}

func TestReaderEOF(t *testing.T) {
	r := newReader(nil)
	_, err := r.next()
	require.Error(t, err, "next at end of input fails")
	require.True(t, errors.Is(err, ErrPrematureEOF), "error wraps ErrPrematureEOF")

	var serr ErrSyntax
	require.True(t, errors.As(err, &serr), "error is ErrSyntax")
	require.Equal(t, "1", serr.Production, "violates production [1]")
}

func TestReaderFeedAfterExhaustion(t *testing.T) {
	r := newReader([]byte("a"))
	_, err := r.next()
	require.NoError(t, err)
	_, ok := r.peek()
	require.False(t, ok, "input exhausted")

	r.feed([]byte("b"))
	c, err := r.next()
	require.NoError(t, err, "feeding after exhaustion resumes reading")
	require.Equal(t, 'b', c)
}
