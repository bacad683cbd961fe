package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCursorAdvanceAndDone(t *testing.T) {
	c := newCursor([]*BatchCommand{{Text: "a"}, {Text: "b"}})
	assert.False(t, c.Done())
	assert.Equal(t, 2, c.Remaining())

	assert.Equal(t, "a", c.Current().Text)
	c.Advance()
	assert.Equal(t, "b", c.Current().Text)
	assert.Equal(t, 1, c.Remaining())
	c.Advance()
	assert.True(t, c.Done())
	assert.Nil(t, c.Current())
	assert.Equal(t, 0, c.Remaining())
}

func TestCursorResetRestartsIteration(t *testing.T) {
	c := newCursor([]*BatchCommand{{Text: "a"}, {Text: "b"}})
	c.Advance()
	c.AdvanceSub()
	c.Reset()
	assert.Equal(t, "a", c.Current().Text)
	assert.Equal(t, 0, c.Sub())
}

func TestCursorAdvanceSubDoesNotConsumeCommand(t *testing.T) {
	c := newCursor([]*BatchCommand{{Text: "a"}})
	c.AdvanceSub()
	assert.Equal(t, 1, c.Sub())
	assert.Equal(t, "a", c.Current().Text)
}
