package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyEdges(t *testing.T) {
	var s State
	s.BeginFrame()
	s.SetKey(MouseButtonLeft, true)
	assert.True(t, s.JustPressed[MouseButtonLeft])
	assert.True(t, s.AnyMouseButton())

	s.BeginFrame()
	s.SetKey(MouseButtonLeft, true)
	assert.False(t, s.JustPressed[MouseButtonLeft], "held, not pressed again")
	assert.True(t, s.Pressed[MouseButtonLeft])

	s.BeginFrame()
	s.SetKey(MouseButtonLeft, false)
	assert.True(t, s.JustReleased[MouseButtonLeft])
	assert.False(t, s.AnyMouseButton())

	s.SetKey(KeyCount, true)
	s.SetKey(-1, true)
}

func TestMouseDelta(t *testing.T) {
	var s State
	s.BeginFrame()
	s.MoveMouse(10, 20)
	s.MoveMouse(15, 18)
	assert.True(t, s.MouseMoved)
	assert.Equal(t, 15.0, s.MouseDeltaX)
	assert.Equal(t, 18.0, s.MouseDeltaY)

	s.BeginFrame()
	s.MoveMouse(15, 18)
	assert.False(t, s.MouseMoved)
	assert.Zero(t, s.MouseDeltaX)

	s.SetKey(KeyLeftAlt, true)
	assert.True(t, s.Alt())
}
