package chord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stenod/internal/keymap"
	"stenod/internal/stroke"
)

func TestChordFinishesOnLastRelease(t *testing.T) {
	var a Accumulator
	a.Press(keymap.KeyW)
	a.Press(keymap.KeyN)
	a.Press(keymap.KeyU)

	_, done := a.Release(keymap.KeyW)
	assert.False(t, done)
	a.Press(keymap.KeyP) // rolled in while others are still held
	_, done = a.Release(keymap.KeyN)
	assert.False(t, done)
	_, done = a.Release(keymap.KeyU)
	assert.False(t, done)
	assert.Equal(t, 1, a.Held())

	s, done := a.Release(keymap.KeyP)
	require.True(t, done)
	assert.Equal(t, "TEFT", s.String())
	assert.Equal(t, 0, a.Held())
	assert.True(t, a.Pending().IsEmpty())
	assert.True(t, a.Began().IsZero())
}

func TestSharedBitKeys(t *testing.T) {
	var a Accumulator
	a.Press(keymap.KeyT)
	a.Press(keymap.KeyY)
	a.Release(keymap.KeyT)
	s, done := a.Release(keymap.KeyY)
	require.True(t, done)
	assert.Equal(t, stroke.Star, s)
}

func TestLoneReleaseIgnored(t *testing.T) {
	var a Accumulator
	_, done := a.Release(keymap.KeyA)
	assert.False(t, done)

	a.Press(keymap.KeyA)
	_, done = a.Release(keymap.KeyS)
	assert.False(t, done)
	assert.Equal(t, 1, a.Held())
}

func TestAutoRepeatPress(t *testing.T) {
	var a Accumulator
	a.Press(keymap.KeyA)
	a.Press(keymap.KeyA)
	a.Press(keymap.KeyA)
	s, done := a.Release(keymap.KeyA)
	require.True(t, done)
	assert.Equal(t, stroke.S, s)
}

func TestUnmappedChordDropped(t *testing.T) {
	var a Accumulator
	a.Press(keymap.KeySpace)
	a.Press(keymap.KeyB)
	a.Release(keymap.KeySpace)
	_, done := a.Release(keymap.KeyB)
	assert.False(t, done)
	assert.Equal(t, 0, a.Held())
}

func TestReset(t *testing.T) {
	var a Accumulator
	a.Press(keymap.KeyA)
	a.Reset()
	assert.Equal(t, 0, a.Held())
	_, done := a.Release(keymap.KeyA)
	assert.False(t, done)
}

func TestBegan(t *testing.T) {
	var a Accumulator
	start := time.Unix(100, 0)
	a.PressAt(keymap.KeyA, start)
	a.PressAt(keymap.KeyS, start.Add(time.Second))
	assert.Equal(t, start, a.Began())
}

func TestParseEvent(t *testing.T) {
	e, err := ParseEvent("down semicolon")
	require.NoError(t, err)
	assert.Equal(t, Event{Key: keymap.KeySemicolon, Down: true}, e)
	assert.Equal(t, "down semicolon", e.String())

	e, err = ParseEvent("  up   a ")
	require.NoError(t, err)
	assert.Equal(t, Event{Key: keymap.KeyA}, e)

	for _, bad := range []string{"", "down", "press a", "up enter", "down a b"} {
		_, err := ParseEvent(bad)
		assert.True(t, errors.Is(err, ErrBadEvent), "%q", bad)
	}
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan Event)
	out := Run(ctx, events)

	go func() {
		defer close(events)
		for _, line := range []string{
			"down r", "down v", "down o", "down p",
			"up r", "up v", "up o", "up p",
			"up x",
			"down a", "down i", "down p", "up p", "up i", "up a",
		} {
			e, err := ParseEvent(line)
			if err != nil {
				panic(err)
			}
			events <- e
		}
	}()

	var got []string
	for s := range out {
		got = append(got, s.String())
	}
	assert.Equal(t, []string{"HOLT", "S-PT"}, got)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := Run(ctx, make(chan Event))
	cancel()
	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
