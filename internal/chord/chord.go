// Package chord turns a stream of key presses and releases into strokes.
//
// An Accumulator is the one "current stroke" being typed. A chord starts
// with the first press and ends when the last held key is released; the
// finished stroke is the union of every key pressed in between, including
// keys that were let go early. Accumulators are not safe for concurrent
// use: feed them from one goroutine, or hand events to Run, which owns the
// accumulator for its lifetime.
package chord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stenod/internal/keymap"
	"stenod/internal/stroke"
)

// Event is a key transition from the key-capture layer.
type Event struct {
	Key  keymap.Key
	Down bool
	Time time.Time
}

func (e Event) String() string {
	if e.Down {
		return fmt.Sprintf("down %s", e.Key)
	}
	return fmt.Sprintf("up %s", e.Key)
}

// ErrBadEvent is returned by ParseEvent for lines it cannot read.
var ErrBadEvent = errors.New("chord: malformed key event")

// ParseEvent reads the textual form produced by Event.String, e.g.
// "down a" or "up semicolon".
func ParseEvent(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Event{}, fmt.Errorf("%w: %q", ErrBadEvent, line)
	}
	var e Event
	switch fields[0] {
	case "down":
		e.Down = true
	case "up":
	default:
		return Event{}, fmt.Errorf("%w: %q", ErrBadEvent, line)
	}
	k, err := keymap.ParseKey(fields[1])
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	e.Key = k
	return e, nil
}

// Accumulator builds one chord at a time.
type Accumulator struct {
	held  uint64
	chord stroke.Stroke
	begun time.Time
}

// Press records k as held and adds its bits to the chord.
// Repeated presses of a held key (auto-repeat) change nothing.
func (a *Accumulator) Press(k keymap.Key) {
	a.PressAt(k, time.Now())
}

// PressAt is Press with an explicit event time.
func (a *Accumulator) PressAt(k keymap.Key, at time.Time) {
	if !k.Valid() {
		panic(fmt.Sprintf("chord: undefined key %d", k))
	}
	if a.held == 0 {
		a.begun = at
	}
	a.held |= 1 << k
	keymap.Apply(k, &a.chord)
}

// Release marks k as no longer held. When that empties the held set the
// chord is finished and returned with true. Releases of keys that are not
// held are ignored, and chords made only of unmapped keys are dropped.
func (a *Accumulator) Release(k keymap.Key) (stroke.Stroke, bool) {
	bit := uint64(1) << k
	if !k.Valid() || a.held&bit == 0 {
		return 0, false
	}
	a.held &^= bit
	if a.held != 0 {
		return 0, false
	}
	s := a.chord
	a.chord = 0
	a.begun = time.Time{}
	if s.IsEmpty() {
		return 0, false
	}
	return s, true
}

// Handle applies e and reports a finished stroke like Release.
func (a *Accumulator) Handle(e Event) (stroke.Stroke, bool) {
	if e.Down {
		at := e.Time
		if at.IsZero() {
			at = time.Now()
		}
		a.PressAt(e.Key, at)
		return 0, false
	}
	return a.Release(e.Key)
}

// Pending returns the bits collected so far in the current chord.
func (a *Accumulator) Pending() stroke.Stroke {
	return a.chord
}

// Held returns how many keys are currently down.
func (a *Accumulator) Held() int {
	n := 0
	for v := a.held; v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Began returns when the current chord started, or the zero time when no
// key is held.
func (a *Accumulator) Began() time.Time {
	return a.begun
}

// Reset abandons the current chord.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Run consumes events until the channel closes or ctx is done, sending
// each finished stroke on the returned channel. The returned channel is
// closed when Run stops. A chord still held at shutdown is discarded.
func Run(ctx context.Context, events <-chan Event) <-chan stroke.Stroke {
	out := make(chan stroke.Stroke, 16)
	go func() {
		defer close(out)
		var acc Accumulator
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-events:
				if !ok {
					return
				}
				s, done := acc.Handle(e)
				if !done {
					continue
				}
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
