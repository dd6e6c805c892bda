// Package outline holds stroke sequences that spell one dictionary entry.
//
// An Outline is edited by whichever component owns the word being composed.
// Values may be read from several goroutines but edits (Push, Pop, Split,
// Compact) need exclusive access.
//
// Split and Compact have preconditions. Violating them is a caller bug and
// panics rather than producing an outline that would make a bad dictionary
// key.
package outline

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"stenod/internal/stroke"
)

// Separator joins strokes in outline notation.
const Separator = "/"

// ErrEmptyStroke is returned when outline notation has an empty segment.
var ErrEmptyStroke = errors.New("outline: empty stroke")

// Outline is an ordered sequence of strokes.
type Outline struct {
	strokes []stroke.Stroke
}

// New returns an outline holding strokes in order.
func New(strokes ...stroke.Stroke) Outline {
	return Outline{strokes: slices.Clone(strokes)}
}

// Push appends s.
func (o *Outline) Push(s stroke.Stroke) {
	o.strokes = append(o.strokes, s)
}

// Pop removes and returns the last stroke. It reports false when the
// outline is empty.
func (o *Outline) Pop() (stroke.Stroke, bool) {
	n := len(o.strokes)
	if n == 0 {
		return 0, false
	}
	s := o.strokes[n-1]
	o.strokes = o.strokes[:n-1]
	return s, true
}

// Split removes the last stroke and returns it as a one-stroke outline.
// The outline must hold at least two strokes so the remainder is never
// empty.
func (o *Outline) Split() Outline {
	n := len(o.strokes)
	if n < 2 {
		panic(fmt.Sprintf("outline: cannot split outline of %d strokes", n))
	}
	last := o.strokes[n-1]
	o.strokes = o.strokes[:n-1]
	return Outline{strokes: []stroke.Stroke{last}}
}

// Compact drops every stroke except the last one. The outline must not be
// empty.
func (o *Outline) Compact() {
	n := len(o.strokes)
	if n == 0 {
		panic("outline: cannot compact empty outline")
	}
	o.strokes = []stroke.Stroke{o.strokes[n-1]}
}

// Tail returns a new outline of the last n strokes, or all of them when the
// outline is shorter. n must be positive and the outline must not be empty.
func (o Outline) Tail(n int) Outline {
	if n < 1 {
		panic(fmt.Sprintf("outline: invalid tail length %d", n))
	}
	if len(o.strokes) == 0 {
		panic("outline: cannot take tail of empty outline")
	}
	n = min(n, len(o.strokes))
	return New(o.strokes[len(o.strokes)-n:]...)
}

// Len returns the number of strokes.
func (o Outline) Len() int {
	return len(o.strokes)
}

// IsEmpty reports whether the outline has no strokes.
func (o Outline) IsEmpty() bool {
	return len(o.strokes) == 0
}

// IsMultistroke reports whether the outline has more than one stroke.
func (o Outline) IsMultistroke() bool {
	return len(o.strokes) > 1
}

// Last returns the final stroke, or false when empty.
func (o Outline) Last() (stroke.Stroke, bool) {
	if len(o.strokes) == 0 {
		return 0, false
	}
	return o.strokes[len(o.strokes)-1], true
}

// Strokes returns a copy of the strokes in order.
func (o Outline) Strokes() []stroke.Stroke {
	return slices.Clone(o.strokes)
}

// Equal reports whether o and other hold the same strokes in the same order.
func (o Outline) Equal(other Outline) bool {
	return slices.Equal(o.strokes, other.strokes)
}

// String renders the outline in steno notation, strokes joined by "/".
func (o Outline) String() string {
	parts := make([]string, len(o.strokes))
	for i, s := range o.strokes {
		parts[i] = s.String()
	}
	return strings.Join(parts, Separator)
}

// Parse reads outline notation, parsing each stroke leniently.
func Parse(text string) (Outline, error) {
	return parseWith(text, func(seg string) (stroke.Stroke, error) {
		return stroke.Parse(seg), nil
	})
}

// ParseStrict reads outline notation and fails on the first stroke that is
// not canonical.
func ParseStrict(text string) (Outline, error) {
	return parseWith(text, stroke.ParseStrict)
}

func parseWith(text string, parse func(string) (stroke.Stroke, error)) (Outline, error) {
	segs := strings.Split(text, Separator)
	o := Outline{strokes: make([]stroke.Stroke, 0, len(segs))}
	for i, seg := range segs {
		if seg == "" {
			return Outline{}, fmt.Errorf("stroke %d of %q: %w", i+1, text, ErrEmptyStroke)
		}
		s, err := parse(seg)
		if err != nil {
			return Outline{}, fmt.Errorf("stroke %d of %q: %w", i+1, text, err)
		}
		o.strokes = append(o.strokes, s)
	}
	return o, nil
}

// MarshalText implements encoding.TextMarshaler.
func (o Outline) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseStrict.
// Empty text yields an empty outline.
func (o *Outline) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*o = Outline{}
		return nil
	}
	v, err := ParseStrict(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
