// Package stroke implements the canonical bit-vector model of a steno chord.
//
// A Stroke is a 23-bit vector whose bit positions follow steno order:
//
//	# S T K P W H R A O * E U -F -R -P -B -L -G -T -S -D -Z
//
// Bit 0 is the number bar and bit 22 is -Z. The layout is part of the
// dictionary key format (see the outline package) and must never be
// reordered.
package stroke

import (
	"errors"
	"fmt"
	"math/bits"
)

// Stroke is one chord: the set of steno keys pressed together.
type Stroke uint32

// Key bits in steno order.
const (
	Hash Stroke = 1 << iota
	S
	T
	K
	P
	W
	H
	R
	A
	O
	Star
	E
	U
	F
	RR
	RP
	B
	L
	G
	RT
	RS
	D
	Z
)

// Width is the number of defined bit positions.
const Width = 23

// Groups of bits.
const (
	// LeftBank holds the initial consonants.
	LeftBank = S | T | K | P | W | H | R

	// Vowels holds the thumb keys, including the asterisk.
	Vowels = A | O | Star | E | U

	// RightBank holds the final consonants.
	RightBank = F | RR | RP | B | L | G | RT | RS | D | Z

	// Ambiguous holds the right-bank keys whose letter also exists on the
	// left bank.
	Ambiguous = RS | RT | RP | RR

	// All is every defined bit.
	All Stroke = 1<<Width - 1
)

// Number masks. The number bar plus one letter key stands in for a digit.
const (
	Num0 = Hash | O
	Num1 = Hash | S
	Num2 = Hash | T
	Num3 = Hash | P
	Num4 = Hash | H
	Num5 = Hash | A
	Num6 = Hash | F
	Num7 = Hash | RP
	Num8 = Hash | L
	Num9 = Hash | RT

	// AllNumbers is the union of the ten number masks.
	AllNumbers = Num0 | Num1 | Num2 | Num3 | Num4 | Num5 | Num6 | Num7 | Num8 | Num9
)

// Digits maps each digit to its number mask.
var Digits = [10]Stroke{Num0, Num1, Num2, Num3, Num4, Num5, Num6, Num7, Num8, Num9}

// ErrInvalidBits is returned when a raw value sets bits beyond All.
var ErrInvalidBits = errors.New("stroke: bits outside steno layout")

func init() {
	if LeftBank&Vowels != 0 || LeftBank&RightBank != 0 || Vowels&RightBank != 0 {
		panic("stroke: key groups overlap")
	}
	if Hash|LeftBank|Vowels|RightBank != All {
		panic("stroke: key groups do not cover the layout")
	}
	if Ambiguous&^RightBank != 0 {
		panic("stroke: ambiguous keys outside the right bank")
	}
	for i, n := range Digits {
		if n&^All != 0 || n&Hash == 0 || bits.OnesCount32(uint32(n)) != 2 {
			panic(fmt.Sprintf("stroke: malformed number mask %d", i))
		}
	}
}

// FromUint32 converts a raw bit vector, rejecting bits beyond the layout.
func FromUint32(v uint32) (Stroke, error) {
	s := Stroke(v)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %#x", ErrInvalidBits, v)
	}
	return s, nil
}

// Valid reports whether s only uses defined bit positions.
func (s Stroke) Valid() bool {
	return s&^All == 0
}

// Union returns the keys in s or o.
func (s Stroke) Union(o Stroke) Stroke {
	return (s | o) & All
}

// Intersect returns the keys in both s and o.
func (s Stroke) Intersect(o Stroke) Stroke {
	return s & o
}

// Without returns the keys in s that are not in o.
func (s Stroke) Without(o Stroke) Stroke {
	return s &^ o
}

// Has reports whether every key of mask is in s.
func (s Stroke) Has(mask Stroke) bool {
	return s&mask == mask
}

// HasAny reports whether any key of mask is in s.
func (s Stroke) HasAny(mask Stroke) bool {
	return s&mask != 0
}

// IsEmpty reports whether no key is set.
func (s Stroke) IsEmpty() bool {
	return s == 0
}

// IsNumber reports whether every set key belongs to a number mask. The
// empty stroke has no keys outside the masks and so counts as a number.
func (s Stroke) IsNumber() bool {
	return s&^AllNumbers == 0
}

// Count returns the number of keys set.
func (s Stroke) Count() int {
	return bits.OnesCount32(uint32(s & All))
}

// Bits returns the single-key strokes set in s, in steno order.
func (s Stroke) Bits() []Stroke {
	out := make([]Stroke, 0, s.Count())
	for v := uint32(s & All); v != 0; v &= v - 1 {
		out = append(out, Stroke(v&-v))
	}
	return out
}

// Uint32 returns the raw bit vector.
func (s Stroke) Uint32() uint32 {
	return uint32(s)
}
