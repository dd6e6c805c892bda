package outline

import (
	"errors"
	"fmt"

	"stenod/internal/stroke"
)

// StrokeWidth is the number of key bytes per stroke. Every stroke takes the
// same width, so stroke boundaries in a key fall at multiples of it and a
// byte prefix of a key that ends on a boundary is the key of a stroke
// prefix.
const StrokeWidth = 3

// ErrKeyWidth is returned when a key's length is not a whole number of
// strokes.
var ErrKeyWidth = errors.New("outline: key length not a multiple of stroke width")

// EncodeKey returns the dictionary key for o: each stroke's bit vector as
// StrokeWidth big-endian bytes, in outline order.
func EncodeKey(o Outline) []byte {
	return AppendKey(make([]byte, 0, StrokeWidth*o.Len()), o)
}

// AppendKey appends the key for o to dst.
func AppendKey(dst []byte, o Outline) []byte {
	for _, s := range o.strokes {
		v := s.Uint32()
		dst = append(dst, byte(v>>16), byte(v>>8), byte(v))
	}
	return dst
}

// Key returns the dictionary key for o.
func (o Outline) Key() []byte {
	return EncodeKey(o)
}

// DecodeKey rebuilds the outline a key was encoded from.
func DecodeKey(key []byte) (Outline, error) {
	if len(key)%StrokeWidth != 0 {
		return Outline{}, fmt.Errorf("%w: %d bytes", ErrKeyWidth, len(key))
	}
	o := Outline{strokes: make([]stroke.Stroke, 0, len(key)/StrokeWidth)}
	for i := 0; i < len(key); i += StrokeWidth {
		v := uint32(key[i])<<16 | uint32(key[i+1])<<8 | uint32(key[i+2])
		s, err := stroke.FromUint32(v)
		if err != nil {
			return Outline{}, fmt.Errorf("stroke %d: %w", i/StrokeWidth+1, err)
		}
		o.strokes = append(o.strokes, s)
	}
	return o, nil
}
