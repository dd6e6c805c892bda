package stroke

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutOrder(t *testing.T) {
	// Every key is exactly one bit and the order table walks them in sequence.
	for i, k := range order {
		assert.Equal(t, Stroke(1)<<i, k.key, "position %d (%c)", i, k.letter)
	}
	assert.Equal(t, Stroke(0x7FFFFF), All)
	assert.Equal(t, Stroke(1<<22), Z)
}

func TestSetAlgebra(t *testing.T) {
	s := S | T | A
	assert.Equal(t, S|T|A|RS, s.Union(RS))
	assert.Equal(t, T, s.Intersect(T|RT))
	assert.Equal(t, S|A, s.Without(T|RT))
	assert.True(t, s.Has(S|T))
	assert.False(t, s.Has(S|RS))
	assert.True(t, s.HasAny(S|RS))
	assert.False(t, s.HasAny(Vowels&^A))
	assert.Equal(t, 3, s.Count())
	assert.Equal(t, []Stroke{S, T, A}, s.Bits())
}

func TestUnionStaysInLayout(t *testing.T) {
	var stray Stroke = 1 << 30
	assert.Equal(t, S, S.Union(stray))
	assert.True(t, All.Union(stray).Valid())
}

func TestFromUint32(t *testing.T) {
	s, err := FromUint32(uint32(T | E | F | RT))
	require.NoError(t, err)
	assert.Equal(t, T|E|F|RT, s)

	_, err = FromUint32(1 << 23)
	assert.True(t, errors.Is(err, ErrInvalidBits))
}

func TestIsNumber(t *testing.T) {
	tests := []struct {
		name   string
		stroke Stroke
		want   bool
	}{
		{"one two three", Num1 | Num2 | Num3, true},
		{"with Z", Num1 | Num2 | Num3 | Z, false},
		{"zero", Num0, true},
		{"all digits", AllNumbers, true},
		{"bare hash", Hash, true},
		{"letters only", S | T, true},
		{"vowel outside masks", Num5 | E, false},
		{"empty", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stroke.IsNumber())
		})
	}
}

func TestNumberMasksDistinct(t *testing.T) {
	seen := map[Stroke]int{}
	for d, n := range Digits {
		if prev, ok := seen[n]; ok {
			t.Fatalf("digits %d and %d share mask %v", prev, d, n)
		}
		seen[n] = d
		assert.True(t, n.Has(Hash), "digit %d", d)
	}
}
