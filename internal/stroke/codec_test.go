package stroke

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	tests := []struct {
		stroke Stroke
		want   string
	}{
		{All, "#STKPWHRAO*EUFRPBLGTSDZ"},
		{RP | RT, "-PT"},
		{S | RP, "S-P"},
		{H | O | L | RT, "HOLT"},
		{Star | RS, "*S"},
		{Num2 | Z, "#TZ"},
		{T | E | F | RT, "TEFT"},
		{K | A | RT, "KAT"},
		{W | Star | RR, "W*R"},
		{D, "D"},
		{S | T, "ST"},
		{F | RT, "-FT"},
		{0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stroke.String())
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		text string
		want Stroke
	}{
		{"TEFT", T | E | F | RT},
		{"KAT", K | A | RT},
		{"S-PT", S | RP | RT},
		{"W*R", W | Star | RR},
		{"2-Z", Num2 | Z},
		{"#TZ", Num2 | Z},
		{"-PT", RP | RT},
		{"S-S", S | RS},
		{"1234", Num1 | Num2 | Num3 | Num4},
		{"#STKPWHRAO*EUFRPBLGTSDZ", All},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.text))
		})
	}
}

func TestParseSkipsUnknown(t *testing.T) {
	assert.Equal(t, K|A|RT, Parse("k KxA?T"))
}

func TestParseStrict(t *testing.T) {
	s, err := ParseStrict("TEFT")
	require.NoError(t, err)
	assert.Equal(t, T|E|F|RT, s)

	s, err = ParseStrict("2-Z")
	require.NoError(t, err)
	assert.Equal(t, Num2|Z, s)

	for _, bad := range []string{"teft", "TEFT!", "TAK", "-D", "SS"} {
		_, err := ParseStrict(bad)
		assert.True(t, errors.Is(err, ErrMalformed), "%q: %v", bad, err)
	}
}

func TestRoundTripSingleBits(t *testing.T) {
	for i := 0; i < Width; i++ {
		s := Stroke(1) << i
		require.Equal(t, s, Parse(s.String()), "bit %d renders %q", i, s.String())
	}
}

func TestRoundTripPairs(t *testing.T) {
	for i := 0; i < Width; i++ {
		for j := i + 1; j < Width; j++ {
			s := Stroke(1)<<i | Stroke(1)<<j
			require.Equal(t, s, Parse(s.String()), "bits %d,%d render %q", i, j, s.String())
		}
	}
}

func TestRoundTripExhaustive(t *testing.T) {
	if testing.Short() {
		t.Skip("exhaustive round trip skipped in short mode")
	}
	for v := Stroke(0); v <= All; v++ {
		if got := Parse(v.String()); got != v {
			t.Fatalf("Parse(%q) = %#x, want %#x", v.String(), uint32(got), uint32(v))
		}
	}
}

func TestTextMarshaling(t *testing.T) {
	type row struct {
		Stroke Stroke `json:"stroke"`
	}
	data, err := json.Marshal(row{Stroke: S | RP | RT})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stroke":"S-PT"}`, string(data))

	var got row
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, S|RP|RT, got.Stroke)

	assert.Error(t, json.Unmarshal([]byte(`{"stroke":"TAK"}`), &got))

	_, err = Stroke(1 << 24).MarshalText()
	assert.True(t, errors.Is(err, ErrInvalidBits))
}
