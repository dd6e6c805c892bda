package outline

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stenod/internal/stroke"
)

var teft = stroke.T | stroke.E | stroke.F | stroke.RT

func TestPushPop(t *testing.T) {
	var o Outline
	assert.True(t, o.IsEmpty())

	_, ok := o.Pop()
	assert.False(t, ok, "pop on empty outline")

	o.Push(teft)
	o.Push(stroke.K | stroke.A | stroke.RT)
	assert.Equal(t, 2, o.Len())
	assert.True(t, o.IsMultistroke())

	s, ok := o.Pop()
	require.True(t, ok)
	assert.Equal(t, stroke.K|stroke.A|stroke.RT, s)
	assert.False(t, o.IsMultistroke())

	s, ok = o.Pop()
	require.True(t, ok)
	assert.Equal(t, teft, s)
	assert.True(t, o.IsEmpty())
}

func TestDuplicatesKept(t *testing.T) {
	o := New(teft, teft, teft)
	assert.Equal(t, 3, o.Len())
}

func TestString(t *testing.T) {
	var o Outline
	o.Push(teft)
	o.Push(teft)
	assert.Equal(t, "TEFT/TEFT", o.String())
	assert.Equal(t, "", Outline{}.String())
}

func TestParse(t *testing.T) {
	o, err := Parse("TEFT/TEFT")
	require.NoError(t, err)
	assert.True(t, o.Equal(New(teft, teft)))

	o, err = Parse("S-PT/W*R")
	require.NoError(t, err)
	assert.Equal(t, []stroke.Stroke{
		stroke.S | stroke.RP | stroke.RT,
		stroke.W | stroke.Star | stroke.RR,
	}, o.Strokes())
}

func TestParseEmptySegment(t *testing.T) {
	for _, text := range []string{"", "TEFT//TEFT", "TEFT/", "/KAT"} {
		_, err := Parse(text)
		assert.True(t, errors.Is(err, ErrEmptyStroke), "%q: %v", text, err)
	}
}

func TestParseStrictPropagatesFirstFailure(t *testing.T) {
	_, err := ParseStrict("TEFT/TAK/x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, stroke.ErrMalformed))
	assert.Contains(t, err.Error(), "stroke 2")

	o, err := Parse("TEFT/TAK")
	require.NoError(t, err, "lenient parse accepts out-of-order letters")
	assert.Equal(t, 2, o.Len())
}

func TestCompact(t *testing.T) {
	a := stroke.S | stroke.RP | stroke.RT
	b := stroke.K | stroke.A | stroke.RT
	o := New(teft, a, b)
	o.Compact()
	assert.True(t, o.Equal(New(b)))
	assert.False(t, o.IsMultistroke())

	o.Compact()
	assert.True(t, o.Equal(New(b)), "compacting a single stroke is a no-op")
}

func TestCompactEmptyPanics(t *testing.T) {
	var o Outline
	assert.Panics(t, func() { o.Compact() })
}

func TestSplit(t *testing.T) {
	b := stroke.K | stroke.A | stroke.RT
	o := New(teft, b)
	tail := o.Split()
	assert.True(t, tail.Equal(New(b)))
	assert.True(t, o.Equal(New(teft)))
}

func TestSplitTooShortPanics(t *testing.T) {
	empty := Outline{}
	assert.Panics(t, func() { empty.Split() })

	single := New(teft)
	assert.Panics(t, func() { single.Split() })
	assert.Equal(t, 1, single.Len(), "failed split leaves outline intact")
}

func TestTail(t *testing.T) {
	a := stroke.S | stroke.RP | stroke.RT
	b := stroke.K | stroke.A | stroke.RT
	o := New(teft, a, b)
	assert.True(t, o.Tail(2).Equal(New(a, b)))
	assert.True(t, o.Tail(5).Equal(o))
	assert.Equal(t, 3, o.Len(), "tail does not modify the outline")
	assert.Panics(t, func() { o.Tail(0) })
	assert.Panics(t, func() { Outline{}.Tail(1) })
}

func TestStrokesIsCopy(t *testing.T) {
	o := New(teft)
	s := o.Strokes()
	s[0] = stroke.Z
	last, ok := o.Last()
	require.True(t, ok)
	assert.Equal(t, teft, last)

	src := []stroke.Stroke{teft}
	o = New(src...)
	src[0] = stroke.Z
	assert.True(t, o.Equal(New(teft)))
}

func TestJSON(t *testing.T) {
	type entry struct {
		Outline Outline `json:"outline"`
	}
	data, err := json.Marshal(entry{Outline: New(teft, teft)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"outline":"TEFT/TEFT"}`, string(data))

	var got entry
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, got.Outline.Equal(New(teft, teft)))

	require.NoError(t, json.Unmarshal([]byte(`{"outline":""}`), &got))
	assert.True(t, got.Outline.IsEmpty())
}
