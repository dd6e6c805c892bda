package stroke

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned by ParseStrict for text that is not canonical
// steno notation.
var ErrMalformed = errors.New("stroke: malformed steno")

// order lists every key in steno order with the letter it renders as.
var order = [Width]struct {
	key    Stroke
	letter byte
}{
	{Hash, '#'}, {S, 'S'}, {T, 'T'}, {K, 'K'}, {P, 'P'}, {W, 'W'}, {H, 'H'},
	{R, 'R'}, {A, 'A'}, {O, 'O'}, {Star, '*'}, {E, 'E'}, {U, 'U'}, {F, 'F'},
	{RR, 'R'}, {RP, 'P'}, {B, 'B'}, {L, 'L'}, {G, 'G'}, {RT, 'T'}, {RS, 'S'},
	{D, 'D'}, {Z, 'Z'},
}

// String renders s in steno notation. A dash marks the start of the right
// bank when a right-hand S, T, P or R would otherwise read as left-hand,
// which happens only when no vowel anchors the position.
func (s Stroke) String() string {
	var b strings.Builder
	b.Grow(Width + 1)
	dash := s.HasAny(Ambiguous) && !s.HasAny(Vowels)
	for _, k := range order {
		if k.key == E && dash {
			b.WriteByte('-')
		}
		if s&k.key != 0 {
			b.WriteByte(k.letter)
		}
	}
	return b.String()
}

// Parse reads steno notation leniently. Characters outside the notation
// alphabet are skipped. Letters must appear in steno order for S, T, P and
// R to resolve to the right bank.
func Parse(text string) Stroke {
	s, _ := parse(text)
	return s
}

// ParseStrict reads steno notation and fails on unknown characters or on
// letter-only text that is not in canonical form.
func ParseStrict(text string) (Stroke, error) {
	s, known := parse(text)
	if !known {
		return 0, fmt.Errorf("%w: %q has unknown characters", ErrMalformed, text)
	}
	if !strings.ContainsAny(text, "0123456789") && s.String() != text {
		return 0, fmt.Errorf("%w: %q is not in steno order, want %q", ErrMalformed, text, s.String())
	}
	return s, nil
}

func parse(text string) (Stroke, bool) {
	var s Stroke
	right := false
	known := true
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '#':
			s |= Hash
		case '-':
			right = true
		case 'S':
			s |= resolve(s, right, S, RS)
		case 'T':
			s |= resolve(s, right, T, RT)
		case 'P':
			s |= resolve(s, right, P, RP)
		case 'R':
			s |= resolve(s, right, R, RR)
		case 'K':
			s |= K
		case 'W':
			s |= W
		case 'H':
			s |= H
		case 'A':
			s |= A
		case 'O':
			s |= O
		case '*':
			s |= Star
		case 'E':
			s |= E
		case 'U':
			s |= U
		case 'F':
			s |= F
		case 'B':
			s |= B
		case 'L':
			s |= L
		case 'G':
			s |= G
		case 'D':
			s |= D
		case 'Z':
			s |= Z
		default:
			if c >= '0' && c <= '9' {
				s |= Digits[c-'0']
				continue
			}
			known = false
		}
	}
	return s, known
}

// resolve picks the bank for an ambiguous letter. Bit significance follows
// reading order, so once the accumulator reaches the left key's weight the
// left-hand opportunity has passed.
func resolve(acc Stroke, right bool, left, rightKey Stroke) Stroke {
	if right || acc >= left {
		return rightKey
	}
	return left
}

// MarshalText implements encoding.TextMarshaler.
func (s Stroke) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidBits, uint32(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using ParseStrict.
func (s *Stroke) UnmarshalText(text []byte) error {
	v, err := ParseStrict(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
