// Package keymap maps physical keyboard keys to steno chord bits.
//
// The layout is the common QWERTY steno arrangement: the home row and the
// row above it form the two banks, C/V and N/M are the vowel thumbs, and
// the whole number row acts as the number bar.
//
//	 1 2 3 4 5 6 7 8 9 0          (number bar)
//	 Q W E R T Y U I O P [        S T P H * * -F -P -L -T -D
//	 A S D F G H J K L ; \        S K W R * * -R -B -G -S -Z
//	     C V     N M                    A O    E U
package keymap

import (
	"fmt"
	"strings"

	"stenod/internal/stroke"
)

// Key identifies a physical key independently of the operating system.
type Key uint8

// Physical keys.
const (
	KeyA Key = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySpace
	KeyEscape
	KeySemicolon
	KeyBracketLeft
	KeyBackslash

	keyCount
)

// table is indexed by Key. Its length is fixed by keyCount, so every key has
// an entry; keys left at zero carry no chord meaning.
var table = [keyCount]stroke.Stroke{
	KeyA: stroke.S,
	KeyB: 0,
	KeyC: stroke.A,
	KeyD: stroke.W,
	KeyE: stroke.P,
	KeyF: stroke.R,
	KeyG: stroke.Star,
	KeyH: stroke.Star,
	KeyI: stroke.RP,
	KeyJ: stroke.RR,
	KeyK: stroke.B,
	KeyL: stroke.G,
	KeyM: stroke.U,
	KeyN: stroke.E,
	KeyO: stroke.L,
	KeyP: stroke.RT,
	KeyQ: stroke.S,
	KeyR: stroke.H,
	KeyS: stroke.K,
	KeyT: stroke.Star,
	KeyU: stroke.F,
	KeyV: stroke.O,
	KeyW: stroke.T,
	KeyX: 0,
	KeyY: stroke.Star,
	KeyZ: 0,

	// Digits only signal number mode. Which digit was pressed is not kept.
	Key0: stroke.Hash,
	Key1: stroke.Hash,
	Key2: stroke.Hash,
	Key3: stroke.Hash,
	Key4: stroke.Hash,
	Key5: stroke.Hash,
	Key6: stroke.Hash,
	Key7: stroke.Hash,
	Key8: stroke.Hash,
	Key9: stroke.Hash,

	KeySpace:       0,
	KeyEscape:      0,
	KeySemicolon:   stroke.RS,
	KeyBracketLeft: stroke.D,
	KeyBackslash:   stroke.Z,
}

var names = [keyCount]string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"space", "escape", "semicolon", "bracketleft", "backslash",
}

// Apply adds the bits contributed by k to acc. It never clears bits.
// k must be one of the defined keys.
func Apply(k Key, acc *stroke.Stroke) {
	*acc |= Contribution(k)
}

// Contribution returns the bits k adds to a chord.
func Contribution(k Key) stroke.Stroke {
	if int(k) >= len(table) {
		panic(fmt.Sprintf("keymap: undefined key %d", k))
	}
	return table[k]
}

// Keys returns every defined key in enumeration order.
func Keys() []Key {
	out := make([]Key, keyCount)
	for i := range out {
		out[i] = Key(i)
	}
	return out
}

// Valid reports whether k is a defined key.
func (k Key) Valid() bool {
	return k < keyCount
}

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", uint8(k))
	}
	return names[k]
}

// ParseKey resolves a key name as returned by Key.String. Single-character
// names may also be given as the character the key types (";", "[", "\\",
// " ").
func ParseKey(name string) (Key, error) {
	lower := strings.ToLower(name)
	for i, n := range names {
		if n == lower {
			return Key(i), nil
		}
	}
	if len(name) == 1 {
		if k, ok := KeyForRune(rune(name[0])); ok {
			return k, nil
		}
	}
	return 0, fmt.Errorf("keymap: unknown key %q", name)
}

// KeyForRune returns the key that types r on a US QWERTY keyboard.
func KeyForRune(r rune) (Key, bool) {
	switch {
	case r >= 'a' && r <= 'z':
		return KeyA + Key(r-'a'), true
	case r >= 'A' && r <= 'Z':
		return KeyA + Key(r-'A'), true
	case r >= '0' && r <= '9':
		return Key0 + Key(r-'0'), true
	}
	switch r {
	case ' ':
		return KeySpace, true
	case 0x1b:
		return KeyEscape, true
	case ';':
		return KeySemicolon, true
	case '[':
		return KeyBracketLeft, true
	case '\\':
		return KeyBackslash, true
	}
	return 0, false
}

// Chord returns the stroke produced by pressing every key typed by text
// together. Characters without a key are reported as an error.
func Chord(text string) (stroke.Stroke, error) {
	var s stroke.Stroke
	for _, r := range text {
		k, ok := KeyForRune(r)
		if !ok {
			return 0, fmt.Errorf("keymap: no key types %q", r)
		}
		Apply(k, &s)
	}
	return s, nil
}
