package commands

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"stenod/internal/keymap"
	"stenod/internal/outline"
	"stenod/internal/stroke"
)

func newRenderCmd() *cobra.Command {
	var breakdown bool

	cmd := &cobra.Command{
		Use:   "render BITS...",
		Short: "Render raw stroke bits as steno notation",
		Long: `Render raw stroke bit vectors as steno notation.

Bits are read as integers with Go prefixes: 0x for hex, 0b for binary,
0o for octal, decimal otherwise.

Examples:
  stenoctl render 0x80108
  stenoctl render --breakdown 0b1000000000000000000010`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			for _, arg := range args {
				v, err := strconv.ParseUint(arg, 0, 32)
				if err != nil {
					return fail(cmd, "Invalid stroke bits", err.Error())
				}
				s, err := stroke.FromUint32(uint32(v))
				if err != nil {
					return fail(cmd, "Invalid stroke bits", err.Error(),
						"Only the low 23 bits name steno keys.")
				}
				if breakdown {
					p.Breakdown(s)
					continue
				}
				p.Stroke(s)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&breakdown, "breakdown", "b", false, "Show each bank and the raw bits")
	return cmd
}

func newParseCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "parse OUTLINE...",
		Short: "Parse steno notation into stroke bits",
		Long: `Parse steno notation into stroke bit vectors.

Each argument is an outline: strokes separated by "/". The canonical
rendering and the bits of every stroke are printed.

Examples:
  stenoctl parse KAT
  stenoctl parse --strict TEFT/-T`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			for _, arg := range args {
				o, err := parseOutline(arg, strict)
				if err != nil {
					return fail(cmd, "Invalid steno notation", err.Error(),
						"Write keys in steno order and use '-' before right-bank S, T, P or R with no vowel.")
				}
				bits := make([]string, 0, o.Len())
				for _, s := range o.Strokes() {
					bits = append(bits, "0x"+strconv.FormatUint(uint64(s.Uint32()), 16))
				}
				p.Info("%s\t%s\n", o.String(), strings.Join(bits, " "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&strict, "strict", "s", false, "Reject non-canonical notation")
	return cmd
}

func newKeyCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "key OUTLINE",
		Short: "Print the dictionary key of an outline in hex",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := parseOutline(args[0], strict)
			if err != nil {
				return fail(cmd, "Invalid steno notation", err.Error())
			}
			newPrinter(cmd).Println(hex.EncodeToString(o.Key()))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&strict, "strict", "s", false, "Reject non-canonical notation")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode HEXKEY",
		Short: "Decode a hex dictionary key back into an outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := hex.DecodeString(args[0])
			if err != nil {
				return fail(cmd, "Invalid hex key", err.Error())
			}
			o, err := outline.DecodeKey(raw)
			if err != nil {
				return fail(cmd, "Invalid dictionary key", err.Error(),
					"Keys are 3 bytes (6 hex digits) per stroke.")
			}
			newPrinter(cmd).Println(o.String())
			return nil
		},
	}
}

func newChordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chord KEYS...",
		Short: "Show the stroke a set of keyboard keys produces",
		Long: `Show the stroke produced by pressing keyboard keys together.

Each argument is one chord, typed as the characters of the keys held down.

Examples:
  stenoctl chord swe
  stenoctl chord "r v o p"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd)
			for _, arg := range args {
				s, err := keymap.Chord(arg)
				if err != nil {
					return fail(cmd, "Unknown key in chord", err.Error())
				}
				p.Stroke(s)
			}
			return nil
		},
	}
}

func parseOutline(text string, strict bool) (outline.Outline, error) {
	if strict {
		return outline.ParseStrict(text)
	}
	return outline.Parse(text)
}
