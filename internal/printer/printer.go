// Package printer formats stenoctl output for the terminal.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"stenod/internal/stroke"
	"stenod/internal/tape"
)

func init() {
	// Force color output even when not connected to TTY
	// Users can disable with NO_COLOR environment variable
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green   = color.New(color.FgGreen)
	yellow  = color.New(color.FgYellow)
	red     = color.New(color.FgRed, color.Bold)
	cyan    = color.New(color.FgCyan)
	magenta = color.New(color.FgMagenta)
	bold    = color.New(color.Bold)
)

// Printer writes formatted output to a pair of streams.
type Printer struct {
	out    io.Writer
	errOut io.Writer
}

// New returns a printer writing normal output to out and errors to errOut.
func New(out, errOut io.Writer) *Printer {
	return &Printer{out: out, errOut: errOut}
}

// Success prints a success message in green with a checkmark prefix
func (p *Printer) Success(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "✓") {
		msg = "✓ " + msg
	}
	green.Fprint(p.out, msg)
}

// Info prints an informational message in the default color
func (p *Printer) Info(format string, a ...any) {
	fmt.Fprintf(p.out, format, a...)
}

// Warning prints a warning message in yellow to the error stream
func (p *Printer) Warning(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)
	if !strings.HasPrefix(msg, "⚠️") {
		msg = "⚠️  " + msg
	}
	yellow.Fprint(p.errOut, msg)
}

// Error prints a title, explanation and suggestions to the error stream and
// returns an error carrying only the title for Cobra.
func (p *Printer) Error(title string, explanation string, suggestions []string) error {
	red.Fprintf(p.errOut, "%s\n\n", title)

	if explanation != "" {
		fmt.Fprintf(p.errOut, "%s\n", explanation)
	}

	if len(suggestions) > 0 {
		fmt.Fprintf(p.errOut, "\n")
		if len(suggestions) == 1 {
			fmt.Fprintf(p.errOut, "%s\n", suggestions[0])
		} else {
			fmt.Fprintf(p.errOut, "Either:\n")
			for i, suggestion := range suggestions {
				fmt.Fprintf(p.errOut, "  %d. %s\n", i+1, suggestion)
			}
		}
	}

	return fmt.Errorf("%s", title)
}

// Println prints a plain message
func (p *Printer) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}

// Stroke prints s in steno notation with each bank in its own color.
func (p *Printer) Stroke(s stroke.Stroke) {
	fmt.Fprintln(p.out, Steno(s))
}

// Steno renders s with the number bar in magenta, the left bank in cyan,
// the thumb keys in yellow and the right bank in green.
func Steno(s stroke.Stroke) string {
	text := s.String()
	if color.NoColor {
		return text
	}

	var b strings.Builder
	right := false
	for _, r := range text {
		c := cyan
		switch {
		case r == '#':
			c = magenta
		case strings.ContainsRune("AO*EU-", r):
			c = yellow
			right = true
		case strings.ContainsRune("FBLGDZ", r):
			right = true
			c = green
		case right:
			c = green
		}
		b.WriteString(c.Sprint(string(r)))
	}
	return b.String()
}

// Breakdown prints s bank by bank with its raw bits.
func (p *Printer) Breakdown(s stroke.Stroke) {
	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", bold.Sprint("steno"), Steno(s))
	fmt.Fprintf(w, "number bar\t%t\n", s.Has(stroke.Hash))
	fmt.Fprintf(w, "left\t%s\n", bankText(s, stroke.LeftBank))
	fmt.Fprintf(w, "vowels\t%s\n", bankText(s, stroke.Vowels))
	fmt.Fprintf(w, "right\t%s\n", bankText(s, stroke.RightBank))
	fmt.Fprintf(w, "bits\t%#06x\n", s.Uint32())
	fmt.Fprintf(w, "number\t%t\n", s.IsNumber())
	w.Flush()
}

func bankText(s stroke.Stroke, bank stroke.Stroke) string {
	part := s.Intersect(bank)
	if part.IsEmpty() {
		return "-"
	}
	return part.String()
}

// Entries prints tape entries as a table.
func (p *Printer) Entries(entries []tape.Entry) {
	if len(entries) == 0 {
		p.Info("No strokes recorded.\n")
		return
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SEQ\tTIME\tSESSION\tSTENO")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
			e.Seq,
			e.Time().Format(time.RFC3339Nano),
			shortID(e.SessionID),
			Steno(e.Stroke),
		)
	}
	w.Flush()
}

// Sessions prints one row per recorded session.
func (p *Printer) Sessions(sessions []tape.SessionSummary) {
	if len(sessions) == 0 {
		p.Info("No sessions recorded.\n")
		return
	}

	w := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tSTROKES\tSTARTED\tDURATION")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
			s.SessionID,
			s.Strokes,
			time.Unix(0, s.FirstNs).Format(time.RFC3339),
			s.Duration().Round(time.Millisecond),
		)
	}
	w.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
