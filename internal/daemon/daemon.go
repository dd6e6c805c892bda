// Package daemon runs the stenod stroke pipeline: key events in, finished
// strokes out to the tape and the bus, with a rolling outline window.
//
// The daemon makes no word-boundary or dictionary decisions. Each message
// carries the last few strokes and their key so a subscriber can do its own
// longest-match lookup.
package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"stenod/internal/bus"
	"stenod/internal/chord"
	"stenod/internal/logging"
	"stenod/internal/outline"
	"stenod/internal/stroke"
	"stenod/internal/tape"
)

// Recorder stores finished strokes.
type Recorder interface {
	Record(e *tape.Entry) (int64, error)
}

// Publisher fans finished strokes out to subscribers.
type Publisher interface {
	Publish(ctx context.Context, m bus.Message) (int64, error)
}

// ErrNoSession is returned when a daemon is built without a session ID.
var ErrNoSession = errors.New("daemon: session id cannot be empty")

// Options configures a Daemon. Tape and Bus are optional.
type Options struct {
	SessionID      string
	Window         int
	Tape           Recorder
	Bus            Publisher
	Logger         *logging.Logger
	PublishTimeout time.Duration
	Now            func() time.Time
}

// Daemon turns key events into recorded and published strokes.
type Daemon struct {
	sessionID string
	window    int
	tape      Recorder
	bus       Publisher
	log       *logging.Logger
	timeout   time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	outline outline.Outline
	seq     uint64
}

// New builds a daemon from opts.
func New(opts Options) (*Daemon, error) {
	if opts.SessionID == "" {
		return nil, ErrNoSession
	}
	if opts.Window < 1 {
		return nil, fmt.Errorf("daemon: outline window must be at least 1, got %d", opts.Window)
	}

	d := &Daemon{
		sessionID: opts.SessionID,
		window:    opts.Window,
		tape:      opts.Tape,
		bus:       opts.Bus,
		log:       opts.Logger,
		timeout:   opts.PublishTimeout,
		now:       opts.Now,
	}
	if d.log == nil {
		d.log = logging.Default()
	}
	d.log = d.log.WithComponent("daemon")
	if d.timeout <= 0 {
		d.timeout = 500 * time.Millisecond
	}
	if d.now == nil {
		d.now = time.Now
	}
	return d, nil
}

// Run reads "down <key>" / "up <key>" lines from r until EOF or ctx is
// done. Blank lines and lines starting with '#' are ignored, malformed
// lines are logged and skipped. Storage and publish failures are logged and
// do not stop the pipeline.
func (d *Daemon) Run(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(d.sessionContext(ctx))
	defer cancel()
	log := d.log.WithContext(ctx)

	events := make(chan chord.Event)
	readErr := make(chan error, 1)

	go func() {
		defer close(events)
		readErr <- d.readEvents(ctx, r, events)
	}()

	for s := range chord.Run(ctx, events) {
		if err := d.HandleStroke(ctx, s); err != nil {
			log.Warn("stroke not fully delivered", "steno", s.String(), "bits", s.Uint32(), "error", err)
		}
	}

	select {
	case err := <-readErr:
		if err != nil {
			return err
		}
	default:
		// Reader is still blocked on input; ctx was cancelled.
	}
	log.Info("pipeline stopped", "strokes", d.Seq())
	return nil
}

func (d *Daemon) readEvents(ctx context.Context, r io.Reader, events chan<- chord.Event) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		e, err := chord.ParseEvent(text)
		if err != nil {
			d.log.WithContext(ctx).Warn("skipping key event", "line", line, "error", err)
			continue
		}
		e.Time = d.now()
		select {
		case events <- e:
		case <-ctx.Done():
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read key events: %w", err)
	}
	return nil
}

// HandleStroke assigns s the next sequence number, adds it to the rolling
// window, records it and publishes it.
func (d *Daemon) HandleStroke(ctx context.Context, s stroke.Stroke) error {
	ctx = d.sessionContext(ctx)

	d.mu.Lock()
	seq := d.seq
	d.seq++
	d.outline.Push(s)
	if d.outline.Len() > d.window {
		d.outline = d.outline.Tail(d.window)
	}
	window := d.outline.Tail(d.outline.Len())
	d.mu.Unlock()

	ts := d.now().UnixNano()
	d.log.WithContext(ctx).Debug("stroke",
		"seq", seq,
		"steno", s.String(),
		"bits", s.Uint32(),
		"window", window.String(),
	)

	var errs []error
	if d.tape != nil {
		entry := &tape.Entry{SessionID: d.sessionID, Seq: seq, TimestampNs: ts, Stroke: s}
		if _, err := d.tape.Record(entry); err != nil {
			errs = append(errs, fmt.Errorf("record: %w", err))
		}
	}
	if d.bus != nil {
		pubCtx, cancel := context.WithTimeout(ctx, d.timeout)
		_, err := d.bus.Publish(pubCtx, bus.NewMessage(d.sessionID, seq, ts, s, window))
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}
	return errors.Join(errs...)
}

// sessionContext tags ctx with the daemon's session unless a caller already
// did.
func (d *Daemon) sessionContext(ctx context.Context) context.Context {
	if logging.SessionIDFromContext(ctx) != "" {
		return ctx
	}
	return logging.ContextWithSessionID(ctx, d.sessionID)
}

// Window returns a copy of the rolling outline.
func (d *Daemon) Window() outline.Outline {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.outline.IsEmpty() {
		return outline.Outline{}
	}
	return d.outline.Tail(d.outline.Len())
}

// Seq returns how many strokes have been handled.
func (d *Daemon) Seq() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.seq
}

// SessionID returns the session the daemon records under.
func (d *Daemon) SessionID() string {
	return d.sessionID
}
