// Package tape keeps a persistent history of finished strokes, the
// stenographer's "paper tape", in SQLite.
package tape

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"stenod/internal/stroke"
)

// ErrInvalidEntry is returned when an entry cannot be recorded.
var ErrInvalidEntry = errors.New("tape: invalid entry")

// Entry is one stroke on the tape.
type Entry struct {
	ID          int64
	SessionID   string
	Seq         uint64
	TimestampNs int64
	Stroke      stroke.Stroke
}

// Time returns the entry timestamp.
func (e Entry) Time() time.Time {
	return time.Unix(0, e.TimestampNs)
}

type entryJSON struct {
	ID          int64  `json:"id,omitempty"`
	SessionID   string `json:"session_id"`
	Seq         uint64 `json:"seq"`
	TimestampNs int64  `json:"timestamp_ns"`
	Bits        uint32 `json:"bits"`
	Steno       string `json:"steno"`
}

// MarshalJSON writes the stroke both as raw bits and as notation.
func (e Entry) MarshalJSON() ([]byte, error) {
	return json.Marshal(entryJSON{
		ID:          e.ID,
		SessionID:   e.SessionID,
		Seq:         e.Seq,
		TimestampNs: e.TimestampNs,
		Bits:        e.Stroke.Uint32(),
		Steno:       e.Stroke.String(),
	})
}

// UnmarshalJSON reads the form written by MarshalJSON. The bits field is
// authoritative; the notation must agree with it.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s, err := stroke.FromUint32(raw.Bits)
	if err != nil {
		return err
	}
	if s.String() != raw.Steno {
		return fmt.Errorf("%w: steno %q does not match bits %#x", ErrInvalidEntry, raw.Steno, raw.Bits)
	}
	*e = Entry{
		ID:          raw.ID,
		SessionID:   raw.SessionID,
		Seq:         raw.Seq,
		TimestampNs: raw.TimestampNs,
		Stroke:      s,
	}
	return nil
}

// Store is the SQLite-backed tape.
type Store struct {
	db *sql.DB
}

// Open opens or creates the tape database at path.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create tape directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open tape: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends e and returns its row ID. A zero timestamp is replaced
// with the current time.
func (s *Store) Record(e *Entry) (int64, error) {
	if e.SessionID == "" {
		return 0, fmt.Errorf("%w: missing session id", ErrInvalidEntry)
	}
	if !e.Stroke.Valid() || e.Stroke.IsEmpty() {
		return 0, fmt.Errorf("%w: stroke %#x", ErrInvalidEntry, e.Stroke.Uint32())
	}
	if e.TimestampNs == 0 {
		e.TimestampNs = time.Now().UnixNano()
	}

	result, err := s.db.Exec(`
		INSERT INTO strokes (session_id, seq, timestamp_ns, bits, steno)
		VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, e.Seq, e.TimestampNs, e.Stroke.Uint32(), e.Stroke.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert stroke: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	e.ID = id
	return id, nil
}

// Recent returns up to limit of the latest entries, oldest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, seq, timestamp_ns, bits FROM (
			SELECT id, session_id, seq, timestamp_ns, bits
			FROM strokes ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent strokes: %w", err)
	}
	return scanEntries(rows)
}

// Session returns every entry recorded under sessionID in sequence order.
func (s *Store) Session(sessionID string) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, seq, timestamp_ns, bits
		FROM strokes WHERE session_id = ? ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session strokes: %w", err)
	}
	return scanEntries(rows)
}

// Count returns the number of recorded strokes.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM strokes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count strokes: %w", err)
	}
	return n, nil
}

// SessionSummary describes one recorded session.
type SessionSummary struct {
	SessionID string
	Strokes   int64
	FirstNs   int64
	LastNs    int64
}

// Duration is the time between the first and last stroke.
func (s SessionSummary) Duration() time.Duration {
	return time.Duration(s.LastNs - s.FirstNs)
}

// Sessions summarizes every recorded session, most recently active first.
func (s *Store) Sessions() ([]SessionSummary, error) {
	rows, err := s.db.Query(`
		SELECT session_id, strokes, first_ns, last_ns
		FROM session_summary ORDER BY last_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var ss SessionSummary
		if err := rows.Scan(&ss.SessionID, &ss.Strokes, &ss.FirstNs, &ss.LastNs); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, ss)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

// SchemaVersion returns the applied schema version.
func (s *Store) SchemaVersion() (int, error) {
	return schemaVersion(s.db)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var bits uint32
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.TimestampNs, &bits); err != nil {
			return nil, fmt.Errorf("scan stroke: %w", err)
		}
		st, err := stroke.FromUint32(bits)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", e.ID, err)
		}
		e.Stroke = st
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strokes: %w", err)
	}
	return entries, nil
}

// WriteJSON writes entries to w as a JSON array.
func WriteJSON(w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode tape: %w", err)
	}
	return nil
}
