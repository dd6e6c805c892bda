package tape

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration is one step of the tape schema.
type Migration struct {
	Version     int
	Description string
	Up          string
}

// migrations contains all tape migrations in order.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial strokes table",
		Up: `
CREATE TABLE IF NOT EXISTS strokes (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id      TEXT NOT NULL,
    seq             INTEGER NOT NULL,
    timestamp_ns    INTEGER NOT NULL,
    bits            INTEGER NOT NULL,
    steno           TEXT NOT NULL,
    UNIQUE (session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_strokes_timestamp ON strokes(timestamp_ns);
`,
	},
	{
		Version:     2,
		Description: "Add per-session summary view",
		Up: `
CREATE VIEW IF NOT EXISTS session_summary AS
SELECT session_id,
       COUNT(*)          AS strokes,
       MIN(timestamp_ns) AS first_ns,
       MAX(timestamp_ns) AS last_ns
FROM strokes
GROUP BY session_id;
`,
	},
}

// migrate applies every migration newer than the recorded schema version.
func migrate(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version     INTEGER PRIMARY KEY,
			applied_at  INTEGER NOT NULL,
			description TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	current, err := schemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", m.Version, err)
		}
		if _, err := tx.Exec(m.Up); err != nil {
			tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, applied_at, description) VALUES (?, ?, ?)",
			m.Version, time.Now().UnixNano(), m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func schemaVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v); err != nil {
		return 0, fmt.Errorf("get schema version: %w", err)
	}
	return v, nil
}

// LatestVersion is the schema version Open brings a tape up to.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}
