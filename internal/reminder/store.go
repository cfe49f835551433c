package reminder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	_ "modernc.org/sqlite"

	"github.com/notexe/reminder-cli/internal/schedule"
)

// Storage is the persistence collaborator shared by the CLI and the
// daemon. Load returns the last fully written snapshot, Save replaces it
// all-or-nothing, and Update runs fn against a registry inside one
// exclusive read-modify-write so concurrent processes cannot lose updates.
type Storage interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
	Update(ctx context.Context, fn func(*Registry) error) error
}

// Store provides SQLite-backed storage for reminders.
type Store struct {
	db *sql.DB
}

var _ Storage = (*Store)(nil)

// busyTimeout is how long a writer waits for another process's
// transaction before failing with SQLITE_BUSY.
const busyTimeout = 5 * time.Second

// NewStore opens (or creates) the SQLite database at dbPath and ensures
// the schema exists.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, persistenceError("open", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, persistenceError("migrate", err)
	}

	return &Store{db: db}, nil
}

// dsn applies the per-connection pragmas. Transactions begin IMMEDIATE so
// the write lock is taken before the snapshot is read.
func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id            TEXT    PRIMARY KEY,
			title         TEXT    NOT NULL,
			description   TEXT    NOT NULL DEFAULT '',
			tags          TEXT    NOT NULL DEFAULT '[]',
			schedule_kind TEXT    NOT NULL,
			fire_at       TEXT,
			cron          TEXT    NOT NULL DEFAULT '',
			next_fire_at  TEXT    NOT NULL,
			paused        INTEGER NOT NULL DEFAULT 0,
			completed     INTEGER NOT NULL DEFAULT 0,
			last_fired_at TEXT,
			created_at    TEXT    NOT NULL,
			updated_at    TEXT    NOT NULL
		);
		CREATE TABLE IF NOT EXISTS daemon_status (
			id            INTEGER PRIMARY KEY CHECK (id = 1),
			pid           INTEGER NOT NULL,
			started_at    TEXT    NOT NULL,
			last_cycle_at TEXT,
			fired         INTEGER NOT NULL DEFAULT 0,
			last_error    TEXT    NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns every stored reminder.
func (s *Store) Load(ctx context.Context) ([]Record, error) {
	records, err := loadRecords(ctx, s.db)
	return records, persistenceError("load", err)
}

// Save replaces the stored snapshot with records.
func (s *Store) Save(ctx context.Context, records []Record) error {
	return persistenceError("save", s.inTx(ctx, func(tx *sql.Tx) error {
		return replaceRecords(ctx, tx, records)
	}))
}

// Update loads the snapshot into a Registry, runs fn, and writes the
// result back in the same transaction. An error from fn rolls back and is
// returned unwrapped.
func (s *Store) Update(ctx context.Context, fn func(*Registry) error) error {
	var fnErr error
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		records, err := loadRecords(ctx, tx)
		if err != nil {
			return err
		}
		registry := NewRegistry(records)
		if fnErr = fn(registry); fnErr != nil {
			return fnErr
		}
		return replaceRecords(ctx, tx, registry.Records())
	})
	if fnErr != nil {
		return fnErr
	}
	return persistenceError("update", err)
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadRecords(ctx context.Context, q queryer) ([]Record, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, title, description, tags, schedule_kind, fire_at, cron,
		       next_fire_at, paused, completed, last_fired_at, created_at, updated_at
		FROM reminders ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// scanRecord reads one row. Malformed rows are reported rather than
// skipped so a corrupt snapshot is never silently rewritten.
func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		r                                Record
		tags, kind, cron                 string
		fireAt, lastFiredAt              sql.NullString
		nextFireAt, createdAt, updatedAt string
	)
	if err := rows.Scan(&r.ID, &r.Title, &r.Description, &tags, &kind, &fireAt, &cron,
		&nextFireAt, &r.Paused, &r.Completed, &lastFiredAt, &createdAt, &updatedAt); err != nil {
		return Record{}, fmt.Errorf("failed to scan reminder: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
		return Record{}, fmt.Errorf("reminder %s: bad tags: %w", r.ID, err)
	}
	if len(r.Tags) == 0 {
		r.Tags = nil
	}

	switch schedule.Kind(kind) {
	case schedule.KindOneShot:
		at, err := parseTime(fireAt.String)
		if err != nil {
			return Record{}, fmt.Errorf("reminder %s: bad fire_at: %w", r.ID, err)
		}
		r.Schedule = schedule.OneShot(at)
	case schedule.KindRecurring:
		r.Schedule = schedule.Recurring(cron)
	}
	if err := r.Schedule.Validate(); err != nil {
		return Record{}, fmt.Errorf("reminder %s: %w", r.ID, err)
	}

	var err error
	if r.NextFireAt, err = parseTime(nextFireAt); err != nil {
		return Record{}, fmt.Errorf("reminder %s: bad next_fire_at: %w", r.ID, err)
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return Record{}, fmt.Errorf("reminder %s: bad created_at: %w", r.ID, err)
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return Record{}, fmt.Errorf("reminder %s: bad updated_at: %w", r.ID, err)
	}
	if lastFiredAt.Valid {
		t, err := parseTime(lastFiredAt.String)
		if err != nil {
			return Record{}, fmt.Errorf("reminder %s: bad last_fired_at: %w", r.ID, err)
		}
		r.LastFiredAt = &t
	}
	return r, nil
}

func replaceRecords(ctx context.Context, tx *sql.Tx, records []Record) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders`); err != nil {
		return fmt.Errorf("failed to clear reminders: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reminders (id, title, description, tags, schedule_kind, fire_at, cron,
		                       next_fire_at, paused, completed, last_fired_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		tags, err := json.Marshal(nonNil(r.Tags))
		if err != nil {
			return fmt.Errorf("reminder %s: encode tags: %w", r.ID, err)
		}

		var fireAt, lastFiredAt sql.NullString
		if at, ok := r.Schedule.FireAt(); ok {
			fireAt = sql.NullString{String: formatTime(at), Valid: true}
		}
		cron, _ := r.Schedule.Cron()
		if r.LastFiredAt != nil {
			lastFiredAt = sql.NullString{String: formatTime(*r.LastFiredAt), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Title, r.Description, string(tags), string(r.Schedule.Kind()), fireAt, cron,
			formatTime(r.NextFireAt), r.Paused, r.Completed, lastFiredAt,
			formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
		); err != nil {
			return fmt.Errorf("failed to insert reminder %s: %w", r.ID, err)
		}
	}
	return nil
}

// Heartbeat is the daemon's health row: who runs the loop and when it
// last completed a cycle.
type Heartbeat struct {
	PID         int       `json:"pid"`
	StartedAt   time.Time `json:"started_at"`
	LastCycleAt time.Time `json:"last_cycle_at"`
	Fired       int       `json:"fired"`
	LastError   string    `json:"last_error,omitempty"`
}

// WriteHeartbeat stores hb, replacing any previous heartbeat.
func (s *Store) WriteHeartbeat(ctx context.Context, hb Heartbeat) error {
	var lastCycle sql.NullString
	if !hb.LastCycleAt.IsZero() {
		lastCycle = sql.NullString{String: formatTime(hb.LastCycleAt), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daemon_status (id, pid, started_at, last_cycle_at, fired, last_error)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			pid = excluded.pid,
			started_at = excluded.started_at,
			last_cycle_at = excluded.last_cycle_at,
			fired = excluded.fired,
			last_error = excluded.last_error
	`, hb.PID, formatTime(hb.StartedAt), lastCycle, hb.Fired, hb.LastError)
	return persistenceError("write heartbeat", err)
}

// ReadHeartbeat returns the stored heartbeat; ok is false when no daemon
// has ever written one.
func (s *Store) ReadHeartbeat(ctx context.Context) (hb Heartbeat, ok bool, err error) {
	var startedAt string
	var lastCycle sql.NullString
	row := s.db.QueryRowContext(ctx, `
		SELECT pid, started_at, last_cycle_at, fired, last_error FROM daemon_status WHERE id = 1
	`)
	if err := row.Scan(&hb.PID, &startedAt, &lastCycle, &hb.Fired, &hb.LastError); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Heartbeat{}, false, nil
		}
		return Heartbeat{}, false, persistenceError("read heartbeat", err)
	}

	if hb.StartedAt, err = parseTime(startedAt); err != nil {
		return Heartbeat{}, false, persistenceError("read heartbeat", err)
	}
	if lastCycle.Valid {
		if hb.LastCycleAt, err = parseTime(lastCycle.String); err != nil {
			return Heartbeat{}, false, persistenceError("read heartbeat", err)
		}
	}
	return hb, true, nil
}

// ClearHeartbeat removes the heartbeat row, as a stopping daemon does.
func (s *Store) ClearHeartbeat(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM daemon_status WHERE id = 1`)
	return persistenceError("clear heartbeat", err)
}

// Instants are stored in UTC with nanoseconds so they sort as text and
// round-trip exactly.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
