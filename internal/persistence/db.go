// Package persistence provides SQLite-based storage for game sessions.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"github.com/talgya/darkhollow/internal/engine"
)

// ErrNotFound is returned when a session id has no saved row.
var ErrNotFound = errors.New("session not found")

// Shared coders. EncodeAll and DecodeAll are safe for concurrent use.
var (
	encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ = zstd.NewReader(nil)
)

// DB wraps a SQLite connection for session persistence.
type DB struct {
	conn *sqlx.DB
}

// SavedSession is one stored game.
type SavedSession struct {
	ID        string
	Name      string
	Variant   string
	Seed      *int64 // nil when the session draws live entropy
	State     *engine.GameState
	UpdatedAt time.Time
}

// SessionSummary lists a stored game without decoding its state.
type SessionSummary struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Variant   string    `db:"variant" json:"variant"`
	UpdatedAt time.Time `db:"-" json:"updated_at"`
	Updated   int64     `db:"updated_at" json:"-"`
}

// Narration is one persisted log line.
type Narration struct {
	Time uint64 `db:"time" json:"time"`
	Line string `db:"line" json:"line"`
}

type sessionRow struct {
	ID      string        `db:"id"`
	Name    string        `db:"name"`
	Variant string        `db:"variant"`
	Seed    sql.NullInt64 `db:"seed"`
	State   []byte        `db:"state"`
	Updated int64         `db:"updated_at"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		variant TEXT NOT NULL,
		seed INTEGER,
		state BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS narration (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		time INTEGER NOT NULL,
		line TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS server_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_narration_session ON narration(session_id, id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func encodeState(s *engine.GameState) ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return encoder.EncodeAll(raw, nil), nil
}

func decodeState(blob []byte) (*engine.GameState, error) {
	raw, err := decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	var s engine.GameState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &s, nil
}

func toRow(s SavedSession) (sessionRow, error) {
	if s.State == nil {
		return sessionRow{}, fmt.Errorf("session %s has no state", s.ID)
	}
	blob, err := encodeState(s.State)
	if err != nil {
		return sessionRow{}, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	row := sessionRow{ID: s.ID, Name: s.Name, Variant: s.Variant, State: blob, Updated: s.UpdatedAt.Unix()}
	if s.UpdatedAt.IsZero() {
		row.Updated = time.Now().Unix()
	}
	if s.Seed != nil {
		row.Seed = sql.NullInt64{Int64: *s.Seed, Valid: true}
	}
	return row, nil
}

const upsertSession = `INSERT OR REPLACE INTO sessions
	(id, name, variant, seed, state, updated_at)
	VALUES (:id, :name, :variant, :seed, :state, :updated_at)`

// SaveSession writes one session (insert or replace).
func (db *DB) SaveSession(s SavedSession) error {
	row, err := toRow(s)
	if err != nil {
		return err
	}
	if _, err := db.conn.NamedExec(upsertSession, row); err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

// SaveSessions writes every session in one transaction.
func (db *DB) SaveSessions(list []SavedSession) error {
	slog.Info("saving sessions", "count", len(list))

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamed(upsertSession)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range list {
		row, err := toRow(s)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(row); err != nil {
			return fmt.Errorf("insert session %s: %w", s.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	slog.Info("sessions saved", "count", len(list))
	return nil
}

// LoadSession reads one session back. Unknown ids wrap ErrNotFound.
func (db *DB) LoadSession(id string) (SavedSession, error) {
	var row sessionRow
	err := db.conn.Get(&row, "SELECT id, name, variant, seed, state, updated_at FROM sessions WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return SavedSession{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return SavedSession{}, fmt.Errorf("load session %s: %w", id, err)
	}
	state, err := decodeState(row.State)
	if err != nil {
		return SavedSession{}, fmt.Errorf("session %s: %w", id, err)
	}
	out := SavedSession{
		ID:        row.ID,
		Name:      row.Name,
		Variant:   row.Variant,
		State:     state,
		UpdatedAt: time.Unix(row.Updated, 0),
	}
	if row.Seed.Valid {
		seed := row.Seed.Int64
		out.Seed = &seed
	}
	return out, nil
}

// ListSessions returns every stored session, most recently saved first.
func (db *DB) ListSessions() ([]SessionSummary, error) {
	var list []SessionSummary
	err := db.conn.Select(&list, "SELECT id, name, variant, updated_at FROM sessions ORDER BY updated_at DESC, id")
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].UpdatedAt = time.Unix(list[i].Updated, 0)
	}
	return list, nil
}

// DeleteSession removes a session and its narration.
func (db *DB) DeleteSession(id string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := tx.Exec("DELETE FROM narration WHERE session_id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// AppendNarration stores the lines a command produced at game time t.
func (db *DB) AppendNarration(sessionID string, t uint64, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO narration (session_id, time, line) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, line := range lines {
		if _, err := stmt.Exec(sessionID, t, line); err != nil {
			return fmt.Errorf("insert narration: %w", err)
		}
	}
	return tx.Commit()
}

// RecentNarration returns the last limit lines of a session, oldest first.
func (db *DB) RecentNarration(sessionID string, limit int) ([]Narration, error) {
	var lines []Narration
	err := db.conn.Select(&lines,
		"SELECT time, line FROM narration WHERE session_id = ? ORDER BY id DESC LIMIT ?",
		sessionID, limit,
	)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines, nil
}

// SaveMeta stores a key-value pair in server metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO server_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM server_meta WHERE key = ?", key)
	return value, err
}
