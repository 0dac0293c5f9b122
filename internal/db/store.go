package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jwulff/scribe/internal/library"
)

// keepSnapshots is how many listings are retained per backend.
const keepSnapshots = 5

const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		backend TEXT NOT NULL,
		fetchedAt REAL NOT NULL,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS snapshots_backend ON snapshots(backend, fetchedAt);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT NOT NULL,
		backend TEXT NOT NULL,
		title TEXT,
		payload BLOB NOT NULL,
		fetchedAt REAL NOT NULL,
		PRIMARY KEY (backend, id)
	);
`

// Store is the local cache database.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default cache path.
func DefaultDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "scribe", "cache.sqlite")
}

// Open opens or creates the cache at path with WAL. ":memory:" gives a
// throwaway cache.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection: SQLite has a single writer, and :memory: is per connection.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveStructure records a listing fetched from backend and prunes old ones.
func (s *Store) SaveStructure(backend string, data library.Structure, at time.Time) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal structure: %w", err)
	}
	if _, err := s.db.Exec(`
		INSERT INTO snapshots (backend, fetchedAt, payload) VALUES (?, ?, ?)
	`, backend, unixFromTime(at), string(payload)); err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	if _, err := s.db.Exec(`
		DELETE FROM snapshots
		WHERE backend = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE backend = ? ORDER BY fetchedAt DESC, id DESC LIMIT ?
		)
	`, backend, backend, keepSnapshots); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}

// LatestStructure returns the newest listing for backend, or nil if none.
func (s *Store) LatestStructure(backend string) (*Snapshot, error) {
	row := s.db.QueryRow(`
		SELECT id, backend, fetchedAt, payload
		FROM snapshots
		WHERE backend = ?
		ORDER BY fetchedAt DESC, id DESC
		LIMIT 1
	`, backend)

	var snap Snapshot
	var fetchedAt float64
	var payload string
	if err := row.Scan(&snap.ID, &snap.Backend, &fetchedAt, &payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), &snap.Structure); err != nil {
		return nil, fmt.Errorf("decode snapshot %d: %w", snap.ID, err)
	}
	snap.FetchedAt = timeFromUnix(fetchedAt)
	return &snap, nil
}

// CountSnapshots returns how many listings are kept for backend.
func (s *Store) CountSnapshots(backend string) (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE backend = ?`, backend).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

// SaveSession stores the raw detail payload of a session, replacing any
// previous copy.
func (s *Store) SaveSession(backend, id, title string, payload []byte, at time.Time) error {
	if _, err := s.db.Exec(`
		INSERT INTO sessions (id, backend, title, payload, fetchedAt)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(backend, id) DO UPDATE SET
			title = excluded.title,
			payload = excluded.payload,
			fetchedAt = excluded.fetchedAt
	`, id, backend, title, payload, unixFromTime(at)); err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// CachedSession returns the stored payload of a session, or nil if none.
func (s *Store) CachedSession(backend, id string) (*CachedSession, error) {
	row := s.db.QueryRow(`
		SELECT id, backend, title, payload, fetchedAt
		FROM sessions
		WHERE backend = ? AND id = ?
	`, backend, id)

	var cs CachedSession
	var title sql.NullString
	var fetchedAt float64
	if err := row.Scan(&cs.ID, &cs.Backend, &title, &cs.Payload, &fetchedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	if title.Valid {
		cs.Title = title.String
	}
	cs.FetchedAt = timeFromUnix(fetchedAt)
	return &cs, nil
}

// DeleteSession drops a cached session.
func (s *Store) DeleteSession(backend, id string) error {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE backend = ? AND id = ?`, backend, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
