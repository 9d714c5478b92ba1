package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// SettingsRowID is the fixed identity of the singleton settings row.
const SettingsRowID = 1

// SQLiteStore implements Gateway using SQLite. The connection is opened on
// first use and reused until Close.
type SQLiteStore struct {
	path string

	mu sync.Mutex
	db *sql.DB
}

// NewSQLiteStore returns a gateway for the database file at dbPath.
// Nothing is opened until the first call that needs the connection.
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{path: dbPath}
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// conn returns the live connection, opening and migrating it on first use.
// Concurrent first callers share a single open.
func (s *SQLiteStore) conn() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.db = db
	return db, nil
}

// EnsureSchema opens the database if needed. Opening always migrates.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	_, err := s.conn()
	return err
}

func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS meals (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		date          TEXT,
		mealType      TEXT,
		time          TEXT,
		description   TEXT,
		photoPath     TEXT,
		hungerLevel   INTEGER,
		fullnessLevel INTEGER,
		emotionBefore TEXT,
		emotionAfter  TEXT,
		notes         TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_meals_date ON meals(date);

	CREATE TABLE IF NOT EXISTS water (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		date        TEXT,
		time        TEXT,
		amount      INTEGER,
		thirstLevel INTEGER,
		notes       TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_water_date ON water(date);

	CREATE TABLE IF NOT EXISTS settings (
		id               INTEGER PRIMARY KEY,
		theme            TEXT,
		waterWidget      INTEGER,
		mealCountWidget  INTEGER,
		weightWidget     INTEGER,
		height           INTEGER,
		weight           REAL,
		keepPhotosMonths INTEGER
	);

	CREATE TABLE IF NOT EXISTS weights (
		id     INTEGER PRIMARY KEY AUTOINCREMENT,
		date   TEXT,
		weight REAL
	);
	CREATE INDEX IF NOT EXISTS idx_weights_date ON weights(date);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}

	// Columns added after the first schema; errors mean the column is already there.
	db.Exec(`ALTER TABLE meals ADD COLUMN notes TEXT`)
	db.Exec(`ALTER TABLE water ADD COLUMN thirstLevel INTEGER`)
	db.Exec(`ALTER TABLE water ADD COLUMN notes TEXT`)
	db.Exec(`ALTER TABLE settings ADD COLUMN keepPhotosMonths INTEGER`)

	return nil
}

// Close closes the connection if one is open. A later call reopens it.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

// execAffecting runs an UPDATE and maps zero affected rows to ErrNotFound.
func execAffecting(ctx context.Context, db *sql.DB, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
