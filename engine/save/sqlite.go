package save

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// goose keeps its dialect and base FS in package globals.
var migrateMu sync.Mutex

// SQLite is a Store backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// Open opens the save database at path, creating and migrating it as
// needed.
func Open(ctx context.Context, path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("save path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Close closes the database. It is safe on a nil store.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes a record, replacing any earlier save for the same handle.
func (s *SQLite) Save(ctx context.Context, rec Record) error {
	if strings.TrimSpace(rec.Handle) == "" {
		return fmt.Errorf("save: handle is required")
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now()
	}
	data, err := Marshal(rec)
	if err != nil {
		return fmt.Errorf("save %s: %w", rec.Handle, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves (handle, role, location, record, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(handle) DO UPDATE SET
			role = excluded.role,
			location = excluded.location,
			record = excluded.record,
			saved_at = excluded.saved_at`,
		rec.Handle, rec.Role, rec.Location, string(data), toMillis(rec.SavedAt))
	if err != nil {
		return fmt.Errorf("save %s: %w", rec.Handle, err)
	}
	return nil
}

// Load reads the save for handle. It returns ErrNotFound when there is none.
func (s *SQLite) Load(ctx context.Context, handle string) (Record, error) {
	var (
		data    string
		savedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT record, saved_at FROM saves WHERE handle = ?`, handle,
	).Scan(&data, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("load %s: %w", handle, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("load %s: %w", handle, err)
	}
	rec, err := Unmarshal([]byte(data))
	if err != nil {
		return Record{}, fmt.Errorf("load %s: %w", handle, err)
	}
	rec.SavedAt = fromMillis(savedAt)
	return rec, nil
}

// List returns saved handles, most recent first.
func (s *SQLite) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT handle FROM saves ORDER BY saved_at DESC, handle`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var handles []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("list saves: %w", err)
		}
		handles = append(handles, h)
	}
	return handles, rows.Err()
}
