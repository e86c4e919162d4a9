package project

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
    id         TEXT PRIMARY KEY,
    version    INTEGER NOT NULL,
    payload    TEXT NOT NULL,
    updated_at TEXT NOT NULL
)`

// SQLiteStore keeps every project as one row of a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at dbPath and ensures the schema.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, now: time.Now}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context, projectID string) (*Snapshot, error) {
	snap, err := s.load(ctx, projectID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return snap, err
}

func (s *SQLiteStore) load(ctx context.Context, projectID string) (*Snapshot, error) {
	if err := ValidateID(projectID); err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM projects WHERE id = ?`, projectID)
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load project %s: %w", projectID, err)
	}
	snap, err := Decode(bytes.NewReader([]byte(payload)))
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", projectID, err)
	}
	return snap, nil
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, projectID string, snap *Snapshot) error {
	if err := ValidateID(projectID); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return fmt.Errorf("encode project %s: %w", projectID, err)
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO projects (id, version, payload, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            version = excluded.version,
            payload = excluded.payload,
            updated_at = excluded.updated_at
    `, projectID, Version, buf.String(), s.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save project %s: %w", projectID, err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
