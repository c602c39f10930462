// Package store persists the device identity, the backend auth token and a
// log of backend submissions in a local SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ppimalaysia/regform/pkg/model"
)

// DB handles local persistence
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates the database at the given path
func OpenDB(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sdb := &DB{db: db}
	if err := sdb.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS device (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS submissions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		payload TEXT NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT DEFAULT '',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

const (
	keyDeviceID = "ugt"
	keyToken    = "token"
)

func (d *DB) get(key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM device WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (d *DB) set(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO device (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	return err
}

// DeviceID returns this installation's device id, generating and storing a
// new random UUID on first use.
func (d *DB) DeviceID() (string, error) {
	id, ok, err := d.get(keyDeviceID)
	if err != nil {
		return "", fmt.Errorf("read device id: %w", err)
	}
	if ok && id != "" {
		return id, nil
	}

	id = uuid.NewString()
	if err := d.set(keyDeviceID, id); err != nil {
		return "", fmt.Errorf("store device id: %w", err)
	}
	return id, nil
}

// Token returns the stored backend token, or "" if none was saved
func (d *DB) Token() (string, error) {
	tok, _, err := d.get(keyToken)
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return tok, nil
}

// SetToken stores the backend token. An empty token removes it.
func (d *DB) SetToken(token string) error {
	if token == "" {
		_, err := d.db.Exec(`DELETE FROM device WHERE key = ?`, keyToken)
		return err
	}
	return d.set(keyToken, token)
}

// RecordSubmission inserts a submission log entry
func (d *DB) RecordSubmission(s *model.Submission) error {
	if !s.Outcome.IsValid() {
		return fmt.Errorf("invalid outcome %q", s.Outcome)
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	result, err := d.db.Exec(`
		INSERT INTO submissions (action, payload, outcome, error, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, s.Action, s.Payload, s.Outcome, s.Error, s.CreatedAt)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// RecentSubmissions returns up to limit submissions, newest first
func (d *DB) RecentSubmissions(limit int) ([]model.Submission, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(`
		SELECT id, action, payload, outcome, error, created_at
		FROM submissions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []model.Submission
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(&s.ID, &s.Action, &s.Payload, &s.Outcome, &s.Error, &s.CreatedAt); err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}
