package saved

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a saved key does not exist.
var ErrNotFound = errors.New("saved entry not found")

// Store is a flat key/value capability. The service layers naming and
// serialization on top; implementations only move bytes.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Keys() ([]string, error)
}

// SQLStore keeps saved entries in a sqlite table. Set upserts, so saving
// under an existing name overwrites it.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates a sqlite-backed store
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM saved_inputs WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read saved entry: %w", err)
	}
	return value, nil
}

func (s *SQLStore) Set(key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(`
		INSERT INTO saved_inputs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, now)
	if err != nil {
		return fmt.Errorf("failed to write saved entry: %w", err)
	}
	return nil
}

func (s *SQLStore) Delete(key string) error {
	result, err := s.db.Exec("DELETE FROM saved_inputs WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("failed to delete saved entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Keys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM saved_inputs ORDER BY key")
	if err != nil {
		return nil, fmt.Errorf("failed to list saved keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan saved key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
