package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a snapshot id does not exist.
var ErrNotFound = errors.New("snapshot not found")

// SnapshotRepository persists snapshots in sqlite. The table is append-only
// in normal operation; snapshots are never updated, only inserted and
// occasionally deleted by id.
type SnapshotRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:  db,
		log: log.With().Str("repo", "snapshots").Logger(),
	}
}

// Insert stores a snapshot.
func (r *SnapshotRepository) Insert(snapshot Snapshot) error {
	inputsJSON, err := json.Marshal(snapshot.Inputs)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot inputs: %w", err)
	}
	metricsJSON, err := json.Marshal(snapshot.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot metrics: %w", err)
	}

	_, err = r.db.Exec(`
		INSERT INTO snapshots (id, product_id, product_name, date, timestamp, inputs, metrics, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshot.ID, snapshot.ProductID, snapshot.ProductName, snapshot.Date,
		snapshot.Timestamp.Format(time.RFC3339), string(inputsJSON), string(metricsJSON), snapshot.Notes)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	r.log.Debug().
		Str("snapshot_id", snapshot.ID).
		Str("product_id", snapshot.ProductID).
		Str("date", snapshot.Date).
		Msg("Snapshot stored")
	return nil
}

// List returns all snapshots ordered by timestamp, oldest first.
func (r *SnapshotRepository) List() ([]Snapshot, error) {
	return r.query(`
		SELECT id, product_id, product_name, date, timestamp, inputs, metrics, notes
		FROM snapshots ORDER BY timestamp
	`)
}

// ListByProduct returns one product's snapshots ordered by timestamp.
func (r *SnapshotRepository) ListByProduct(productID string) ([]Snapshot, error) {
	return r.query(`
		SELECT id, product_id, product_name, date, timestamp, inputs, metrics, notes
		FROM snapshots WHERE product_id = ? ORDER BY timestamp
	`, productID)
}

// Delete removes a single snapshot by id.
func (r *SnapshotRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
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

func (r *SnapshotRepository) query(q string, args ...any) ([]Snapshot, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		var ts, inputsJSON, metricsJSON string

		if err := rows.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.Date, &ts, &inputsJSON, &metricsJSON, &s.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		s.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse snapshot timestamp: %w", err)
		}
		if err := json.Unmarshal([]byte(inputsJSON), &s.Inputs); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot inputs: %w", err)
		}
		if err := json.Unmarshal([]byte(metricsJSON), &s.Metrics); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot metrics: %w", err)
		}

		snapshots = append(snapshots, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}
