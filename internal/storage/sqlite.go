package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/davrell/codecity/internal/models"
)

// SQLiteStorage keeps snapshots in a local database file, the closest analog
// to the browser-local persistence the console originally relied on.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to sqlite database: %w", err)
	}

	storage := &SQLiteStorage{db: db}

	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return nil, fmt.Errorf("error reading migrations file: %w", err)
	}
	if _, err := db.Exec(string(migrationSQL)); err != nil {
		return nil, fmt.Errorf("error initializing sqlite schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	messages, err := json.Marshal(snap.Messages)
	if err != nil {
		return fmt.Errorf("error encoding snapshot messages: %w", err)
	}

	query := `
		INSERT INTO snapshots (id, name, profile_id, messages, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name, profile_id = excluded.profile_id,
		    messages = excluded.messages, created_at = excluded.created_at`

	if _, err := s.db.ExecContext(ctx, query, snap.ID, snap.Name, snap.ProfileID, messages, snap.CreatedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("error saving snapshot: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) ListSnapshots(ctx context.Context) ([]*models.Snapshot, error) {
	query := `
		SELECT id, name, profile_id, messages, created_at
		FROM snapshots
		ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snap, err := scanSQLiteSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

func (s *SQLiteStorage) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	query := `
		SELECT id, name, profile_id, messages, created_at
		FROM snapshots
		WHERE id = ?`

	row := s.db.QueryRowContext(ctx, query, id)
	snap, err := scanSQLiteSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStorage) DeleteSnapshot(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// sqlite stores timestamps as text, so scanning differs from postgres.
func scanSQLiteSnapshot(row rowScanner) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	var messages []byte
	var createdAt string

	if err := row.Scan(&snap.ID, &snap.Name, &snap.ProfileID, &messages, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning snapshot: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("error parsing snapshot timestamp: %w", err)
	}
	snap.CreatedAt = ts

	if err := json.Unmarshal(messages, &snap.Messages); err != nil {
		return nil, fmt.Errorf("error decoding snapshot messages: %w", err)
	}

	return snap, nil
}
