package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/davrell/codecity/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	if _, err := s.db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) SaveSnapshot(ctx context.Context, snap *models.Snapshot) error {
	messages, err := json.Marshal(snap.Messages)
	if err != nil {
		return fmt.Errorf("error encoding snapshot messages: %w", err)
	}

	query := `
		INSERT INTO snapshots (id, name, profile_id, messages, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = $2, profile_id = $3, messages = $4, created_at = $5`

	if _, err := s.db.ExecContext(ctx, query, snap.ID, snap.Name, snap.ProfileID, messages, snap.CreatedAt); err != nil {
		return fmt.Errorf("error saving snapshot: %w", err)
	}

	return nil
}

func (s *PostgresStorage) ListSnapshots(ctx context.Context) ([]*models.Snapshot, error) {
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
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	return snapshots, rows.Err()
}

func (s *PostgresStorage) GetSnapshot(ctx context.Context, id string) (*models.Snapshot, error) {
	query := `
		SELECT id, name, profile_id, messages, created_at
		FROM snapshots
		WHERE id = $1`

	row := s.db.QueryRowContext(ctx, query, id)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *PostgresStorage) DeleteSnapshot(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	var messages []byte

	if err := row.Scan(&snap.ID, &snap.Name, &snap.ProfileID, &messages, &snap.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("error scanning snapshot: %w", err)
	}

	if err := json.Unmarshal(messages, &snap.Messages); err != nil {
		return nil, fmt.Errorf("error decoding snapshot messages: %w", err)
	}

	return snap, nil
}
