package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	apperrors "github.com/ozodf/news-verifier/internal/errors"
	"github.com/ozodf/news-verifier/internal/models"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// PostgresStore is an optional remote tier that appends feedback rows
// to a table instead of (or alongside) the spreadsheet.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(config DatabaseConfig) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return store, nil
}

func (s *PostgresStore) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS feedback (
			id BIGSERIAL PRIMARY KEY,
			clean_text TEXT NOT NULL,
			label SMALLINT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			session_id TEXT NOT NULL
		)`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("error executing schema: %v", err)
	}
	return nil
}

func (s *PostgresStore) Name() string { return "postgres" }
func (s *PostgresStore) Remote() bool { return true }

func (s *PostgresStore) Append(ctx context.Context, rec models.FeedbackRecord) error {
	query := `
		INSERT INTO feedback (clean_text, label, recorded_at, session_id)
		VALUES ($1, $2, $3, $4)`

	_, err := s.db.ExecContext(ctx, query, rec.CleanText, int(rec.Label), rec.Timestamp, rec.SessionID)
	if err != nil {
		return apperrors.NewStoreUnavailable(s.Name(), err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count)
	if err != nil {
		return 0, apperrors.NewStoreUnavailable(s.Name(), err)
	}
	return count, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
