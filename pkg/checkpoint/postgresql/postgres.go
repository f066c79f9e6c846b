// Package postgresql provides a PostgreSQL checkpoint store.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq" // postgres driver
	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
	"github.com/testsmith-ai/testsmith/pkg/checkpoint/sqlbase"
	"github.com/testsmith-ai/testsmith/pkg/models"
)

// Store implements checkpoint.Store backed by PostgreSQL.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore connects to PostgreSQL and runs schema migrations.
func NewStore(ctx context.Context, logger *slog.Logger, databaseURL string) (*Store, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: database, logger: logger}, nil
}

func (s *Store) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if cp.SessionID == "" {
		return checkpoint.NewSessionError("Save", cp.SessionID, checkpoint.ErrInvalidSessionID)
	}

	stateJSON, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state for session %s: %w", cp.SessionID, err)
	}

	var suspensionJSON any

	if cp.Suspension != nil {
		data, err := json.Marshal(cp.Suspension)
		if err != nil {
			return fmt.Errorf("failed to marshal suspension for session %s: %w", cp.SessionID, err)
		}

		suspensionJSON = data
	}

	savedAt := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, state, suspension, saved_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO UPDATE SET
			state = EXCLUDED.state,
			suspension = EXCLUDED.suspension,
			saved_at = EXCLUDED.saved_at
	`, cp.SessionID, stateJSON, suspensionJSON, savedAt)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", cp.SessionID, err)
	}

	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (*checkpoint.Checkpoint, error) {
	var (
		stateJSON      []byte
		suspensionJSON []byte
		savedAt        time.Time
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT state, suspension, saved_at FROM sessions WHERE session_id = $1
	`, sessionID).Scan(&stateJSON, &suspensionJSON, &savedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, checkpoint.NewSessionError("Load", sessionID, checkpoint.ErrSessionNotFound)
		}

		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	cp := &checkpoint.Checkpoint{
		SessionID: sessionID,
		SavedAt:   savedAt,
	}

	err = json.Unmarshal(stateJSON, &cp.State)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal state for session %s: %w", sessionID, err)
	}

	if len(suspensionJSON) > 0 {
		var suspension models.Suspension

		err = json.Unmarshal(suspensionJSON, &suspension)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal suspension for session %s: %w", sessionID, err)
		}

		cp.Suspension = &suspension
	}

	return cp, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE session_id = $1", sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result for session %s: %w", sessionID, err)
	}

	if affected == 0 {
		return checkpoint.NewSessionError("Delete", sessionID, checkpoint.ErrSessionNotFound)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT session_id FROM sessions ORDER BY saved_at")
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string

		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return ids, nil
}

func (s *Store) CleanupExpired(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE saved_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired sessions: %w", err)
	}

	return int(affected), nil
}

// HealthCheck verifies the database connection is healthy.
func (s *Store) HealthCheck(ctx context.Context) error {
	err := s.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *Store) Close(_ context.Context) error {
	if s.db != nil {
		err := s.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
