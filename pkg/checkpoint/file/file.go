// Package file provides a file-based checkpoint store. Each session is one
// JSON file under <root>/sessions.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
)

// Store implements checkpoint.Store using the file system.
type Store struct {
	root string
}

// NewStore creates a file store rooted at the given directory. A file://
// prefix is stripped so the store can be constructed directly from a
// storage URL.
func NewStore(root string) *Store {
	return &Store{root: strings.Replace(root, "file://", "", 1)}
}

// validateSessionID rejects identifiers that would escape the sessions
// directory when used as a file name.
func validateSessionID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return checkpoint.ErrInvalidSessionID
	}

	return nil
}

func (s *Store) sessionsDir() string {
	return path.Join(s.root, "sessions")
}

func (s *Store) sessionPath(sessionID string) string {
	return filepath.Clean(path.Join(s.sessionsDir(), sessionID+".json"))
}

func (s *Store) Save(_ context.Context, cp *checkpoint.Checkpoint) error {
	if err := validateSessionID(cp.SessionID); err != nil {
		return checkpoint.NewSessionError("Save", cp.SessionID, err)
	}

	err := os.MkdirAll(s.sessionsDir(), 0750)
	if err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	stored := *cp
	stored.SavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(&stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", cp.SessionID, err)
	}

	err = os.WriteFile(s.sessionPath(cp.SessionID), data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write session %s: %w", cp.SessionID, err)
	}

	return nil
}

func (s *Store) Load(_ context.Context, sessionID string) (*checkpoint.Checkpoint, error) {
	if err := validateSessionID(sessionID); err != nil {
		return nil, checkpoint.NewSessionError("Load", sessionID, err)
	}

	body, err := os.ReadFile(s.sessionPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, checkpoint.NewSessionError("Load", sessionID, checkpoint.ErrSessionNotFound)
		}

		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}

	var cp checkpoint.Checkpoint

	err = json.Unmarshal(body, &cp)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}

	return &cp, nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	if err := validateSessionID(sessionID); err != nil {
		return checkpoint.NewSessionError("Delete", sessionID, err)
	}

	err := os.Remove(s.sessionPath(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return checkpoint.NewSessionError("Delete", sessionID, checkpoint.ErrSessionNotFound)
		}

		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	return nil
}

func (s *Store) List(_ context.Context) ([]string, error) {
	entries, err := fs.Glob(os.DirFS(s.sessionsDir()), "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list session files: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, strings.TrimSuffix(entry, ".json"))
	}

	return ids, nil
}

func (s *Store) CleanupExpired(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0

	for _, id := range ids {
		cp, err := s.Load(ctx, id)
		if err != nil {
			continue
		}

		if cp.SavedAt.Before(cutoff) {
			if err := s.Delete(ctx, id); err == nil {
				removed++
			}
		}
	}

	return removed, nil
}

// HealthCheck verifies the root directory exists.
func (s *Store) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. For file storage there is nothing to
// clean up.
func (s *Store) Close(_ context.Context) error {
	return nil
}
