// Package memory provides an in-memory checkpoint store for tests and
// single-process development runs. Nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
)

// Store implements checkpoint.Store backed by a mutex-guarded map.
type Store struct {
	mu          sync.RWMutex
	checkpoints map[string]*checkpoint.Checkpoint
}

func NewStore() *Store {
	return &Store{
		checkpoints: make(map[string]*checkpoint.Checkpoint),
	}
}

func (s *Store) Save(_ context.Context, cp *checkpoint.Checkpoint) error {
	if cp.SessionID == "" {
		return checkpoint.NewSessionError("Save", cp.SessionID, checkpoint.ErrInvalidSessionID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cp
	stored.SavedAt = time.Now().UTC()
	s.checkpoints[cp.SessionID] = &stored

	return nil
}

func (s *Store) Load(_ context.Context, sessionID string) (*checkpoint.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cp, ok := s.checkpoints[sessionID]
	if !ok {
		return nil, checkpoint.NewSessionError("Load", sessionID, checkpoint.ErrSessionNotFound)
	}

	copied := *cp

	return &copied, nil
}

func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.checkpoints[sessionID]; !ok {
		return checkpoint.NewSessionError("Delete", sessionID, checkpoint.ErrSessionNotFound)
	}

	delete(s.checkpoints, sessionID)

	return nil
}

func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.checkpoints))
	for id := range s.checkpoints {
		ids = append(ids, id)
	}

	return ids, nil
}

func (s *Store) CleanupExpired(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0

	for id, cp := range s.checkpoints {
		if cp.SavedAt.Before(cutoff) {
			delete(s.checkpoints, id)
			removed++
		}
	}

	return removed, nil
}

func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

func (s *Store) Close(_ context.Context) error {
	return nil
}
