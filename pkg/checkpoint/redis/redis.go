// Package redis provides a Redis-backed checkpoint store. Snapshots live in
// plain keys; a sorted set indexed by save time supports listing and expiry
// sweeps without scanning the keyspace.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testsmith-ai/testsmith/pkg/checkpoint"
)

const (
	keyPrefix = "testsmith:session:"
	indexKey  = "testsmith:sessions"
)

// Store implements checkpoint.Store using Redis.
type Store struct {
	client *goredis.Client
}

// NewStore creates a Redis store from a redis:// URL and verifies the
// connection.
func NewStore(ctx context.Context, redisURL string) (*Store, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewStoreWithClient wraps an existing client. Used by tests.
func NewStoreWithClient(client *goredis.Client) *Store {
	return &Store{client: client}
}

func sessionKey(sessionID string) string {
	return keyPrefix + sessionID
}

func (s *Store) Save(ctx context.Context, cp *checkpoint.Checkpoint) error {
	if cp.SessionID == "" {
		return checkpoint.NewSessionError("Save", cp.SessionID, checkpoint.ErrInvalidSessionID)
	}

	stored := *cp
	stored.SavedAt = time.Now().UTC()

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to marshal session %s: %w", cp.SessionID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(cp.SessionID), data, 0)
	pipe.ZAdd(ctx, indexKey, goredis.Z{
		Score:  float64(stored.SavedAt.Unix()),
		Member: cp.SessionID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session %s: %w", cp.SessionID, err)
	}

	return nil
}

func (s *Store) Load(ctx context.Context, sessionID string) (*checkpoint.Checkpoint, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, checkpoint.NewSessionError("Load", sessionID, checkpoint.ErrSessionNotFound)
		}

		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}

	var cp checkpoint.Checkpoint

	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", sessionID, err)
	}

	return &cp, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	removed, err := s.client.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}

	if removed == 0 {
		return checkpoint.NewSessionError("Delete", sessionID, checkpoint.ErrSessionNotFound)
	}

	if err := s.client.ZRem(ctx, indexKey, sessionID).Err(); err != nil {
		return fmt.Errorf("failed to unindex session %s: %w", sessionID, err)
	}

	return nil
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return ids, nil
}

func (s *Store) CleanupExpired(ctx context.Context, cutoff time.Time) (int, error) {
	expired, err := s.client.ZRangeByScore(ctx, indexKey, &goredis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", cutoff.Unix()),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to query expired sessions: %w", err)
	}

	removed := 0

	for _, id := range expired {
		if err := s.Delete(ctx, id); err == nil {
			removed++
		}
	}

	return removed, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	return nil
}

func (s *Store) Close(_ context.Context) error {
	return s.client.Close()
}
