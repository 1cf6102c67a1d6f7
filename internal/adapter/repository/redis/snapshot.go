// Package redis implements the snapshot store on a Redis key-value server.
// The whole ledger state lives under one fixed key, fully overwritten on
// every mutation.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/bankledger/internal/usecase"
)

// SnapshotStore persists the ledger snapshot in Redis.
type SnapshotStore struct {
	client *redis.Client
	key    string
}

// NewSnapshotStore creates a new SnapshotStore writing under key.
func NewSnapshotStore(client *redis.Client, key string) *SnapshotStore {
	return &SnapshotStore{
		client: client,
		key:    key,
	}
}

// Save overwrites the snapshot key with the encoded state. No TTL: the
// snapshot is the system of record between runs.
func (s *SnapshotStore) Save(ctx context.Context, snap usecase.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	return s.client.Set(ctx, s.key, data, 0).Err()
}

// Load reads and decodes the snapshot. Returns usecase.ErrNoSnapshot when
// the key does not exist yet.
func (s *SnapshotStore) Load(ctx context.Context) (usecase.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return usecase.Snapshot{}, usecase.ErrNoSnapshot
		}
		return usecase.Snapshot{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap usecase.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return usecase.Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return snap, nil
}
