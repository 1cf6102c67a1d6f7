// Package file implements the snapshot store on the local filesystem. Writes
// are atomic: the snapshot lands in a temp file that is renamed over the
// previous one, so a crash mid-write never corrupts the last good state.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/iho/bankledger/internal/usecase"
)

// SnapshotStore persists the ledger snapshot as a JSON file.
type SnapshotStore struct {
	path string
}

// NewSnapshotStore creates a new SnapshotStore writing to path.
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

// Save writes the snapshot atomically.
func (s *SnapshotStore) Save(_ context.Context, snap usecase.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return os.Rename(tmp, s.path)
}

// Load reads and decodes the snapshot. Returns usecase.ErrNoSnapshot when
// the file does not exist yet.
func (s *SnapshotStore) Load(_ context.Context) (usecase.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
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
