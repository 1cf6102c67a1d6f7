package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/iho/bankledger/internal/domain"
)

// ErrNoSnapshot is returned by SnapshotStore.Load when no snapshot has been
// written yet.
var ErrNoSnapshot = errors.New("no snapshot available")

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = 1

// Snapshot is the whole-state envelope written to the store on every
// mutation and reloaded at startup.
type Snapshot struct {
	SchemaVersion int                       `json:"schema_version"`
	SavedAt       time.Time                 `json:"saved_at"`
	Accounts      []domain.AccountState     `json:"accounts"`
	Transactions  []domain.TransactionState `json:"transactions,omitempty"`
}

// SnapshotStore persists and reloads the full ledger state under a fixed key.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
}

// Retrier retries an operation on transient failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}
