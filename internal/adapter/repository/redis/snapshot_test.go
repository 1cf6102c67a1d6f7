package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewSnapshotStore(client, "test:snapshot")
}

func sampleSnapshot(t *testing.T) usecase.Snapshot {
	t.Helper()

	account, err := domain.NewAccount("1234567890", "John Doe", decimal.NewFromInt(1000))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return usecase.Snapshot{
		SchemaVersion: usecase.SnapshotVersion,
		SavedAt:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Accounts:      []domain.AccountState{account.State()},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	snap := sampleSnapshot(t)
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if loaded.SchemaVersion != snap.SchemaVersion {
		t.Errorf("schema version must round-trip, got %d", loaded.SchemaVersion)
	}
	if len(loaded.Accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(loaded.Accounts))
	}
	if !loaded.Accounts[0].Balance.Equal(snap.Accounts[0].Balance) {
		t.Errorf("balance must round-trip, got %s", loaded.Accounts[0].Balance)
	}
}

func TestLoadMissingKey(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background())
	if !errors.Is(err, usecase.ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestSaveOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleSnapshot(t)
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := sampleSnapshot(t)
	second.SavedAt = first.SavedAt.Add(time.Hour)
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loaded.SavedAt.Equal(second.SavedAt) {
		t.Errorf("expected the later snapshot, got %s", loaded.SavedAt)
	}
}
