package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestRetrySucceedsFirstTry(t *testing.T) {
	r := NewRetrier(zerolog.Nop())

	calls := 0
	err := r.Retry(context.Background(), func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestRetryRecoversFromTransientErrors(t *testing.T) {
	r := NewRetrier(zerolog.Nop())

	calls := 0
	err := r.Retry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	r := NewRetrier(zerolog.Nop())

	calls := 0
	wantErr := errors.New("persistent failure")
	err := r.Retry(context.Background(), func() error {
		calls++
		return wantErr
	})

	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the operation error, got %v", err)
	}
	// Initial attempt plus maxRetries, then the next failure is permanent.
	if calls != 4 {
		t.Errorf("expected 4 calls, got %d", calls)
	}
}

func TestRetryStopsOnContextCancellation(t *testing.T) {
	r := NewRetrier(zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := r.Retry(ctx, func() error {
		calls++
		return ctx.Err()
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("cancellation must not be retried, got %d calls", calls)
	}
}
