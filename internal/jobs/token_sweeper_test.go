package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type stubClearer struct {
	calls   int
	gotNow  time.Time
	cleared int64
	err     error
	hasDL   bool
}

func (s *stubClearer) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	s.calls++
	s.gotNow = now
	_, s.hasDL = ctx.Deadline()
	return s.cleared, s.err
}

func TestTokenSweeper_Run(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubClearer{cleared: 3}
	s := NewTokenSweeper(stub, zerolog.Nop())
	s.now = func() time.Time { return fixed }

	s.Run()

	if stub.calls != 1 {
		t.Fatalf("expected 1 call, got %d", stub.calls)
	}
	if !stub.gotNow.Equal(fixed) {
		t.Fatalf("expected now %v, got %v", fixed, stub.gotNow)
	}
	if !stub.hasDL {
		t.Fatal("expected a deadline on the sweep context")
	}
}

func TestTokenSweeper_RunError(t *testing.T) {
	stub := &stubClearer{err: errors.New("mongo down")}
	s := NewTokenSweeper(stub, zerolog.Nop())

	// Errors are logged, never panic.
	s.Run()

	if stub.calls != 1 {
		t.Fatalf("expected 1 call, got %d", stub.calls)
	}
}

func TestSchedule(t *testing.T) {
	s := NewTokenSweeper(&stubClearer{}, zerolog.Nop())

	c, err := Schedule("@every 15m", s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Stop()

	if got := len(c.Entries()); got != 1 {
		t.Fatalf("expected 1 entry, got %d", got)
	}

	if _, err := Schedule("not a schedule", s); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}
