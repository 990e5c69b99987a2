package execution

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	defer goleak.VerifyTestMain(m)
	os.Exit(m.Run())
}

type fakePurger struct {
	calls int
	at    time.Time
	n     int64
	err   error
}

func (f *fakePurger) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	f.calls++
	f.at = now
	return f.n, f.err
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// ----------------------------------------------------------------------------
// 1. Work purges with the worker clock
// ----------------------------------------------------------------------------

func TestPurgeSessionsWorker_Work(t *testing.T) {
	store := &fakePurger{n: 3}
	w := NewPurgeSessionsWorker(store, quietLogger())
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return fixed }

	if err := w.Work(context.Background(), &river.Job[PurgeExpiredSessionsArgs]{}); err != nil {
		t.Fatalf("Work: %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("calls = %d, want 1", store.calls)
	}
	if !store.at.Equal(fixed) {
		t.Fatalf("purged at %v, want %v", store.at, fixed)
	}
}

// ----------------------------------------------------------------------------
// 2. Store errors are returned so River retries
// ----------------------------------------------------------------------------

func TestPurgeSessionsWorker_WorkError(t *testing.T) {
	boom := errors.New("db down")
	w := NewPurgeSessionsWorker(&fakePurger{err: boom}, quietLogger())

	err := w.Work(context.Background(), &river.Job[PurgeExpiredSessionsArgs]{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

// ----------------------------------------------------------------------------
// 3. Registration and schedule
// ----------------------------------------------------------------------------

func TestRegisterAndPeriodicJobs(t *testing.T) {
	workers := river.NewWorkers()
	Register(workers, &fakePurger{}, quietLogger())

	if err := river.AddWorkerSafely(workers, NewPurgeSessionsWorker(&fakePurger{}, nil)); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	if got := len(PeriodicJobs(0)); got != 1 {
		t.Fatalf("periodic jobs = %d, want 1", got)
	}
	if kind := (PurgeExpiredSessionsArgs{}).Kind(); kind != "purge_expired_sessions" {
		t.Fatalf("kind = %q", kind)
	}
	if got := NewPurgeSessionsWorker(&fakePurger{}, nil).Timeout(nil); got != purgeTimeout {
		t.Fatalf("timeout = %v", got)
	}
}
