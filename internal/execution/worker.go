package execution

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/riverqueue/river"
)

// DefaultPurgeInterval is how often expired sessions are swept.
const DefaultPurgeInterval = time.Hour

const purgeTimeout = 30 * time.Second

type PurgeExpiredSessionsArgs struct{}

func (PurgeExpiredSessionsArgs) Kind() string { return "purge_expired_sessions" }

// SessionPurger is the slice of the auth repository the worker needs.
type SessionPurger interface {
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type PurgeSessionsWorker struct {
	river.WorkerDefaults[PurgeExpiredSessionsArgs]
	store SessionPurger
	log   *slog.Logger
	now   func() time.Time
}

func NewPurgeSessionsWorker(store SessionPurger, log *slog.Logger) *PurgeSessionsWorker {
	if log == nil {
		log = slog.Default()
	}
	return &PurgeSessionsWorker{store: store, log: log, now: time.Now}
}

func (w *PurgeSessionsWorker) Timeout(*river.Job[PurgeExpiredSessionsArgs]) time.Duration {
	return purgeTimeout
}

func (w *PurgeSessionsWorker) Work(ctx context.Context, _ *river.Job[PurgeExpiredSessionsArgs]) error {
	n, err := w.store.DeleteExpiredSessions(ctx, w.now().UTC())
	if err != nil {
		return fmt.Errorf("purge expired sessions: %w", err)
	}
	if n > 0 {
		w.log.Info("purged expired sessions", "count", n)
	}
	return nil
}

// Register adds every maintenance worker to workers.
func Register(workers *river.Workers, sessions SessionPurger, log *slog.Logger) {
	river.AddWorker(workers, NewPurgeSessionsWorker(sessions, log))
}

// PeriodicJobs schedules the session purge every interval, starting at boot.
func PeriodicJobs(interval time.Duration) []*river.PeriodicJob {
	if interval <= 0 {
		interval = DefaultPurgeInterval
	}
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(interval),
			func() (river.JobArgs, *river.InsertOpts) {
				return PurgeExpiredSessionsArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}
}
