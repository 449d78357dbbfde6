package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/userdir/internal/domain/user"
	"github.com/geocoder89/userdir/internal/mapper"
	"github.com/geocoder89/userdir/internal/observability"
	"github.com/geocoder89/userdir/internal/payload"
	"github.com/geocoder89/userdir/internal/queue/redisclient"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Source delivers raw change notifications.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) ([]byte, error)
	Requeue(ctx context.Context, msg []byte) error
}

type UsersStore interface {
	Update(ctx context.Context, id string, fn func(*user.User) error) (*user.User, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type Config struct {
	WorkerID    string
	PollTimeout time.Duration
}

type Worker struct {
	cfg    Config
	src    Source
	store  UsersStore
	mapper *mapper.Mapper
	log    *slog.Logger
	prom   *observability.Prom
	stats  *observability.WorkerStats

	readyMu sync.RWMutex
	ready   bool

	// overridable in tests
	sleep func(ctx context.Context, d time.Duration)
}

func New(cfg Config, src Source, store UsersStore, m *mapper.Mapper, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 2 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:    cfg,
		src:    src,
		store:  store,
		mapper: m,
		log:    log.With("worker_id", cfg.WorkerID),
		prom:   prom,
		stats:  observability.NewWorkerStats(),
		sleep:  sleepCtx,
	}
}

func (w *Worker) Stats() observability.WorkerStatsSnapshot {
	return w.stats.Snapshot()
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

// Run consumes notifications until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	failures := 0

	for {
		if ctx.Err() != nil {
			w.log.Info("worker received shutdown signal")
			return nil
		}

		_, err := w.ProcessOne(ctx)
		if err == nil {
			failures = 0
			continue
		}

		if ctx.Err() != nil {
			continue
		}

		delay := ExponentialBackoff(failures)
		failures++
		w.log.Warn("notification processing failed", "err", err, "retry_in", delay.String(), "failures", failures)
		w.sleep(ctx, delay)
	}
}

// ProcessOne pops and handles at most one notification.
// It reports whether a message was taken off the queue. An error means the
// message (if any) was put back and the caller should back off.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	msg, err := w.src.Pop(ctx, w.cfg.PollTimeout)
	if err != nil {
		if errors.Is(err, redisclient.ErrQueueEmpty) || ctx.Err() != nil {
			return false, nil
		}
		return false, err
	}

	w.stats.IncReceived()
	w.prom.IncNotificationsInFlight()
	defer w.prom.DecNotificationsInFlight()

	start := time.Now()

	ctx, span := observability.Tracer().Start(ctx, "notification.apply")
	defer span.End()

	n, err := payload.DecodeNotification(msg)
	if err != nil {
		// poison message: retrying will not help
		w.log.WarnContext(ctx, "dropping malformed notification", "err", err)
		w.finish("unknown", resultDropped, start)
		span.SetStatus(codes.Error, err.Error())
		return true, nil
	}

	span.SetAttributes(
		attribute.String("notification.type", n.Type),
		attribute.String("user.id", n.User.ID),
	)

	result, err := w.handle(ctx, n)
	if err != nil {
		if rqErr := w.requeue(ctx, msg); rqErr != nil {
			w.log.ErrorContext(ctx, "requeue failed, notification lost", "err", rqErr, "user_id", n.User.ID)
		}
		w.finish(n.Type, resultRetry, start)
		span.SetStatus(codes.Error, err.Error())
		return true, err
	}

	w.finish(n.Type, result, start)
	return true, nil
}

const requeueTimeout = 2 * time.Second

// requeue puts msg back even when ctx was cancelled by shutdown: the pop
// already removed it, so failing here loses the notification.
func (w *Worker) requeue(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), requeueTimeout)
	defer cancel()

	return w.src.Requeue(ctx, msg)
}

const (
	resultApplied = "applied"
	resultSkipped = "skipped"
	resultDropped = "dropped"
	resultRetry   = "retry"
)

func (w *Worker) handle(ctx context.Context, n payload.Notification) (string, error) {
	switch n.Type {
	case payload.NotificationUserUpdate:
		_, err := w.store.Update(ctx, n.User.ID, func(u *user.User) error {
			_, err := w.mapper.UpdateUser(u, n.User)
			return err
		})

		switch {
		case err == nil:
			w.log.DebugContext(ctx, "applied user update", "user_id", n.User.ID)
			return resultApplied, nil
		case errors.Is(err, user.ErrUserNotFound):
			w.log.InfoContext(ctx, "update for unknown user", "user_id", n.User.ID)
			return resultDropped, nil
		case errors.Is(err, user.ErrIdentityMismatch):
			w.log.WarnContext(ctx, "update rejected", "user_id", n.User.ID, "err", err)
			return resultDropped, nil
		default:
			return "", err
		}

	case payload.NotificationUserDelete:
		err := w.store.Delete(ctx, n.User.ID)
		switch {
		case err == nil:
			return resultApplied, nil
		case errors.Is(err, user.ErrUserNotFound):
			return resultSkipped, nil
		default:
			return "", err
		}

	default:
		w.log.DebugContext(ctx, "ignoring notification type", "type", n.Type)
		return resultSkipped, nil
	}
}

func (w *Worker) finish(typ, result string, start time.Time) {
	d := time.Since(start)

	switch result {
	case resultApplied:
		w.stats.IncApplied()
	case resultSkipped:
		w.stats.IncSkipped()
	case resultDropped:
		w.stats.IncDropped()
	case resultRetry:
		w.stats.IncRetried()
	}
	w.stats.ObserveDuration(d)
	w.prom.ObserveNotification(typ, result, d)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
