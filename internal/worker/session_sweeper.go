package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"planup/internal/logger"
)

const (
	DefaultSweepInterval = 5 * time.Minute
	DefaultIdleTTL       = time.Hour
)

type SessionStore interface {
	Sweep(idleBefore time.Time) int
}

// Pruner drops expired state kept outside the session store, such as
// in-memory rate limit windows.
type Pruner interface {
	Prune() int
}

type SessionSweeper struct {
	sessions SessionStore
	pruners  []Pruner
	interval time.Duration
	idleTTL  time.Duration
	now      func() time.Time
}

func NewSessionSweeper(sessions SessionStore, interval, idleTTL time.Duration, pruners ...Pruner) *SessionSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &SessionSweeper{
		sessions: sessions,
		pruners:  pruners,
		interval: interval,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

func (w *SessionSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Очистка сессий останавливается")
			return
		}
	}
}

// Check runs one sweep and returns how many sessions were evicted.
func (w *SessionSweeper) Check(ctx context.Context) int {
	start := w.now()

	evicted := w.sessions.Sweep(start.Add(-w.idleTTL))

	pruned := 0
	for _, p := range w.pruners {
		pruned += p.Prune()
	}

	logger.Info("Worker: Завершение очистки сессий",
		zap.Duration("ms", time.Since(start)),
		zap.Int("evicted", evicted),
		zap.Int("pruned", pruned),
	)
	return evicted
}
