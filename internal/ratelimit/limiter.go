// Package ratelimit counts requests per client over a one-minute window.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

const Window = time.Minute

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

type clientInfo struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window counter kept in process memory.
type MemoryLimiter struct {
	rpm     int
	window  time.Duration
	now     func() time.Time
	mtx     sync.Mutex
	clients map[string]*clientInfo
}

func NewMemoryLimiter(rpm int) *MemoryLimiter {
	return &MemoryLimiter{
		rpm:     rpm,
		window:  Window,
		now:     time.Now,
		clients: make(map[string]*clientInfo),
	}
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	info, exists := l.clients[key]
	switch {
	case !exists:
		info = &clientInfo{count: 1, resetAt: now.Add(l.window)}
		l.clients[key] = info
	case now.After(info.resetAt):
		info.count = 1
		info.resetAt = now.Add(l.window)
	case info.count >= l.rpm:
		return Result{
			Allowed:    false,
			Limit:      l.rpm,
			Remaining:  0,
			ResetAt:    info.resetAt,
			RetryAfter: info.resetAt.Sub(now),
		}, nil
	default:
		info.count++
	}

	return Result{
		Allowed:   true,
		Limit:     l.rpm,
		Remaining: max(l.rpm-info.count, 0),
		ResetAt:   info.resetAt,
	}, nil
}

// Prune drops counters whose window has ended.
func (l *MemoryLimiter) Prune() int {
	now := l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	removed := 0
	for key, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, key)
			removed++
		}
	}
	return removed
}
