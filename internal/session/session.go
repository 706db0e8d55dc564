// Package session keeps the per-user planning state between requests:
// onboarding answers, tasks, options, the current schedule and the
// generation in flight.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"planup/internal/models/onboarding"
	"planup/internal/models/option"
	"planup/internal/models/schedule"
	"planup/internal/models/task"
)

var (
	ErrStaleGeneration = errors.New("генерация устарела")
	ErrNoSchedule      = errors.New("расписание ещё не сгенерировано")
	ErrNoAnswers       = errors.New("онбординг не пройден")
	ErrEnded           = errors.New("сессия завершена")
)

type Session struct {
	userID string
	now    func() time.Time

	mu         sync.Mutex
	answers    onboarding.Answers
	hasAnswers bool
	tasks      task.Store
	options    option.Set
	sched      schedule.Schedule
	hasSched   bool
	lastSeen   time.Time
	ended      bool

	genToken  uint64
	genCancel context.CancelFunc
}

func newSession(userID string, now func() time.Time) *Session {
	return &Session{
		userID:   userID,
		now:      now,
		tasks:    task.NewStore(),
		options:  option.Default(),
		lastSeen: now(),
	}
}

func (s *Session) UserID() string {
	return s.userID
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastSeen = s.now()
	s.mu.Unlock()
}

func (s *Session) Answers() (onboarding.Answers, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers, s.hasAnswers
}

// SetAnswers restarts onboarding: the schedule is discarded and any pending
// generation becomes stale.
func (s *Session) SetAnswers(a onboarding.Answers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return ErrEnded
	}
	s.answers = a
	s.hasAnswers = true
	s.sched = schedule.Schedule{}
	s.hasSched = false
	s.cancelLocked()
	return nil
}

func (s *Session) Tasks() task.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks
}

// UpdateTasks replaces the task store with fn's result. On error the store
// is left as it was.
func (s *Session) UpdateTasks(fn func(task.Store) (task.Store, error)) (task.Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return s.tasks, ErrEnded
	}
	next, err := fn(s.tasks)
	if err != nil {
		return s.tasks, err
	}
	s.tasks = next
	return next, nil
}

func (s *Session) Options() option.Set {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.options
}

func (s *Session) UpdateOptions(fn func(option.Set) (option.Set, error)) (option.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return s.options, ErrEnded
	}
	next, err := fn(s.options)
	if err != nil {
		return s.options, err
	}
	s.options = next
	return next, nil
}

// Snapshot is a consistent read of everything a prompt is built from.
type Snapshot struct {
	Answers    onboarding.Answers
	HasAnswers bool
	Tasks      task.Store
	Options    option.Set
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Answers: s.answers, HasAnswers: s.hasAnswers, Tasks: s.tasks, Options: s.options}
}

func (s *Session) Schedule() (schedule.Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched, s.hasSched
}

// UpdateSchedule applies a reducer to the current schedule.
func (s *Session) UpdateSchedule(fn func(schedule.Schedule) (schedule.Schedule, error)) (schedule.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSched {
		return schedule.Schedule{}, ErrNoSchedule
	}
	next, err := fn(s.sched)
	if err != nil {
		return s.sched, err
	}
	s.sched = next
	return next, nil
}

func (s *Session) DiscardSchedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched = schedule.Schedule{}
	s.hasSched = false
}

// BeginGeneration starts a new generation and returns its token together
// with a context that is cancelled when the generation is superseded,
// cancelled or the session ends. An earlier generation still in flight is
// cancelled.
func (s *Session) BeginGeneration(parent context.Context) (uint64, context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return 0, nil, ErrEnded
	}
	s.cancelLocked()

	ctx, cancel := context.WithCancel(parent)
	s.genToken++
	s.genCancel = cancel
	return s.genToken, ctx, nil
}

// CommitSchedule stores sched if token still names the current generation.
func (s *Session) CommitSchedule(token uint64, sched schedule.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(token) {
		return ErrStaleGeneration
	}
	s.genCancel()
	s.genCancel = nil
	s.sched = sched
	s.hasSched = true
	return nil
}

// AbortGeneration releases a failed generation. It reports whether token was
// still current.
func (s *Session) AbortGeneration(token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(token) {
		return false
	}
	s.cancelLocked()
	return true
}

// CancelGeneration drops the generation in flight, if any.
func (s *Session) CancelGeneration() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked()
}

func (s *Session) Generating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genCancel != nil
}

// End invalidates the session. Later commits are rejected as stale.
func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = true
	s.cancelLocked()
}

func (s *Session) currentLocked(token uint64) bool {
	return !s.ended && s.genCancel != nil && token == s.genToken
}

func (s *Session) cancelLocked() bool {
	if s.genCancel == nil {
		return false
	}
	s.genCancel()
	s.genCancel = nil
	return true
}
