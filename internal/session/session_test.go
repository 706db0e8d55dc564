package session_test

import (
	"context"
	"errors"
	"planup/internal/models/onboarding"
	"planup/internal/models/option"
	"planup/internal/models/schedule"
	"planup/internal/models/task"
	"planup/internal/session"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oneEntry(name string) schedule.Schedule {
	return schedule.New(schedule.Entry{ID: name, TaskName: name})
}

func TestSession_Defaults(t *testing.T) {
	sess := session.NewStore().Start("user-1")

	assert.Equal(t, "user-1", sess.UserID())
	_, ok := sess.Answers()
	assert.False(t, ok)
	assert.Equal(t, 0, sess.Tasks().Len())
	assert.Len(t, sess.Options().All(), len(option.Keys))
	_, ok = sess.Schedule()
	assert.False(t, ok)
	assert.False(t, sess.Generating())
}

func TestSession_GenerationCommit(t *testing.T) {
	sess := session.NewStore().Start("user-1")

	token, ctx, err := sess.BeginGeneration(context.Background())
	require.NoError(t, err)
	assert.True(t, sess.Generating())

	require.NoError(t, sess.CommitSchedule(token, oneEntry("A")))

	got, ok := sess.Schedule()
	require.True(t, ok)
	assert.Equal(t, 1, got.Len())
	assert.False(t, sess.Generating())
	assert.Error(t, ctx.Err(), "контекст освобождается после коммита")
}

func TestSession_SupersededGenerationIsStale(t *testing.T) {
	sess := session.NewStore().Start("user-1")

	first, firstCtx, err := sess.BeginGeneration(context.Background())
	require.NoError(t, err)
	second, _, err := sess.BeginGeneration(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, firstCtx.Err(), context.Canceled)
	assert.ErrorIs(t, sess.CommitSchedule(first, oneEntry("old")), session.ErrStaleGeneration)
	require.NoError(t, sess.CommitSchedule(second, oneEntry("new")))

	got, _ := sess.Schedule()
	assert.Equal(t, "new", got.Entries()[0].TaskName)
}

func TestSession_CancelledGenerationIsStale(t *testing.T) {
	sess := session.NewStore().Start("user-1")

	token, ctx, err := sess.BeginGeneration(context.Background())
	require.NoError(t, err)

	assert.True(t, sess.CancelGeneration())
	assert.False(t, sess.CancelGeneration())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.ErrorIs(t, sess.CommitSchedule(token, oneEntry("late")), session.ErrStaleGeneration)

	_, ok := sess.Schedule()
	assert.False(t, ok)
}

func TestSession_EndedRejectsCommit(t *testing.T) {
	store := session.NewStore()
	sess := store.Start("user-1")

	token, _, err := sess.BeginGeneration(context.Background())
	require.NoError(t, err)
	assert.True(t, store.End("user-1"))

	assert.ErrorIs(t, sess.CommitSchedule(token, oneEntry("late")), session.ErrStaleGeneration)
	_, _, err = sess.BeginGeneration(context.Background())
	assert.ErrorIs(t, err, session.ErrEnded)
}

func TestSession_NewOnboardingDiscardsSchedule(t *testing.T) {
	sess := session.NewStore().Start("user-1")

	token, _, err := sess.BeginGeneration(context.Background())
	require.NoError(t, err)
	require.NoError(t, sess.CommitSchedule(token, oneEntry("A")))

	pending, _, err := sess.BeginGeneration(context.Background())
	require.NoError(t, err)

	require.NoError(t, sess.SetAnswers(onboarding.Answers{Technique: onboarding.TechniquePomodoro}))

	_, ok := sess.Schedule()
	assert.False(t, ok)
	assert.ErrorIs(t, sess.CommitSchedule(pending, oneEntry("B")), session.ErrStaleGeneration)
}

func TestSession_AbortGeneration(t *testing.T) {
	sess := session.NewStore().Start("user-1")

	token, _, err := sess.BeginGeneration(context.Background())
	require.NoError(t, err)

	assert.True(t, sess.AbortGeneration(token))
	assert.False(t, sess.AbortGeneration(token))
	assert.False(t, sess.Generating())
}

func TestSession_UpdateTasksKeepsStateOnError(t *testing.T) {
	sess := session.NewStore().Start("user-1")

	_, err := sess.UpdateTasks(func(s task.Store) (task.Store, error) {
		return s.Upsert(task.New("1", task.WithName("A"))), nil
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = sess.UpdateTasks(func(s task.Store) (task.Store, error) {
		return s.Upsert(task.New("2", task.WithName("B"))), boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, sess.Tasks().Len())
}

func TestSession_UpdateScheduleWithoutSchedule(t *testing.T) {
	sess := session.NewStore().Start("user-1")

	_, err := sess.UpdateSchedule(func(s schedule.Schedule) (schedule.Schedule, error) {
		return s, nil
	})
	assert.ErrorIs(t, err, session.ErrNoSchedule)
}

func TestSession_ConcurrentCommitsOnlyOneWins(t *testing.T) {
	sess := session.NewStore().Start("user-1")

	const n = 20
	tokens := make([]uint64, n)
	for i := range tokens {
		var err error
		tokens[i], _, err = sess.BeginGeneration(context.Background())
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	committed := 0
	for _, tok := range tokens {
		wg.Add(1)
		go func(tok uint64) {
			defer wg.Done()
			if sess.CommitSchedule(tok, oneEntry("x")) == nil {
				mu.Lock()
				committed++
				mu.Unlock()
			}
		}(tok)
	}
	wg.Wait()

	assert.Equal(t, 1, committed)
}

func TestStore_StartReplacesAndEndsOld(t *testing.T) {
	store := session.NewStore()
	old := store.Start("user-1")
	token, _, err := old.BeginGeneration(context.Background())
	require.NoError(t, err)

	fresh := store.Start("user-1")

	assert.NotSame(t, old, fresh)
	assert.ErrorIs(t, old.CommitSchedule(token, oneEntry("x")), session.ErrStaleGeneration)
	got, ok := store.Get("user-1")
	require.True(t, ok)
	assert.Same(t, fresh, got)
}

func TestStore_GetOrStart(t *testing.T) {
	store := session.NewStore()

	first := store.GetOrStart("user-1")
	second := store.GetOrStart("user-1")

	assert.Same(t, first, second)
	assert.Equal(t, 1, store.Len())
}

func TestStore_Sweep(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := session.NewStore(session.WithClock(clock))

	store.Start("idle")
	busy := store.Start("busy")
	_, _, err := busy.BeginGeneration(context.Background())
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	store.Start("active")

	removed := store.Sweep(now.Add(-time.Hour))

	assert.Equal(t, 1, removed)
	_, ok := store.Get("idle")
	assert.False(t, ok)
	_, ok = store.Get("busy")
	assert.True(t, ok)
	_, ok = store.Get("active")
	assert.True(t, ok)
}
