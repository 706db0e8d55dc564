package inmemory_test

import (
	"context"
	"fmt"
	"planup/internal/models/user"
	"planup/internal/repository"
	"planup/internal/repository/user/inmemory"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(email string) *user.User {
	return &user.User{
		ID:           uuid.NewString(),
		Username:     "planner",
		Email:        email,
		PasswordHash: "hash",
	}
}

// TestUserStorage_HealthCheck тестирует проверку здоровья
func TestUserStorage_HealthCheck(t *testing.T) {
	storage := inmemory.NewUserStorage()
	assert.NoError(t, storage.HealthCheck(context.Background()))
}

// TestUserStorage_Create тестирует создание пользователя
func TestUserStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	u := newUser("user@example.com")
	require.NoError(t, storage.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	byID, err := storage.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)

	byEmail, err := storage.GetByEmail(ctx, "USER@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
}

// TestUserStorage_DuplicateEmail тестирует уникальность email
func TestUserStorage_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	require.NoError(t, storage.Create(ctx, newUser("user@example.com")))
	err := storage.Create(ctx, newUser("User@Example.com"))
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

// TestUserStorage_NotFound тестирует отсутствующие записи
func TestUserStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	_, err := storage.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = storage.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestUserStorage_ReturnsCopies проверяет, что хранилище не отдаёт внутренние указатели
func TestUserStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	u := newUser("user@example.com")
	require.NoError(t, storage.Create(ctx, u))
	u.Username = "changed"

	got, err := storage.GetByID(ctx, u.ID)
	require.NoError(t, err)
	got.Username = "changed again"

	fresh, err := storage.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "planner", fresh.Username)
}

// TestUserStorage_ConcurrentCreate тестирует конкурентную регистрацию
func TestUserStorage_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewUserStorage()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- storage.Create(ctx, newUser(fmt.Sprintf("user%d@example.com", i%10)))
		}(i)
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, repository.ErrAlreadyExists)
		}
	}
	assert.Equal(t, 10, created)
}
