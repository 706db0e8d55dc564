package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"

	"planup/internal/logger"
	"planup/internal/models/user"
	repo "planup/internal/repository"
)

type UserStorage struct {
	byID    map[string]*user.User
	byEmail map[string]string
	mtx     *sync.RWMutex
}

func NewUserStorage() *UserStorage {
	return &UserStorage{
		byID:    make(map[string]*user.User),
		byEmail: make(map[string]string),
		mtx:     &sync.RWMutex{},
	}
}

func (s *UserStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *UserStorage) Create(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	key := emailKey(userToCreate.Email)
	if _, ok := s.byEmail[key]; ok {
		return repo.ErrAlreadyExists
	}

	if userToCreate.CreatedAt.IsZero() {
		userToCreate.CreatedAt = time.Now()
	}

	stored := *userToCreate
	s.byID[stored.ID] = &stored
	s.byEmail[key] = stored.ID
	return nil
}

func (s *UserStorage) GetByID(ctx context.Context, id string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	found, ok := s.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := *found
	return &out, nil
}

func (s *UserStorage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	out := *s.byID[id]
	return &out, nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
