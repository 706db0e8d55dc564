package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"planup/internal/auth"
	"planup/internal/logger"
	"planup/internal/models/user"
	repo "planup/internal/repository"
)

const (
	MsgRegistered         = "User registered successfully"
	MsgLoggedIn           = "Logged in successfully"
	MsgUserExists         = "User already exists"
	MsgUserNotFound       = "User not found"
	MsgInvalidCredentials = "Invalid credentials"
)

type AuthResult struct {
	UserID string
	Token  string
}

type AuthService struct {
	repo     UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	sessions SessionStore
}

func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens TokenIssuer, sessions SessionStore) *AuthService {
	return &AuthService{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		sessions: sessions,
	}
}

func (s *AuthService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

func (s *AuthService) Register(ctx context.Context, username, email, password string) (AuthResult, error) {
	email = normalizeEmail(email)
	if err := auth.ValidateRegistration(username, email, password); err != nil {
		return AuthResult{}, NewBusinessError(CodeValidation, err.Error())
	}

	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		logger.Info("Service: Пользователь уже существует", zap.String("email", email))
		return AuthResult{}, NewBusinessError(CodeUserExists, MsgUserExists)
	case !errors.Is(err, repo.ErrNotFound):
		return AuthResult{}, fmt.Errorf("поиск пользователя: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("хеширование пароля: %w", err)
	}

	newUser := &user.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return AuthResult{}, NewBusinessError(CodeUserExists, MsgUserExists)
		}
		return AuthResult{}, fmt.Errorf("создание пользователя: %w", err)
	}

	return s.startSession(newUser.ID, "Service: Пользователь зарегистрирован")
}

func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	found, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return AuthResult{}, NewBusinessError(CodeUserNotFound, MsgUserNotFound)
		}
		return AuthResult{}, fmt.Errorf("поиск пользователя: %w", err)
	}

	if !s.hasher.Verify(password, found.PasswordHash) {
		logger.Info("Service: Неверный пароль", zap.String("user_id", found.ID))
		return AuthResult{}, NewBusinessError(CodeInvalidCredentials, MsgInvalidCredentials)
	}

	return s.startSession(found.ID, "Service: Пользователь вошёл")
}

// Logout ends the user's planning session. Issued tokens stay valid until
// they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	if s.sessions.End(userID) {
		logger.Info("Service: Сессия завершена", zap.String("user_id", userID))
	}
}

func (s *AuthService) startSession(userID, msg string) (AuthResult, error) {
	token, err := s.tokens.Generate(userID)
	if err != nil {
		return AuthResult{}, fmt.Errorf("выпуск токена: %w", err)
	}
	s.sessions.Start(userID)

	logger.Info(msg, zap.String("user_id", userID))
	return AuthResult{UserID: userID, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
