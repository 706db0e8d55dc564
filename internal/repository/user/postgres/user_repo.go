package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"planup/internal/config"
	"planup/internal/logger"
	"planup/internal/models/user"
	repo "planup/internal/repository"
)

const (
	uniqueViolation = "23505"
	slowQuery       = 100 * time.Millisecond
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if cfg.MaxConnections > 0 {
		poolConfig.MaxConns = cfg.MaxConnections
	}
	if cfg.MinConnections > 0 {
		poolConfig.MinConns = cfg.MinConnections
	}
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, userToCreate *user.User) error {
	start := time.Now()
	defer warnIfSlow("create", start)

	query := `INSERT INTO users (id, username, email, password_hash)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		userToCreate.ID,
		userToCreate.Username,
		userToCreate.Email,
		userToCreate.PasswordHash,
	).Scan(&userToCreate.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repo.ErrAlreadyExists
		}
		logger.Error("Repository: Создание пользователя", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("создание пользователя: %w", err)
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id string) (*user.User, error) {
	return s.getOne(ctx, "id", id)
}

func (s *Storage) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getOne(ctx, "email", email)
}

// column is always one of the constants above, never user input.
func (s *Storage) getOne(ctx context.Context, column, value string) (*user.User, error) {
	start := time.Now()
	defer warnIfSlow("get by "+column, start)

	query := `SELECT id, username, email, password_hash, created_at
			FROM users
			WHERE ` + column + ` = $1`

	var u user.User
	err := s.pool.QueryRow(ctx, query, value).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "22P02" {
			// невалидный uuid
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Получение пользователя", err, zap.String("by", column))
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return &u, nil
}

func warnIfSlow(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленная операция", zap.String("op", op), zap.Duration("ms", elapsed))
	}
}
