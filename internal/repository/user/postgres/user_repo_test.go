package postgres_test

import (
	"context"
	"fmt"
	"planup/internal/config"
	"planup/internal/migrations"
	"planup/internal/models/user"
	"planup/internal/repository"
	"planup/internal/repository/user/postgres"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container  testcontainers.Container
	storage    *postgres.Storage
	ctx        context.Context
	connString string
}

// SetupSuite запускается один раз перед всеми тестами
func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	s.connString = fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	require.NoError(s.T(), migrations.Up(s.connString))

	s.storage, err = postgres.New(s.ctx, config.DatabaseConfig{URL: s.connString, MaxConnections: 4})
	require.NoError(s.T(), err)
}

// TearDownSuite очищает после всех тестов
func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

// SetupTest очищает таблицу перед каждым тестом
func (s *PostgresTestSuite) SetupTest() {
	conn, err := pgx.Connect(s.ctx, s.connString)
	require.NoError(s.T(), err)
	defer conn.Close(s.ctx)

	_, err = conn.Exec(s.ctx, "TRUNCATE TABLE users")
	require.NoError(s.T(), err)
}

func (s *PostgresTestSuite) newUser(email string) *user.User {
	return &user.User{
		ID:           uuid.NewString(),
		Username:     "planner",
		Email:        email,
		PasswordHash: "$2a$12$hash",
	}
}

func (s *PostgresTestSuite) TestHealthCheck() {
	s.NoError(s.storage.HealthCheck(s.ctx))
}

func (s *PostgresTestSuite) TestCreateAndGet() {
	u := s.newUser("user@example.com")
	s.Require().NoError(s.storage.Create(s.ctx, u))
	s.False(u.CreatedAt.IsZero())

	byID, err := s.storage.GetByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Email, byID.Email)
	s.Equal(u.PasswordHash, byID.PasswordHash)

	byEmail, err := s.storage.GetByEmail(s.ctx, u.Email)
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)
}

func (s *PostgresTestSuite) TestDuplicateEmail() {
	s.Require().NoError(s.storage.Create(s.ctx, s.newUser("user@example.com")))

	err := s.storage.Create(s.ctx, s.newUser("user@example.com"))
	s.ErrorIs(err, repository.ErrAlreadyExists)
}

func (s *PostgresTestSuite) TestNotFound() {
	_, err := s.storage.GetByID(s.ctx, uuid.NewString())
	s.ErrorIs(err, repository.ErrNotFound)

	_, err = s.storage.GetByID(s.ctx, "not-a-uuid")
	s.ErrorIs(err, repository.ErrNotFound)

	_, err = s.storage.GetByEmail(s.ctx, "nobody@example.com")
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *PostgresTestSuite) TestMigrationsAreIdempotent() {
	s.NoError(migrations.Up(s.connString))
}

func TestPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("интеграционные тесты пропущены в режиме -short")
	}
	suite.Run(t, new(PostgresTestSuite))
}
