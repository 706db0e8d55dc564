package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"planup/internal/auth"
	"planup/internal/config"
	"planup/internal/editor"
	"planup/internal/generator"
	"planup/internal/handlers"
	"planup/internal/logger"
	"planup/internal/middleware"
	"planup/internal/migrations"
	"planup/internal/prompt"
	"planup/internal/ratelimit"
	"planup/internal/repository/user/inmemory"
	"planup/internal/repository/user/postgres"
	"planup/internal/service"
	"planup/internal/session"
	"planup/internal/worker"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.UserRepository
	sessions   *session.Store
	limiter    ratelimit.Limiter
	tokens     *auth.JWTManager
	sweeper    *worker.SessionSweeper
	shutdowns  map[string]gfshutdown.Operation
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make(map[string]gfshutdown.Operation),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	if err := a.initRepository(ctx); err != nil {
		return err
	}
	a.initLimiter()
	a.initAuth()

	a.sessions = session.NewStore()

	var pruners []worker.Pruner
	if p, ok := a.limiter.(worker.Pruner); ok {
		pruners = append(pruners, p)
	}
	a.sweeper = worker.NewSessionSweeper(a.sessions, a.config.Session.SweepInterval, a.config.Session.IdleTTL, pruners...)

	a.initRouter()

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           otelhttp.NewHandler(a.router, "planup"),
		ReadHeaderTimeout: a.config.Server.ReadTimeout,
		ReadTimeout:       a.config.Server.ReadTimeout,
		WriteTimeout:      a.config.Server.WriteTimeout,
	}
	a.shutdowns["http-server"] = func(ctx context.Context) error {
		logger.Info("Остановка HTTP сервера...")
		return a.server.Shutdown(ctx)
	}

	return nil
}

func (a *App) initRepository(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		if err := migrations.Up(a.config.Database.URL); err != nil {
			return fmt.Errorf("миграции: %w", err)
		}
		storage, err := postgres.New(ctx, a.config.Database)
		if err != nil {
			return fmt.Errorf("подключение к postgres: %w", err)
		}
		a.repository = storage
		a.shutdowns["postgres"] = func(context.Context) error {
			logger.Info("Закрытие пула postgres...")
			storage.Close()
			return nil
		}
	default:
		a.repository = inmemory.NewUserStorage()
	}

	logger.Info("Репозиторий пользователей готов", zap.String("type", a.config.Repository.Type))
	return nil
}

func (a *App) initLimiter() {
	rl := a.config.RateLimit
	if rl.Backend != config.RateLimitRedis {
		a.limiter = ratelimit.NewMemoryLimiter(rl.RequestsPerMinute)
		return
	}

	client := redis.NewClient(&redis.Options{Addr: rl.RedisAddr})
	a.limiter = ratelimit.NewRedisLimiter(client, rl.RequestsPerMinute, rl.RedisPrefix)
	a.shutdowns["redis"] = func(context.Context) error {
		logger.Info("Закрытие клиента redis...")
		return client.Close()
	}
	logger.Info("Лимитер запросов на redis", zap.String("addr", rl.RedisAddr))
}

func (a *App) initAuth() {
	secret := a.config.Auth.JWTSecret
	if secret == "" {
		secret = randomSecret()
		logger.Warn("JWT_SECRET не задан, используется случайный ключ: токены не переживут перезапуск")
	}
	a.tokens = auth.NewJWTManager(secret, a.config.Auth.TokenTTL)
}

func (a *App) initRouter() {
	hasher := auth.NewPasswordHasher(a.config.Auth.BcryptCost)
	gen := generator.NewOpenAI(a.config.Generator)
	if a.config.Generator.APIKey == "" {
		logger.Warn("OPENAI_API_KEY не задан, генерация расписаний вернёт ошибку")
	}

	authService := service.NewAuthService(a.repository, hasher, a.tokens, a.sessions)
	scheduleService := service.NewScheduleService(gen)
	plannerService := service.NewPlannerService(a.sessions, gen, prompt.NewBuilder(), editor.WithLocation(time.Local))

	authHandler := handlers.NewAuthHandler(authService)
	generateHandler := handlers.NewGenerateHandler(scheduleService)
	sessionHandler := handlers.NewSessionHandler(plannerService)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: a.config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RateLimit(a.limiter))
	if a.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	}

	r.Get("/health", authHandler.HealthCheck)

	r.Route("/users", func(r chi.Router) {
		r.Post("/register", authHandler.Register) // POST /users/register
		r.Post("/login", authHandler.Login)       // POST /users/login
		r.With(middleware.Authenticate(a.tokens)).Post("/logout", authHandler.Logout)
	})

	r.Post("/gpt3/generate-schedule", generateHandler.GenerateSchedule)

	r.Route("/session", func(r chi.Router) {
		r.Use(middleware.Authenticate(a.tokens))

		r.Get("/onboarding", sessionHandler.GetOnboarding)
		r.Put("/onboarding", sessionHandler.PutOnboarding)

		r.Get("/tasks", sessionHandler.ListTasks)
		r.Post("/tasks", sessionHandler.SaveTask)
		r.Delete("/tasks/{id}", sessionHandler.DeleteTask)

		r.Get("/options", sessionHandler.GetOptions)
		r.Post("/options/{key}/toggle", sessionHandler.ToggleOption)

		r.Get("/prompt", sessionHandler.GetPrompt)

		r.Route("/schedule", func(r chi.Router) {
			r.Post("/", sessionHandler.GenerateSchedule)
			r.Get("/", sessionHandler.GetSchedule)
			r.Delete("/", sessionHandler.DiscardSchedule)
			r.Delete("/pending", sessionHandler.CancelGeneration)
			r.Post("/entries/{entryID}/complete", sessionHandler.CompleteEntry)
			r.Post("/entries/{entryID}/subtasks/{subID}/complete", sessionHandler.CompleteSubEntry)
		})
	})

	a.router = r
}

// Run serves until SIGINT/SIGTERM and returns the process exit code.
func (a *App) Run(ctx context.Context) int {
	workerCtx, stopWorker := context.WithCancel(ctx)
	go a.sweeper.Start(workerCtx)
	a.shutdowns["session-sweeper"] = func(context.Context) error {
		stopWorker()
		return nil
	}

	go func() {
		logger.Info("Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ошибка HTTP сервера", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(ctx, shutdownTimeout, a.shutdowns)
	code := <-wait

	logger.Info("Завершение работы логгирования...", zap.Int("exit_code", code))
	logger.Sync()
	return code
}

// Router exposes the configured handler for in-process tests.
func (a *App) Router() http.Handler {
	return a.router
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return hex.EncodeToString(buf)
}
