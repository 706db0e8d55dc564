package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Auth       AuthConfig       `yaml:"auth"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Session    SessionConfig    `yaml:"session"`
}

type ServerConfig struct {
	Port           string        `yaml:"port"`
	Host           string        `yaml:"host"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "postgres" или "inmemory"
}

type RateLimitConfig struct {
	Backend           string `yaml:"backend"` // "memory" или "redis"
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	RedisAddr         string `yaml:"redis_addr"`
	RedisPrefix       string `yaml:"redis_prefix"`
}

type AuthConfig struct {
	JWTSecret  string        `yaml:"jwt_secret"`
	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

type GeneratorConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

const (
	RepositoryInMemory = "inmemory"
	RepositoryPostgres = "postgres"

	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "3000",
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   3 * time.Minute,
			RequestTimeout: 3 * time.Minute,
			AllowedOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
		},
		Repository: RepositoryConfig{Type: RepositoryInMemory},
		RateLimit: RateLimitConfig{
			Backend:           RateLimitMemory,
			RequestsPerMinute: 100,
			RedisAddr:         "localhost:6379",
			RedisPrefix:       "planup:ratelimit:",
		},
		Auth: AuthConfig{
			TokenTTL:   time.Hour,
			BcryptCost: 12,
		},
		Generator: GeneratorConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4",
			Timeout: 2 * time.Minute,
		},
		Session: SessionConfig{
			IdleTTL:       time.Hour,
			SweepInterval: 5 * time.Minute,
		},
	}
}

// Load reads path on top of Default and then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	file, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	default:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	}

	applyEnv(cfg, viper.New())

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, v *viper.Viper) {
	bindings := map[string]*string{
		"PORT":            &cfg.Server.Port,
		"DATABASE_URL":    &cfg.Database.URL,
		"REDIS_ADDR":      &cfg.RateLimit.RedisAddr,
		"JWT_SECRET":      &cfg.Auth.JWTSecret,
		"OPENAI_API_KEY":  &cfg.Generator.APIKey,
		"OPENAI_BASE_URL": &cfg.Generator.BaseURL,
		"OPENAI_MODEL":    &cfg.Generator.Model,
		"REPOSITORY_TYPE": &cfg.Repository.Type,
	}
	for env, target := range bindings {
		_ = v.BindEnv(env)
		if value := v.GetString(env); value != "" {
			*target = value
		}
	}

	_ = v.BindEnv("PLANUP_DEVELOPMENT")
	if v.IsSet("PLANUP_DEVELOPMENT") {
		cfg.Logging.Development = v.GetBool("PLANUP_DEVELOPMENT")
	}
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryInMemory:
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return errors.New("repository.type=postgres требует database.url")
		}
	default:
		return fmt.Errorf("неизвестный repository.type %q", c.Repository.Type)
	}

	switch c.RateLimit.Backend {
	case RateLimitMemory, RateLimitRedis:
	default:
		return fmt.Errorf("неизвестный rate_limit.backend %q", c.RateLimit.Backend)
	}

	if c.RateLimit.RequestsPerMinute <= 0 {
		return errors.New("rate_limit.requests_per_minute должен быть больше 0")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl должен быть больше 0")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
