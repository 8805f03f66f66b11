package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"example.com/codebreaker/internal/code"
)

// Config describes all runtime settings for the server.
//
// Loaded once in main, validated, then passed down explicitly.
type Config struct {
	Env string // dev|stage|prod

	Log struct {
		Format string // text|json
		Level  string // debug|info|warn|error
	}

	HTTP struct {
		Addr              string
		ReadHeaderTimeout time.Duration
		ReadTimeout       time.Duration
		WriteTimeout      time.Duration
		IdleTimeout       time.Duration
		ShutdownTimeout   time.Duration
		StaticDir         string // optional front end; empty => none
	}

	// Postgres backs accounts and player stats. Empty URL disables both.
	Postgres struct {
		URL           string
		RunMigrations bool
		MigrationsDir string
	}

	Redis struct {
		Addr       string
		DB         int
		SessionTTL time.Duration
	}

	Auth struct {
		Secret   string
		TokenTTL time.Duration
	}

	Game struct {
		SessionStore   string // memory|redis
		DefaultLength  int
		DefaultSymbols int
		MaxLength      int
		AllowRepeats   bool
	}
}

const defaultSecret = "dev-secret-change-me"

func LoadFromEnv() (Config, error) {
	var c Config

	c.Env = envString("APP_ENV", "dev")
	c.Log.Format = envString("LOG_FORMAT", "text")
	c.Log.Level = envString("LOG_LEVEL", "info")

	port := envString("PORT", "8080")
	c.HTTP.Addr = envString("HTTP_ADDR", ":"+port)
	c.HTTP.ReadHeaderTimeout = envDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second)
	c.HTTP.ReadTimeout = envDuration("HTTP_READ_TIMEOUT", 0)
	c.HTTP.WriteTimeout = envDuration("HTTP_WRITE_TIMEOUT", 0)
	c.HTTP.IdleTimeout = envDuration("HTTP_IDLE_TIMEOUT", 60*time.Second)
	c.HTTP.ShutdownTimeout = envDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second)
	c.HTTP.StaticDir = envString("STATIC_DIR", "")

	c.Postgres.URL = envString("DATABASE_URL", "")
	c.Postgres.RunMigrations = envBool("RUN_MIGRATIONS", false)
	c.Postgres.MigrationsDir = envString("MIGRATIONS_DIR", "./db/migrations")

	c.Redis.Addr = envString("REDIS_ADDR", "localhost:6379")
	c.Redis.DB = envInt("REDIS_DB", 0)
	c.Redis.SessionTTL = envDuration("SESSION_TTL", 24*time.Hour)

	c.Auth.Secret = envString("JWT_SECRET", defaultSecret)
	c.Auth.TokenTTL = envDuration("JWT_TTL", 24*time.Hour)

	c.Game.SessionStore = envString("SESSION_STORE", "memory")
	c.Game.DefaultLength = envInt("GAME_DEFAULT_LENGTH", 4)
	c.Game.DefaultSymbols = envInt("GAME_DEFAULT_SYMBOLS", 10)
	c.Game.MaxLength = envInt("GAME_MAX_LENGTH", code.MaxLength)
	c.Game.AllowRepeats = envBool("GAME_ALLOW_REPEATS", false)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP addr is empty")
	}
	if c.Auth.Secret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	if c.Env != "dev" && c.Auth.Secret == defaultSecret {
		return fmt.Errorf("refuse to run with default JWT_SECRET in %s", c.Env)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT=%q (want text|json)", c.Log.Format)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported LOG_LEVEL=%q (want debug|info|warn|error)", c.Log.Level)
	}

	switch c.Game.SessionStore {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR is empty")
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE=%q (want memory|redis)", c.Game.SessionStore)
	}

	if c.Game.MaxLength < 1 || c.Game.MaxLength > code.MaxLength {
		return fmt.Errorf("GAME_MAX_LENGTH=%d out of range 1..%d", c.Game.MaxLength, code.MaxLength)
	}
	if c.Game.DefaultLength > c.Game.MaxLength {
		return fmt.Errorf("GAME_DEFAULT_LENGTH=%d exceeds GAME_MAX_LENGTH=%d", c.Game.DefaultLength, c.Game.MaxLength)
	}
	if err := code.ValidateSettings(c.Game.DefaultLength, c.Game.DefaultSymbols, c.Game.AllowRepeats); err != nil {
		return fmt.Errorf("game defaults: %w", err)
	}
	return nil
}

// StatsEnabled reports whether accounts and player stats are configured.
func (c Config) StatsEnabled() bool { return c.Postgres.URL != "" }

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
