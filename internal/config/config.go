package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	TokenStoreFile    = "file"
	TokenStoreMongoDB = "mongodb"
)

// Config represents the full application configuration surface.
type Config struct {
	Inventory InventoryConfig
	Session   SessionConfig
	MongoDB   MongoDBConfig
	Watch     WatchConfig
	Log       LogConfig
	Stub      StubConfig
}

// InventoryConfig points the gateway at the remote inventory API.
type InventoryConfig struct {
	BaseURL  string
	Resource string
	Timeout  time.Duration
}

// SessionConfig selects where the bearer credential is persisted between runs.
type SessionConfig struct {
	TokenStore string
	TokenFile  string
}

// MongoDBConfig holds settings for the MongoDB token store.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// WatchConfig holds settings for the periodic refresh mode.
type WatchConfig struct {
	CronSchedule string
	MetricsAddr  string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
}

// StubConfig configures the local inventory API stub.
type StubConfig struct {
	Port      string
	JWTSecret string
	Users     map[string]string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when the environment is set directly.
		_ = godotenv.Load()
	}

	timeout, err := time.ParseDuration(getenvWithDefault("INVENTORY_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("INVENTORY_TIMEOUT: %w", err)
	}

	users, err := parseUsers(getenvWithDefault("STUB_USERS", "admin:admin"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Inventory: InventoryConfig{
			BaseURL:  getenvWithDefault("INVENTORY_BASE_URL", "http://localhost:8080"),
			Resource: strings.Trim(getenvWithDefault("INVENTORY_RESOURCE", "produtos"), "/"),
			Timeout:  timeout,
		},
		Session: SessionConfig{
			TokenStore: strings.ToLower(getenvWithDefault("TOKEN_STORE", TokenStoreFile)),
			TokenFile:  getenvWithDefault("TOKEN_FILE", defaultTokenFile()),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "estoque"),
		},
		Watch: WatchConfig{
			CronSchedule: getenvWithDefault("WATCH_CRON_SCHEDULE", "*/5 * * * *"),
			MetricsAddr:  os.Getenv("METRICS_ADDR"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Stub: StubConfig{
			Port:      getenvWithDefault("STUB_PORT", "8080"),
			JWTSecret: getenvWithDefault("STUB_JWT_SECRET", "local-stub-secret"),
			Users:     users,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Inventory.BaseURL == "" {
		return errors.New("INVENTORY_BASE_URL must not be empty")
	}

	if c.Inventory.Resource == "" {
		return errors.New("INVENTORY_RESOURCE must not be empty")
	}

	if c.Inventory.Timeout <= 0 {
		return errors.New("INVENTORY_TIMEOUT must be positive")
	}

	switch c.Session.TokenStore {
	case TokenStoreFile:
		if c.Session.TokenFile == "" {
			return errors.New("TOKEN_FILE must be provided")
		}
	case TokenStoreMongoDB:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided when TOKEN_STORE=mongodb")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("unsupported TOKEN_STORE %q", c.Session.TokenStore)
	}

	if c.Watch.CronSchedule == "" {
		return errors.New("WATCH_CRON_SCHEDULE must be provided")
	}

	if c.Stub.JWTSecret == "" {
		return errors.New("STUB_JWT_SECRET must not be empty")
	}

	return nil
}

func parseUsers(raw string) (map[string]string, error) {
	users := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		login, password, ok := strings.Cut(pair, ":")
		if !ok || login == "" || password == "" {
			return nil, fmt.Errorf("STUB_USERS entry %q must be login:password", pair)
		}
		users[login] = password
	}
	return users, nil
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "stockctl", "token")
	}
	return filepath.Join(home, ".stockctl", "token")
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
