package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Session store kinds.
const (
	SessionStoreRedis = "redis"
	SessionStoreBolt  = "bolt"
)

const devTokenSecret = "dev-staff-portal-secret"

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Session     SessionConfig
	Buffer      BufferConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxConn      int
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

// SessionConfig selects the session store and the signed cookie carrying the session id.
type SessionConfig struct {
	Store       string
	BoltPath    string
	KeyPrefix   string
	TTL         time.Duration
	PendingTTL  time.Duration
	CookieName  string
	Secure      bool
	TokenSecret string
	TokenIssuer string
}

type BufferConfig struct {
	Path           string
	RetentionHours int
	SyncInterval   time.Duration
	MaxRetry       int
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
	Path    string
}

// Load reads configuration from environment variables (optionally .env and the file named by
// PORTAL_CONFIG) and applies defaults so the service can boot in any environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if path := os.Getenv("PORTAL_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		AppName:     getString(v, "APP_NAME", "staff-portal"),
		Environment: getString(v, "APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:         getString(v, "SERVER_HOST", "0.0.0.0"),
			Port:         getString(v, "SERVER_PORT", "8080"),
			ReadTimeout:  getDuration(v, "SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration(v, "SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:  getDuration(v, "SERVER_IDLE_TIMEOUT", 120*time.Second),
			MaxConn:      getInt(v, "SERVER_MAX_CONN", 0),
		},
		Database: DatabaseConfig{
			URL:             getString(v, "DATABASE_URL", ""),
			Host:            getString(v, "DB_HOST", "localhost"),
			Port:            getString(v, "DB_PORT", "5432"),
			Name:            getString(v, "DB_NAME", "staff_portal"),
			User:            getString(v, "DB_USER", "portal"),
			Password:        getString(v, "DB_PASSWORD", ""),
			MaxOpenConns:    getInt(v, "DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt(v, "DB_MAX_IDLE_CONNS", 2),
			MaxConnLifetime: getDuration(v, "DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString(v, "DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getString(v, "REDIS_URL", "redis://localhost:6379"),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
		},
		Session: SessionConfig{
			Store:       strings.ToLower(getString(v, "SESSION_STORE", SessionStoreRedis)),
			BoltPath:    getString(v, "SESSION_BOLT_PATH", "./data/sessions.db"),
			KeyPrefix:   getString(v, "SESSION_KEY_PREFIX", "staff-session:"),
			TTL:         getDuration(v, "SESSION_TTL", 0),
			PendingTTL:  getDuration(v, "SESSION_PENDING_TTL", 30*time.Minute),
			CookieName:  getString(v, "SESSION_COOKIE", "staff_session"),
			Secure:      getBool(v, "SESSION_COOKIE_SECURE", false),
			TokenSecret: getString(v, "SESSION_SECRET", ""),
			TokenIssuer: getString(v, "SESSION_ISSUER", "staff-portal"),
		},
		Buffer: BufferConfig{
			Path:           getString(v, "BOLTDB_PATH", "./data/buffer.db"),
			RetentionHours: getInt(v, "BUFFER_RETENTION_HOURS", 24),
			SyncInterval:   getDuration(v, "SYNC_INTERVAL_SECONDS", 30*time.Second),
			MaxRetry:       getInt(v, "MAX_RETRY_ATTEMPTS", 3),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration(v, "REQUEST_TIMEOUT_SECONDS", 5*time.Second),
			ShutdownTimeout: getDuration(v, "SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString(v, "LOG_LEVEL", "info"),
			Encoding: getString(v, "LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool(v, "RUN_MIGRATIONS", true),
			Path:    getString(v, "MIGRATIONS_PATH", "./assets/migrations"),
		},
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}

func (c *Config) validate() error {
	switch c.Session.Store {
	case SessionStoreRedis, SessionStoreBolt:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q (want %s or %s)", c.Session.Store, SessionStoreRedis, SessionStoreBolt)
	}
	if c.Session.TokenSecret == "" {
		if c.IsProduction() {
			return fmt.Errorf("SESSION_SECRET is required in production")
		}
		c.Session.TokenSecret = devTokenSecret
	}
	return nil
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(v *viper.Viper, key, fallback string) string {
	if v.IsSet(key) {
		if val := v.GetString(key); val != "" {
			return val
		}
	}
	return fallback
}

func getInt(v *viper.Viper, key string, fallback int) int {
	if getString(v, key, "") == "" {
		return fallback
	}
	if parsed, err := cast.ToIntE(v.Get(key)); err == nil {
		return parsed
	}
	return fallback
}

func getBool(v *viper.Viper, key string, fallback bool) bool {
	if getString(v, key, "") == "" {
		return fallback
	}
	if parsed, err := cast.ToBoolE(v.Get(key)); err == nil {
		return parsed
	}
	return fallback
}

// getDuration accepts Go durations ("3s") and bare numbers of seconds.
func getDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	if getString(v, key, "") == "" {
		return fallback
	}
	if seconds, err := cast.ToIntE(v.Get(key)); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if parsed, err := cast.ToDurationE(v.Get(key)); err == nil {
		return parsed
	}
	return fallback
}
