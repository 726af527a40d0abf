package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		DemoAuth
		Redis
		Audit
		Tasks
	}

	HTTP struct {
		Port               int32
		Host               string
		CORSAllowedOrigins []string
		MediaPath          string
		StaticPath         string
		ReadOnly           bool // Reject writes with 503 (maintenance)
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Driver       DatabaseDriver
		Path         string // SQLite file
		Host         string
		Port         int
		Name         string
		User         string
		Password     string
		SSLMode      string
		Echo         bool // Log every SQL statement
		MaxOpenConns int
		MaxIdleConns int
	}

	Auth struct {
		SecretKey       string // 64 hex chars, PASETO v4 local key
		AccessTokenTTL  time.Duration
		BcryptCost      int
		LoginRateLimit  float64 // login attempts per second per client IP
		LoginRateBurst  int
		TokenIssuer     string
		TokenAudience   string
		SecureCookies   bool
		SessionSecret   string
		SessionLifetime time.Duration
	}

	DemoAuth struct {
		Enabled bool
		Users   map[string]string // username -> password
		Tokens  map[string]string // static header token -> username
	}

	Redis struct {
		Addr     string // Empty disables Redis
		Password string
		DB       int
	}

	Audit struct {
		Enabled         bool
		RetentionDays   int    // Days to keep audit events (default: 30)
		CleanupSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}

	Tasks struct {
		Enabled         bool
		DatabasePath    string
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
)

// DSN returns the connection string for the configured driver.
func (d Database) DSN() string {
	if d.Driver == DriverPostgres {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	}
	return d.Path
}

// parsePairs reads "a:b,c:d" into a map. Malformed entries are skipped.
func parsePairs(raw string) map[string]string {
	pairs := make(map[string]string)
	for _, item := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(item), ":")
		if !ok || key == "" {
			continue
		}
		pairs[key] = value
	}
	return pairs
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("media_path", "./media")
	v.SetDefault("static_path", "./static")
	v.SetDefault("read_only_mode", false)
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	// Database defaults
	v.SetDefault("database_driver", string(DriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_name", "fast_library")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_echo", false)
	v.SetDefault("db_max_open_conns", 10)
	v.SetDefault("db_max_idle_conns", 5)

	// Auth defaults
	v.SetDefault("secret_key", "") // Auto-generated if empty
	v.SetDefault("access_token_expire_minutes", 30)
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("login_rate_limit_rps", 1.0)
	v.SetDefault("login_rate_limit_burst", 5)
	v.SetDefault("secure_cookies", false)
	v.SetDefault("session_secret", "") // Auto-generated if empty
	v.SetDefault("demo_session_lifetime", "24h")

	// Demo auth defaults
	v.SetDefault("demo_auth_enabled", true)
	v.SetDefault("demo_auth_users", "admin:admin,john:password")
	v.SetDefault("demo_auth_tokens", "")

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)

	// Audit defaults
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_cleanup_schedule", "0 3 * * *")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_database_path", DefaultTasksDatabasePath)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	return &Config{
		HTTP: HTTP{
			Port:               v.GetInt32("PORT"),
			Host:               v.GetString("HOST"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			MediaPath:          v.GetString("MEDIA_PATH"),
			StaticPath:         v.GetString("STATIC_PATH"),
			ReadOnly:           v.GetBool("READ_ONLY_MODE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:       DatabaseDriver(strings.ToLower(v.GetString("DATABASE_DRIVER"))),
			Path:         v.GetString("DATABASE_PATH"),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetInt("DB_PORT"),
			Name:         v.GetString("DB_NAME"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			Echo:         v.GetBool("DB_ECHO"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Auth: Auth{
			SecretKey:       v.GetString("SECRET_KEY"),
			AccessTokenTTL:  time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
			BcryptCost:      v.GetInt("AUTH_BCRYPT_COST"),
			LoginRateLimit:  v.GetFloat64("LOGIN_RATE_LIMIT_RPS"),
			LoginRateBurst:  v.GetInt("LOGIN_RATE_LIMIT_BURST"),
			TokenIssuer:     TokenIssuer,
			TokenAudience:   TokenAudience,
			SecureCookies:   v.GetBool("SECURE_COOKIES"),
			SessionSecret:   v.GetString("SESSION_SECRET"),
			SessionLifetime: v.GetDuration("DEMO_SESSION_LIFETIME"),
		},
		DemoAuth: DemoAuth{
			Enabled: v.GetBool("DEMO_AUTH_ENABLED"),
			Users:   parsePairs(v.GetString("DEMO_AUTH_USERS")),
			Tokens:  parsePairs(v.GetString("DEMO_AUTH_TOKENS")),
		},
		Redis: Redis{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Audit: Audit{
			Enabled:         v.GetBool("AUDIT_ENABLED"),
			RetentionDays:   v.GetInt("AUDIT_RETENTION_DAYS"),
			CleanupSchedule: v.GetString("AUDIT_CLEANUP_SCHEDULE"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			DatabasePath:    v.GetString("TASKS_DATABASE_PATH"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
	}
}
