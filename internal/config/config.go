package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"nannyledger/internal/core"
)

type Config struct {
	// HTTP Server
	Port         string
	AppTitle     string
	CookieSecure bool

	// Password gate
	AppPassword     string
	AppPasswordHash string

	// Database
	SQLiteDBPath string

	// Settings seeded into an empty database
	SalaryWeekly     int64
	MealPerDay       int64
	WorkdaysStandard int

	// Sessions
	SessionBackend string
	SessionTTL     time.Duration
	RedisAddr      string
	RedisPass      string
	RedisDB        int

	// AMQP (optional; empty URL disables events)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger mirror
	MirrorBackend       string
	GoogleSpreadsheetID string
	GoogleSheetName     string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		AppTitle:     getEnv("APP_TITLE", "Buku Gaji Pengasuh"),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		AppPassword:     getEnv("APP_PASSWORD", ""),
		AppPasswordHash: getEnv("APP_PASSWORD_HASH", ""),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/nanny.db"),

		SalaryWeekly:     getEnvInt64("SALARY_WEEKLY", int64(core.DefaultWeeklySalary)),
		MealPerDay:       getEnvInt64("MEAL_PER_DAY", int64(core.DefaultMealPerDay)),
		WorkdaysStandard: getEnvInt("WORKDAYS_STANDARD", core.DefaultStandardWorkdays),

		SessionBackend: getEnv("SESSION_BACKEND", "memory"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 12*time.Hour),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:      getEnv("REDIS_PASS", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "nannyledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_mirror"),

		MirrorBackend:       getEnv("MIRROR_BACKEND", "memory"),
		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:     getEnv("GOOGLE_SHEET_NAME", "Ledger"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// SeedSettings returns the payroll settings written into an empty database.
// An out-of-range standard workweek falls back to the default.
func (c *Config) SeedSettings() core.Settings {
	s := core.Settings{
		WeeklySalary:     core.Money(c.SalaryWeekly),
		MealPerDay:       core.Money(c.MealPerDay),
		StandardWorkdays: c.WorkdaysStandard,
	}
	if s.StandardWorkdays < core.MinStandardWorkdays || s.StandardWorkdays > core.MaxStandardWorkdays {
		slog.Warn("WORKDAYS_STANDARD out of range, using default",
			"value", c.WorkdaysStandard,
			"default", core.DefaultStandardWorkdays)
		s.StandardWorkdays = core.DefaultStandardWorkdays
	}
	return s
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.SQLiteDBPath) == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	}

	if c.SalaryWeekly < 0 || c.SalaryWeekly > int64(core.MaxAmount) {
		errors = append(errors, fmt.Sprintf("invalid weekly salary %d: must be between 0 and %d", c.SalaryWeekly, core.MaxAmount))
	}
	if c.MealPerDay < 0 || c.MealPerDay > int64(core.MaxAmount) {
		errors = append(errors, fmt.Sprintf("invalid meal allowance %d: must be between 0 and %d", c.MealPerDay, core.MaxAmount))
	}

	switch c.SessionBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			errors = append(errors, "REDIS_ADDR is required when using the redis session backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid session backend '%s': must be one of [memory redis]", c.SessionBackend))
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch c.MirrorBackend {
	case "memory":
	case "sheets":
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when using the sheets mirror")
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid mirror backend '%s': must be one of [memory sheets]", c.MirrorBackend))
	}

	if _, ok := ParseLogLevel(c.LogLevel); !ok {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ParseLogLevel maps LOG_LEVEL to a slog level.
func ParseLogLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "", "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
