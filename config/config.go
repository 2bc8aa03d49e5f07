package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Telegram TelegramConfig
	Delivery DeliveryConfig
	Metrics  MetricsConfig
	Persist  PersistConfig
	Session  SessionConfig
	Lang     string // default UI language: "en" or "ru"
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type TelegramConfig struct {
	Token string
}

type DeliveryConfig struct {
	CountdownSeconds       int // delivery budget; reaching zero makes the order free
	TrackingRefreshSeconds int // how often the bot edits the tracking screen
}

type MetricsConfig struct {
	Addr string // empty disables the /metrics endpoint
}

// PersistConfig controls the alternate mode that keeps user + cart across restarts.
type PersistConfig struct {
	Sessions    bool
	AutoMigrate bool
}

// SessionConfig bounds how long an idle chat is kept in memory.
type SessionConfig struct {
	IdleMinutes int // chats untouched for this long are evicted unless a countdown runs
}

const (
	DefaultCountdownSeconds       = 1800
	DefaultTrackingRefreshSeconds = 15
	DefaultSessionIdleMinutes     = 24 * 60
)

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "pizzeria"),
		},
		Telegram: TelegramConfig{
			Token: getEnv("TOKEN", ""),
		},
		Delivery: DeliveryConfig{
			CountdownSeconds:       getEnvInt("COUNTDOWN_SECONDS", DefaultCountdownSeconds),
			TrackingRefreshSeconds: getEnvInt("TRACKING_REFRESH_SECONDS", DefaultTrackingRefreshSeconds),
		},
		Metrics: MetricsConfig{
			Addr: getEnv("METRICS_ADDR", ""),
		},
		Persist: PersistConfig{
			Sessions:    getEnvBool("PERSIST_SESSIONS"),
			AutoMigrate: getEnvBool("AUTO_MIGRATE"),
		},
		Session: SessionConfig{
			IdleMinutes: getEnvInt("SESSION_IDLE_MINUTES", DefaultSessionIdleMinutes),
		},
		Lang: getEnv("DEFAULT_LANG", "en"),
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt falls back to def when the value is missing, malformed or not positive.
func getEnvInt(key string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getEnvBool(key string) bool {
	v := strings.TrimSpace(os.Getenv(key))
	return v == "1" || strings.EqualFold(v, "true")
}
