package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort     int
	Env            string
	LogLevel       string
	DatabasePath   string
	JWTSecret      string
	AllowedOrigins []string

	SessionStore  string // "memory" or "redis"
	SessionTTL    time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MailDriver string // "smtp" or "log"
	SMTPHost   string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	SMTPFrom   string

	OTPTTL           time.Duration // zero disables expiry
	HousekeepingCron string

	AuthRatePerMin float64
	AuthRateBurst  int
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load loads configuration from environment variables or sets defaults.
// A .env file in the working directory is read first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	redisDB, err := getInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	smtpPort, err := getInt("SMTP_PORT", 465)
	if err != nil {
		return nil, err
	}
	burst, err := getInt("AUTH_RATE_BURST", 5)
	if err != nil {
		return nil, err
	}
	perMin, err := strconv.ParseFloat(getEnv("AUTH_RATE_PER_MIN", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("AUTH_RATE_PER_MIN: %w", err)
	}
	otpTTL, err := getDuration("OTP_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	sessionTTL, err := getDuration("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort:       port,
		Env:              getEnv("APP_ENV", "development"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DatabasePath:     getEnv("DATABASE_PATH", "./clinic.db"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		AllowedOrigins:   splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		SessionStore:     getEnv("SESSION_STORE", "memory"),
		SessionTTL:       sessionTTL,
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          redisDB,
		MailDriver:       getEnv("MAIL_DRIVER", "log"),
		SMTPHost:         getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         smtpPort,
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPass:         getEnv("SMTP_PASS", ""),
		SMTPFrom:         getEnv("SMTP_FROM", ""),
		OTPTTL:           otpTTL,
		HousekeepingCron: getEnv("HOUSEKEEPING_CRON", "*/5 * * * *"),
		AuthRatePerMin:   perMin,
		AuthRateBurst:    burst,
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	switch cfg.SessionStore {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
	switch cfg.MailDriver {
	case "smtp", "log":
	default:
		return nil, fmt.Errorf("unknown MAIL_DRIVER %q", cfg.MailDriver)
	}
	return cfg, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
