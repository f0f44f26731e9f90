package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pulsehr/attendance-backend-go/internal/domain/attendance"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Policy   PolicyConfig
	Geocode  GeocodeConfig
	Alerts   AlertsConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
}

// JWTConfig holds the shared-secret verifier configuration
type JWTConfig struct {
	Secret string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// PolicyConfig holds the attendance window overrides. Empty values fall back
// to the defaults baked into the policy.
type PolicyConfig struct {
	FirstPunchInWindow  string // "HH:MM-HH:MM"
	LateEntryWindow     string
	FinalPunchOutWindow string
	EarlyExitWindow     string
	RequiredDailyHours  float64
}

type GeocodeConfig struct {
	BaseURL string
	Timeout time.Duration
}

type AlertsConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
	SweepInterval time.Duration
}

func Load() (*Config, error) {
	// a missing .env is fine in containerized deploys; env vars win either way
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	dbMaxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "pulsehr-attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: dbMaxConns,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret: getEnv("JWT_SECRET_KEY", ""),
	}

	// Attendance policy overrides
	requiredHours, err := strconv.ParseFloat(getEnv("REQUIRED_DAILY_HOURS", "9"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUIRED_DAILY_HOURS: %w", err)
	}

	config.Policy = PolicyConfig{
		FirstPunchInWindow:  getEnv("FIRST_PUNCH_IN_WINDOW", ""),
		LateEntryWindow:     getEnv("LATE_ENTRY_WINDOW", ""),
		FinalPunchOutWindow: getEnv("FINAL_PUNCH_OUT_WINDOW", ""),
		EarlyExitWindow:     getEnv("EARLY_EXIT_WINDOW", ""),
		RequiredDailyHours:  requiredHours,
	}

	geocodeTimeout, err := time.ParseDuration(getEnv("GEOCODE_TIMEOUT", "2s"))
	if err != nil {
		return nil, fmt.Errorf("invalid GEOCODE_TIMEOUT: %w", err)
	}
	config.Geocode = GeocodeConfig{
		BaseURL: getEnv("GEOCODE_BASE_URL", ""),
		Timeout: geocodeTimeout,
	}

	flushInterval, err := time.ParseDuration(getEnv("ALERT_FLUSH_INTERVAL", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_FLUSH_INTERVAL: %w", err)
	}
	sweepInterval, err := time.ParseDuration(getEnv("ALERT_SWEEP_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_SWEEP_INTERVAL: %w", err)
	}
	alertBatchSize, err := strconv.Atoi(getEnv("ALERT_BATCH_SIZE", "100"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_BATCH_SIZE: %w", err)
	}
	alertWorkers, err := strconv.Atoi(getEnv("ALERT_WORKER_COUNT", "2"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_WORKER_COUNT: %w", err)
	}
	alertQueueSize, err := strconv.Atoi(getEnv("ALERT_QUEUE_SIZE", "1000"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALERT_QUEUE_SIZE: %w", err)
	}

	config.Alerts = AlertsConfig{
		BatchSize:     alertBatchSize,
		FlushInterval: flushInterval,
		WorkerCount:   alertWorkers,
		QueueSize:     alertQueueSize,
		SweepInterval: sweepInterval,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Policy.RequiredDailyHours <= 0 || c.Policy.RequiredDailyHours > 24 {
		return fmt.Errorf("REQUIRED_DAILY_HOURS must be in (0, 24]")
	}
	return nil
}

// WindowPolicy materializes the attendance policy, applying any configured
// window overrides on top of the defaults.
func (c *Config) WindowPolicy() (attendance.WindowPolicy, error) {
	policy := attendance.DefaultWindowPolicy()
	policy.RequiredDailyHours = c.Policy.RequiredDailyHours

	overrides := []struct {
		value  string
		target *attendance.Window
	}{
		{c.Policy.FirstPunchInWindow, &policy.FirstPunchInWindow},
		{c.Policy.LateEntryWindow, &policy.LateEntryWindow},
		{c.Policy.FinalPunchOutWindow, &policy.FinalPunchOutWindow},
		{c.Policy.EarlyExitWindow, &policy.EarlyExitWindow},
	}
	for _, o := range overrides {
		if o.value == "" {
			continue
		}
		w, err := attendance.ParseWindow(o.value)
		if err != nil {
			return attendance.WindowPolicy{}, err
		}
		*o.target = w
	}

	return policy, nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	return strings.Split(value, ",")
}
