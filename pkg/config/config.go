package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/pflag"
)

// Config holds the configuration for a MirrorDay agent
type Config struct {
	// MQTT configuration
	MQTTBroker   string
	MQTTPort     int
	MQTTUser     string
	MQTTPassword string
	MQTTClientID string

	// Redis configuration
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Postgres configuration
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	PostgresMaxConnections     int
	PostgresMaxIdleConnections int
	PostgresConnMaxLifetime    time.Duration

	// Service configuration
	ServiceName string
	HealthPort  int
	APIPort     int
	LogLevel    string

	// Reflection agent configuration
	LexiconPath       string
	DailyImageLimit   int
	GenerationTimeout int
	MigrationsDir     string
	ImageDir          string

	// Gemini configuration
	GeminiAPIKey   string
	GeminiEndpoint string
	GeminiModel    string

	// Diffusion (image renderer) configuration
	DiffusionAPIToken string
	DiffusionEndpoint string
	DiffusionModel    string

	// Scheduler agent configuration
	ReminderHour      int
	WeeklySummaryDay  int
	WeeklySummaryHour int
	TickIntervalSec   int
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MQTTBroker:   "localhost",
		MQTTPort:     1883,
		MQTTUser:     "",
		MQTTPassword: "",
		MQTTClientID: "",
		RedisHost:     "localhost",
		RedisPort:     6379,
		RedisPassword: "",
		RedisDB:       0,
		PostgresHost:     "localhost",
		PostgresPort:     5432,
		PostgresUser:     "mirrorday",
		PostgresPassword: "",
		PostgresDB:       "mirrorday",
		PostgresSSLMode:  "disable",
		PostgresMaxConnections:     10,
		PostgresMaxIdleConnections: 5,
		PostgresConnMaxLifetime:    30 * time.Minute,
		ServiceName: "mirrorday-agent",
		HealthPort:  8080,
		APIPort:     3000,
		LogLevel:    "info",
		LexiconPath:       "",
		DailyImageLimit:   2,
		GenerationTimeout: 120,
		MigrationsDir:     "migrations",
		ImageDir:          "data/images",
		GeminiAPIKey:   "",
		GeminiEndpoint: "https://generativelanguage.googleapis.com/v1beta/models",
		GeminiModel:    "gemini-2.0-flash",
		DiffusionAPIToken: "",
		DiffusionEndpoint: "https://api-inference.huggingface.co/models",
		DiffusionModel:    "stabilityai/stable-diffusion-xl-base-1.0",
		// Scheduler defaults: reminder at 20:00, weekly summary Sunday 18:00
		ReminderHour:      20,
		WeeklySummaryDay:  0,
		WeeklySummaryHour: 18,
		TickIntervalSec:   60,
	}
}

// LoadFromEnv loads configuration from environment variables with MIRRORDAY_ prefix
func (c *Config) LoadFromEnv() {
	// MQTT configuration
	if v := os.Getenv("MIRRORDAY_MQTT_BROKER"); v != "" {
		c.MQTTBroker = v
	}
	if v := os.Getenv("MIRRORDAY_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.MQTTPort = port
		}
	}
	if v := os.Getenv("MIRRORDAY_MQTT_USER"); v != "" {
		c.MQTTUser = v
	}
	if v := os.Getenv("MIRRORDAY_MQTT_PASSWORD"); v != "" {
		c.MQTTPassword = v
	}
	if v := os.Getenv("MIRRORDAY_MQTT_CLIENT_ID"); v != "" {
		c.MQTTClientID = v
	}

	// Redis configuration
	if v := os.Getenv("MIRRORDAY_REDIS_HOST"); v != "" {
		c.RedisHost = v
	}
	if v := os.Getenv("MIRRORDAY_REDIS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.RedisPort = port
		}
	}
	if v := os.Getenv("MIRRORDAY_REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("MIRRORDAY_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.RedisDB = db
		}
	}

	// Postgres configuration
	if v := os.Getenv("MIRRORDAY_POSTGRES_HOST"); v != "" {
		c.PostgresHost = v
	}
	if v := os.Getenv("MIRRORDAY_POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.PostgresPort = port
		}
	}
	if v := os.Getenv("MIRRORDAY_POSTGRES_USER"); v != "" {
		c.PostgresUser = v
	}
	if v := os.Getenv("MIRRORDAY_POSTGRES_PASSWORD"); v != "" {
		c.PostgresPassword = v
	}
	if v := os.Getenv("MIRRORDAY_POSTGRES_DB"); v != "" {
		c.PostgresDB = v
	}
	if v := os.Getenv("MIRRORDAY_POSTGRES_SSLMODE"); v != "" {
		c.PostgresSSLMode = v
	}

	// Service configuration
	if v := os.Getenv("MIRRORDAY_SERVICE_NAME"); v != "" {
		c.ServiceName = v
	}
	if v := os.Getenv("MIRRORDAY_HEALTH_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HealthPort = port
		}
	}
	if v := os.Getenv("MIRRORDAY_API_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.APIPort = port
		}
	}
	if v := os.Getenv("MIRRORDAY_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	// Reflection agent configuration
	if v := os.Getenv("MIRRORDAY_LEXICON_PATH"); v != "" {
		c.LexiconPath = v
	}
	if v := os.Getenv("MIRRORDAY_DAILY_IMAGE_LIMIT"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			c.DailyImageLimit = limit
		}
	}
	if v := os.Getenv("MIRRORDAY_GENERATION_TIMEOUT_SEC"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			c.GenerationTimeout = timeout
		}
	}
	if v := os.Getenv("MIRRORDAY_MIGRATIONS_DIR"); v != "" {
		c.MigrationsDir = v
	}
	if v := os.Getenv("MIRRORDAY_IMAGE_DIR"); v != "" {
		c.ImageDir = v
	}

	// Gemini configuration
	if v := os.Getenv("MIRRORDAY_GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
	if v := os.Getenv("MIRRORDAY_GEMINI_ENDPOINT"); v != "" {
		c.GeminiEndpoint = v
	}
	if v := os.Getenv("MIRRORDAY_GEMINI_MODEL"); v != "" {
		c.GeminiModel = v
	}

	// Diffusion configuration
	if v := os.Getenv("MIRRORDAY_DIFFUSION_API_TOKEN"); v != "" {
		c.DiffusionAPIToken = v
	}
	if v := os.Getenv("MIRRORDAY_DIFFUSION_ENDPOINT"); v != "" {
		c.DiffusionEndpoint = v
	}
	if v := os.Getenv("MIRRORDAY_DIFFUSION_MODEL"); v != "" {
		c.DiffusionModel = v
	}

	// Scheduler agent configuration
	if v := os.Getenv("MIRRORDAY_REMINDER_HOUR"); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			c.ReminderHour = hour
		}
	}
	if v := os.Getenv("MIRRORDAY_WEEKLY_SUMMARY_DAY"); v != "" {
		if day, err := strconv.Atoi(v); err == nil {
			c.WeeklySummaryDay = day
		}
	}
	if v := os.Getenv("MIRRORDAY_WEEKLY_SUMMARY_HOUR"); v != "" {
		if hour, err := strconv.Atoi(v); err == nil {
			c.WeeklySummaryHour = hour
		}
	}
	if v := os.Getenv("MIRRORDAY_TICK_INTERVAL_SEC"); v != "" {
		if interval, err := strconv.Atoi(v); err == nil {
			c.TickIntervalSec = interval
		}
	}
}

// LoadFromFlags parses command-line flags and overrides config values
func (c *Config) LoadFromFlags() {
	// MQTT flags
	pflag.StringVar(&c.MQTTBroker, "mqtt-broker", c.MQTTBroker, "MQTT broker hostname")
	pflag.IntVar(&c.MQTTPort, "mqtt-port", c.MQTTPort, "MQTT broker port")
	pflag.StringVar(&c.MQTTUser, "mqtt-user", c.MQTTUser, "MQTT username")
	pflag.StringVar(&c.MQTTPassword, "mqtt-password", c.MQTTPassword, "MQTT password")
	pflag.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client ID")

	// Redis flags
	pflag.StringVar(&c.RedisHost, "redis-host", c.RedisHost, "Redis hostname")
	pflag.IntVar(&c.RedisPort, "redis-port", c.RedisPort, "Redis port")
	pflag.StringVar(&c.RedisPassword, "redis-password", c.RedisPassword, "Redis password")
	pflag.IntVar(&c.RedisDB, "redis-db", c.RedisDB, "Redis database number")

	// Postgres flags
	pflag.StringVar(&c.PostgresHost, "postgres-host", c.PostgresHost, "Postgres hostname")
	pflag.IntVar(&c.PostgresPort, "postgres-port", c.PostgresPort, "Postgres port")
	pflag.StringVar(&c.PostgresUser, "postgres-user", c.PostgresUser, "Postgres username")
	pflag.StringVar(&c.PostgresPassword, "postgres-password", c.PostgresPassword, "Postgres password")
	pflag.StringVar(&c.PostgresDB, "postgres-db", c.PostgresDB, "Postgres database name")
	pflag.StringVar(&c.PostgresSSLMode, "postgres-sslmode", c.PostgresSSLMode, "Postgres SSL mode")

	// Service flags
	pflag.StringVar(&c.ServiceName, "service-name", c.ServiceName, "Service name")
	pflag.IntVar(&c.HealthPort, "health-port", c.HealthPort, "Health check HTTP port")
	pflag.IntVar(&c.APIPort, "api-port", c.APIPort, "HTTP API port")
	pflag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level (debug, info, warn, error)")

	// Reflection agent flags
	pflag.StringVar(&c.LexiconPath, "lexicon-path", c.LexiconPath, "Path to emotion lexicon YAML overlay (empty for built-in defaults)")
	pflag.IntVar(&c.DailyImageLimit, "daily-image-limit", c.DailyImageLimit, "Maximum image generations per user per day")
	pflag.IntVar(&c.GenerationTimeout, "generation-timeout", c.GenerationTimeout, "Image generation timeout in seconds")
	pflag.StringVar(&c.MigrationsDir, "migrations-dir", c.MigrationsDir, "Directory containing SQL migrations")
	pflag.StringVar(&c.ImageDir, "image-dir", c.ImageDir, "Directory for stored generated images")

	// Gemini flags
	pflag.StringVar(&c.GeminiAPIKey, "gemini-api-key", c.GeminiAPIKey, "Gemini API key")
	pflag.StringVar(&c.GeminiEndpoint, "gemini-endpoint", c.GeminiEndpoint, "Gemini API base endpoint")
	pflag.StringVar(&c.GeminiModel, "gemini-model", c.GeminiModel, "Gemini model name")

	// Diffusion flags
	pflag.StringVar(&c.DiffusionAPIToken, "diffusion-api-token", c.DiffusionAPIToken, "Inference API token for the image renderer")
	pflag.StringVar(&c.DiffusionEndpoint, "diffusion-endpoint", c.DiffusionEndpoint, "Inference API base endpoint")
	pflag.StringVar(&c.DiffusionModel, "diffusion-model", c.DiffusionModel, "Diffusion model identifier")

	// Scheduler agent flags
	pflag.IntVar(&c.ReminderHour, "reminder-hour", c.ReminderHour, "Hour of day (0-23) to publish reflection reminders")
	pflag.IntVar(&c.WeeklySummaryDay, "weekly-summary-day", c.WeeklySummaryDay, "Weekday (0=Sunday) to publish weekly summaries")
	pflag.IntVar(&c.WeeklySummaryHour, "weekly-summary-hour", c.WeeklySummaryHour, "Hour of day (0-23) to publish weekly summaries")
	pflag.IntVar(&c.TickIntervalSec, "tick-interval", c.TickIntervalSec, "Scheduler tick interval in seconds")

	pflag.Parse()
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT broker is required")
	}
	if c.MQTTPort <= 0 || c.MQTTPort > 65535 {
		return fmt.Errorf("MQTT port must be between 1 and 65535")
	}
	if c.RedisHost == "" {
		return fmt.Errorf("Redis host is required")
	}
	if c.RedisPort <= 0 || c.RedisPort > 65535 {
		return fmt.Errorf("Redis port must be between 1 and 65535")
	}
	if c.PostgresHost == "" {
		return fmt.Errorf("Postgres host is required")
	}
	if c.PostgresPort <= 0 || c.PostgresPort > 65535 {
		return fmt.Errorf("Postgres port must be between 1 and 65535")
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("Health port must be between 1 and 65535")
	}
	if c.ServiceName == "" {
		return fmt.Errorf("Service name is required")
	}
	if c.DailyImageLimit <= 0 {
		return fmt.Errorf("daily image limit must be positive")
	}
	if c.ReminderHour < 0 || c.ReminderHour > 23 {
		return fmt.Errorf("reminder hour must be between 0 and 23")
	}
	if c.WeeklySummaryDay < 0 || c.WeeklySummaryDay > 6 {
		return fmt.Errorf("weekly summary day must be between 0 (Sunday) and 6 (Saturday)")
	}
	if c.WeeklySummaryHour < 0 || c.WeeklySummaryHour > 23 {
		return fmt.Errorf("weekly summary hour must be between 0 and 23")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// MQTTAddress returns the full MQTT broker address
func (c *Config) MQTTAddress() string {
	return fmt.Sprintf("tcp://%s:%d", c.MQTTBroker, c.MQTTPort)
}

// RedisAddress returns the full Redis address
func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// PostgresDSN returns the Postgres connection string
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode)
}
