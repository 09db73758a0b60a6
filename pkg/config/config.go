package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const devJWTSecret = "supersecretjwtkey"

// Notification store backends
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Port            string        `env:"PORT" env-default:"8080"`
	Env             string        `env:"ENV" env-default:"development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`

	PostgresUrl   string `env:"POSTGRES_CONN_STR" env-required:"true"`
	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE" env-default:"healthtracker"`

	JWTSecret   string        `env:"JWT_SECRET" env-default:"supersecretjwtkey"`
	JWTTokenTTL time.Duration `env:"JWT_TOKEN_TTL" env-default:"72h"`

	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH"`

	Log           LogConfig
	Notifications NotificationConfig
	Email         EmailConfig
	Assistant     AssistantConfig
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// NotificationConfig holds reminder scheduling and notification store settings.
type NotificationConfig struct {
	Store           string        `env:"NOTIFICATION_STORE" env-default:"file"`
	FilePath        string        `env:"NOTIFICATION_FILE" env-default:"data/notifications.json"`
	Capacity        int           `env:"NOTIFICATION_CAPACITY" env-default:"100"`
	FireConcurrency int           `env:"REMINDER_FIRE_CONCURRENCY" env-default:"8"`
	DeliveryTimeout time.Duration `env:"DELIVERY_TIMEOUT" env-default:"15s"`
	// RecoverOverdue arms active reminders that fell due while the process was down.
	RecoverOverdue bool `env:"RECOVER_OVERDUE_REMINDERS" env-default:"false"`
}

// EmailConfig holds SendGrid settings. An empty API key disables email.
type EmailConfig struct {
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	FromEmail      string `env:"FROM_EMAIL" env-default:"noreply@healthtracker.com"`
	FromName       string `env:"FROM_NAME" env-default:"Health Management System"`
	// UserEmail receives reminders whose owner has no address, and test notifications.
	UserEmail string `env:"USER_EMAIL"`
}

// AssistantConfig holds the chat assistant settings. An empty API key disables it.
type AssistantConfig struct {
	DeepSeekAPIKey string `env:"DEEPSEEK_API_KEY"`
	Model          string `env:"ASSISTANT_MODEL" env-default:"deepseek-chat"`
}

// Load reads an optional .env file, then environment variables with defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// Validate checks enum values and production-only requirements.
func (c *Config) Validate() error {
	if c.PostgresUrl == "" {
		return fmt.Errorf("POSTGRES_CONN_STR is required")
	}

	switch c.Notifications.Store {
	case StoreFile, StorePostgres:
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when NOTIFICATION_STORE=mongo")
		}
	default:
		return fmt.Errorf("NOTIFICATION_STORE must be one of file, postgres, mongo; got %q", c.Notifications.Store)
	}

	if c.Notifications.Capacity <= 0 {
		return fmt.Errorf("NOTIFICATION_CAPACITY must be positive, got %d", c.Notifications.Capacity)
	}
	if c.Notifications.FireConcurrency <= 0 {
		return fmt.Errorf("REMINDER_FIRE_CONCURRENCY must be positive, got %d", c.Notifications.FireConcurrency)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.Log.Format)
	}

	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == devJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
