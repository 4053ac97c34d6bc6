package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`

	// Database (PostgreSQL — источник истины справочника)
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Redis — кэш снапшота настроек и сессионные токены
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string

	// JWT Settings — секрет БЕЗ envconfig тега
	JWTSecret       string
	AccessTokenTTL  time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"15m"`
	RefreshTokenTTL time.Duration `envconfig:"JWT_REFRESH_TOKEN_TTL" default:"168h"` // 7 days

	// Google OAuth вход для администраторов (пусто = выключено)
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string
	GoogleRedirectURL  string `envconfig:"GOOGLE_REDIRECT_URL"`

	// RabbitMQ — публикация доменных событий (пусто = выключено)
	RabbitMQURL string `envconfig:"RABBITMQ_URL"`
	EventsQueue string `envconfig:"EVENTS_QUEUE_NAME" default:"directory_events"`

	// OpenAI — извлечение данных о проповедях (пусто = выключено)
	OpenAIAPIKey string
	OpenAIModel  string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`

	// Путь к HTML-шаблонам
	TemplatesGlob string `envconfig:"TEMPLATES_GLOB" default:"./web/templates/*.html"`

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			} else {
				log.Printf("Loaded configuration from %s", envFilePath)
			}
		}
	} else {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	// Секреты: сначала файл Docker Secret, затем переменная окружения.
	cfg.DBPassword = readSecretOrEnv("db_password", "DB_PASSWORD")
	cfg.RedisPassword = readSecretOrEnv("redis_password", "REDIS_PASSWORD")
	cfg.JWTSecret = readSecretOrEnv("jwt_secret", "JWT_SECRET")
	cfg.GoogleClientSecret = readSecretOrEnv("google_client_secret", "GOOGLE_CLIENT_SECRET")
	cfg.OpenAIAPIKey = readSecretOrEnv("openai_api_key", "OPENAI_API_KEY")

	if cfg.DBPassword == "" {
		return nil, fmt.Errorf("database password is not set (secret db_password or env DB_PASSWORD)")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is not set (secret jwt_secret or env JWT_SECRET)")
	}

	return &cfg, nil
}

// readSecretOrEnv читает Docker Secret, при его отсутствии — переменную окружения.
func readSecretOrEnv(secretName, envName string) string {
	filePath := fmt.Sprintf("/run/secrets/%s", secretName)
	if secretBytes, err := os.ReadFile(filePath); err == nil {
		if secret := strings.TrimSpace(string(secretBytes)); secret != "" {
			return secret
		}
	}
	return os.Getenv(envName)
}
