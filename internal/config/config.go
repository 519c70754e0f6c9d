package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config - настройки приложения, собранные из окружения и .env файла
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"5000"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	MaxUploadMB int    `env:"MAX_UPLOAD_MB" envDefault:"10"`

	// Redis Config
	RedisAddr        string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass        string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	IncidentCacheTTL time.Duration `env:"INCIDENT_CACHE_TTL" envDefault:"1m"`
	BroadcastChannel string        `env:"BROADCAST_CHANNEL" envDefault:"incidents:new"`

	// Classifier Config
	OpenAIKey     string        `env:"OPENAI_API_KEY"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	OpenAITimeout time.Duration `env:"OPENAI_TIMEOUT" envDefault:"0"`

	// Push Config
	PushbulletKey     string  `env:"PUSHBULLET_API_KEY"`
	PushbulletBaseURL string  `env:"PUSHBULLET_BASE_URL" envDefault:"https://api.pushbullet.com"`
	PushChannelTag    string  `env:"PUSH_CHANNEL_TAG" envDefault:"untdemoalert"`
	PushRateLimit     float64 `env:"PUSH_RATE_LIMIT" envDefault:"1"`
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		HTTPPort:          getEnv("HTTP_PORT", "5000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		MaxUploadMB:       getEnvAsInt("MAX_UPLOAD_MB", 10),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		IncidentCacheTTL:  getEnvAsDuration("INCIDENT_CACHE_TTL", time.Minute),
		BroadcastChannel:  getEnv("BROADCAST_CHANNEL", "incidents:new"),
		OpenAIKey:         getEnvFirst("OPENAI_API_KEY", "OPEN_API_KEY"),
		OpenAIModel:       getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:     os.Getenv("OPENAI_BASE_URL"),
		OpenAITimeout:     getEnvAsDuration("OPENAI_TIMEOUT", 0),
		PushbulletKey:     getEnvFirst("PUSHBULLET_API_KEY", "PUSH_BULLET_KEY"),
		PushbulletBaseURL: getEnv("PUSHBULLET_BASE_URL", "https://api.pushbullet.com"),
		PushChannelTag:    getEnv("PUSH_CHANNEL_TAG", "untdemoalert"),
		PushRateLimit:     getEnvAsFloat("PUSH_RATE_LIMIT", 1),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	return cfg, nil
}

// MaxUploadBytes возвращает лимит multipart-памяти в байтах
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvFirst возвращает первое непустое значение из списка ключей.
// Старые имена переменных (OPEN_API_KEY, PUSH_BULLET_KEY) поддерживаются для совместимости.
func getEnvFirst(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return ""
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
