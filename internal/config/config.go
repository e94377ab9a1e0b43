package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env    string
	Server ServerConfig
	AI     AIConfig
}

type ServerConfig struct {
	Host           string        `env:"SERVER_HOST" validate:"required"`
	Port           int           `env:"SERVER_PORT" validate:"gt=0,lte=65535"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout    time.Duration `env:"SERVER_IDLE_TIMEOUT" validate:"gt=0"`
	BodyLimit      string        `env:"SERVER_BODY_LIMIT" validate:"required"`
	StaticDir      string        `env:"STATIC_DIR" validate:"required"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" validate:"omitempty,dive,url"`
}

type AIConfig struct {
	APIKey             string        `env:"GEMINI_API_KEY"`
	BaseURL            string        `env:"GEMINI_BASE_URL" validate:"required,url"`
	Model              string        `env:"GEMINI_MODEL" validate:"required"`
	Timeout            time.Duration `env:"AI_TIMEOUT" validate:"gt=0"`
	RateLimitPerMinute int           `env:"AI_RATE_LIMIT_PER_MINUTE" validate:"gte=0"`
	RateLimitBurst     int           `env:"AI_RATE_LIMIT_BURST" validate:"gt=0"`
}

const (
	defaultModel   = "gemini-1.5-flash"
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
)

// Load загружает конфигурацию приложения из окружения и .env.
// Ключ Gemini не обязателен: без него сервер стартует, но AI-маршруты отвечают 500.
func Load() (Config, error) {
	cfg := Config{}

	if err := loadEnv(); err != nil {
		return cfg, err
	}

	cfg.Env = getEnv("APP_ENV", "local")

	serverPort, err := parseIntEnv("SERVER_PORT", 5173)
	if err != nil {
		return cfg, err
	}

	readTimeout, err := parseDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return cfg, err
	}

	// Must outlive the upstream call, otherwise the reply is cut mid-write.
	writeTimeout, err := parseDurationEnv("SERVER_WRITE_TIMEOUT", 45*time.Second)
	if err != nil {
		return cfg, err
	}

	idleTimeout, err := parseDurationEnv("SERVER_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return cfg, err
	}

	cfg.Server = ServerConfig{
		Host:           getEnv("SERVER_HOST", "0.0.0.0"),
		Port:           serverPort,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		BodyLimit:      getEnv("SERVER_BODY_LIMIT", "2M"),
		StaticDir:      getEnv("STATIC_DIR", "web"),
		AllowedOrigins: parseCSVEnv("CORS_ALLOWED_ORIGINS"),
	}

	aiTimeout, err := parseDurationEnv("AI_TIMEOUT", 30*time.Second)
	if err != nil {
		return cfg, err
	}

	aiRateLimitPerMinute, err := parseIntEnv("AI_RATE_LIMIT_PER_MINUTE", 0)
	if err != nil {
		return cfg, err
	}

	aiRateLimitBurst, err := parseIntEnv("AI_RATE_LIMIT_BURST", 10)
	if err != nil {
		return cfg, err
	}

	cfg.AI = AIConfig{
		APIKey:             strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		BaseURL:            getEnv("GEMINI_BASE_URL", defaultBaseURL),
		Model:              getEnv("GEMINI_MODEL", defaultModel),
		Timeout:            aiTimeout,
		RateLimitPerMinute: aiRateLimitPerMinute,
		RateLimitBurst:     aiRateLimitBurst,
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Addr возвращает адрес для net/http сервера.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c Config) validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("env"); name != "" {
			return name
		}
		return field.Name
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("validate config: %w", err)
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		messages = append(messages, describe(fieldErr))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

func describe(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fieldErr.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fieldErr.Field(), fieldErr.Param())
	case "gte":
		return fmt.Sprintf("%s must not be negative", fieldErr.Field())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fieldErr.Field(), fieldErr.Param())
	case "url":
		return fmt.Sprintf("%s must be a url", fieldErr.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fieldErr.Field(), fieldErr.Tag())
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func parseIntEnv(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}

	return parsed, nil
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}

	return parsed, nil
}

func parseCSVEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func loadEnv() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	return nil
}
