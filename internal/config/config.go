package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит параметры запуска sandbox API сервера.
type Config struct {
	Env              string
	HTTPPort         string
	DatabaseURL      string
	MigrationsPath   string
	JWTSecret        string
	AccessTokenTTL   time.Duration
	MediaStoragePath string
	MaxUploadSizeMB  int64
	PublicBaseURL    string
	AllowedOrigins   []string
	RateLimitLimit   int64
	RateLimitPeriod  time.Duration
	ReportStaleAfter time.Duration
	JanitorSchedule  string
	LogLevel         string
}

// ClientConfig хранит параметры CLI клиента.
type ClientConfig struct {
	Env         string
	APIBaseURL  string
	HTTPTimeout time.Duration
	Token       string
	UserID      int64
	LogLevel    string
}

// Load читает переменные окружения и возвращает конфигурацию сервера.
func Load() (*Config, error) {
	loadDotEnv()

	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:              env,
		HTTPPort:         getEnv("HTTP_PORT", "8000"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		MigrationsPath:   getEnv("MIGRATIONS_PATH", "./migrations"),
		MediaStoragePath: getEnv("MEDIA_STORAGE_PATH", "./storage/media"),
		JanitorSchedule:  getEnv("JANITOR_SCHEDULE", "@hourly"),
		LogLevel:         getEnv("LOG_LEVEL", ""),
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if env == "production" {
		if len(jwtSecret) < 32 {
			return nil, fmt.Errorf("config: JWT_SECRET обязателен и должен быть не менее 32 символов в production")
		}
	} else if jwtSecret == "" {
		jwtSecret = "accident-sandbox-secret-development-only"
		log.Printf("config: WARNING - используется дефолтный JWT_SECRET, измените в production!")
	}
	cfg.JWTSecret = jwtSecret

	cfg.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://127.0.0.1:"+cfg.HTTPPort), "/")

	originsStr := getEnv("CORS_ALLOWED_ORIGINS", "")
	if originsStr == "" {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	} else {
		for _, origin := range strings.Split(originsStr, ",") {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, strings.TrimSpace(origin))
		}
	}

	var err error
	if cfg.AccessTokenTTL, err = parseDuration("ACCESS_TOKEN_TTL", "24h"); err != nil {
		return nil, err
	}
	if cfg.MaxUploadSizeMB, err = parseInt64("MAX_UPLOAD_MB", "10"); err != nil {
		return nil, err
	}
	if cfg.RateLimitLimit, err = parseInt64("RATE_LIMIT_LIMIT", "30"); err != nil {
		return nil, err
	}
	if cfg.RateLimitPeriod, err = parseDuration("RATE_LIMIT_PERIOD", "1m"); err != nil {
		return nil, err
	}
	if cfg.ReportStaleAfter, err = parseDuration("REPORT_STALE_AFTER", "72h"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadClient читает конфигурацию клиента. Базовый адрес задаётся один раз на запуск.
func LoadClient() (*ClientConfig, error) {
	loadDotEnv()

	cfg := &ClientConfig{
		Env:        getEnv("APP_ENV", "development"),
		APIBaseURL: strings.TrimRight(getEnv("REPORTER_API_BASE_URL", "http://127.0.0.1:8000"), "/"),
		Token:      getEnv("REPORTER_TOKEN", ""),
		LogLevel:   getEnv("LOG_LEVEL", ""),
	}

	var err error
	if cfg.HTTPTimeout, err = parseDuration("REPORTER_HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.UserID, err = parseInt64("REPORTER_USER_ID", "0"); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv загружает .env только если он существует, иначе используем системные переменные.
func loadDotEnv() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		log.Printf("config: не удалось прочитать .env: %v", err)
	}
}

// getEnv возвращает значение переменной окружения или дефолт.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	v := getEnv(key, fallback)
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить длительность %s=%q: %w", key, v, err)
	}
	return dur, nil
}

func parseInt64(key, fallback string) (int64, error) {
	v := getEnv(key, fallback)
	num, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: не удалось распарсить число %s=%q: %w", key, v, err)
	}
	return num, nil
}
