package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all application configuration.
type AppConfig struct {
	Port      string
	Env       string
	MongoMode string
	MongoURI  string
	MongoDB   string

	PasetoSecretKey []byte
	JWTSecret       []byte
	JWTTTL          time.Duration

	CloudinaryURL string
	UploadDir     string

	RedisAddr string
	CacheTTL  time.Duration

	KafkaBrokers    []string
	KafkaOrderTopic string

	AllowedOrigins     []string
	RateLimitPerMinute int
}

// Load reads configuration from .env and the environment and validates all of it.
func Load() (*AppConfig, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateMongo(); err != nil {
		return nil, err
	}
	if err := cfg.validateAuth(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadForTools is Load without the token secrets, for maintenance commands that
// only talk to the database.
func LoadForTools() (*AppConfig, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := cfg.validateMongo(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether the app runs in production mode.
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func read() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &AppConfig{
		Port:            getEnv("PORT", "5000"),
		Env:             getEnv("ENVIRONMENT", "development"),
		MongoMode:       getEnv("MONGO_MODE", "local"),
		MongoDB:         getEnv("MONGO_DB", "storefront"),
		CloudinaryURL:   getEnv("CLOUDINARY_URL", ""),
		UploadDir:       getEnv("UPLOAD_DIR", "static/uploads"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		KafkaBrokers:    splitCSV(getEnv("KAFKA_BROKERS", "")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "orders.events"),
		AllowedOrigins:  splitCSV(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		PasetoSecretKey: []byte(getEnv("PASETO_SECRET_KEY", "")),
		JWTSecret:       []byte(strings.TrimSpace(getEnv("JWT_SECRET", ""))),
	}

	// Atlas and local URIs are kept apart so switching is a single variable.
	if cfg.MongoMode == "atlas" {
		cfg.MongoURI = getEnv("MONGO_URI_ATLAS", "")
	} else {
		cfg.MongoURI = getEnv("MONGO_URI_LOCAL", "mongodb://localhost:27017/storefront")
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 100); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validateMongo() error {
	if c.MongoURI == "" {
		if c.MongoMode == "atlas" {
			return errors.New("MONGO_MODE 'atlas' but MONGO_URI_ATLAS is not set")
		}
		return errors.New("MONGO_URI_LOCAL is empty")
	}
	return nil
}

func (c *AppConfig) validateAuth() error {
	if len(c.PasetoSecretKey) != 32 {
		return errors.New("PASETO_SECRET_KEY must be 32 characters long")
	}
	if len(c.JWTSecret) == 0 {
		return errors.New("JWT_SECRET is not set")
	}
	if c.RateLimitPerMinute <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, strings.TrimSuffix(t, "/"))
		}
	}
	return out
}
