package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port                    string `envconfig:"PORT" default:"8080"`
	Env                     string `envconfig:"ENV" default:"development"`
	Storage                 string `envconfig:"STORAGE" default:"mongo"`
	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH"`
	FirebaseProjectID       string `envconfig:"FIREBASE_PROJECT_ID"`
	PostgresConnStr         string `envconfig:"POSTGRES_CONN_STR"`
	MongoURI                string `envconfig:"MONGO_URI"`
	MongoDatabase           string `envconfig:"MONGO_DATABASE" default:"socialmedia"`
	RedisAddr               string `envconfig:"REDIS_ADDR"`
	MetricsPort             string `envconfig:"METRICS_PORT" default:"9090"`
	JWTSecret               string `envconfig:"JWT_SECRET"`

	FeedDefaultBatch     int           `envconfig:"FEED_DEFAULT_BATCH" default:"20"`
	FeedMaxBatch         int           `envconfig:"FEED_MAX_BATCH" default:"100"`
	FeedQueryTimeout     time.Duration `envconfig:"FEED_QUERY_TIMEOUT" default:"5s"`
	FeedCacheTTL         time.Duration `envconfig:"FEED_CACHE_TTL" default:"5s"`
	PopularLikeWeight    float64       `envconfig:"POPULAR_LIKE_WEIGHT" default:"2"`
	PopularCommentWeight float64       `envconfig:"POPULAR_COMMENT_WEIGHT" default:"1"`
	PopularViewWeight    float64       `envconfig:"POPULAR_VIEW_WEIGHT" default:"0.5"`
}

// developmentJWTSecret signs local tokens when ENV is development and
// JWT_SECRET is unset. Other environments must set JWT_SECRET.
const developmentJWTSecret = "development-only-jwt-secret"

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable not set")
		}
		cfg.JWTSecret = developmentJWTSecret
	}

	switch cfg.Storage {
	case "mongo":
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("MONGO_URI environment variable not set")
		}
		if cfg.PostgresConnStr == "" {
			return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
		}
	case "memory":
	default:
		return nil, fmt.Errorf("unknown STORAGE %q, want mongo or memory", cfg.Storage)
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs in a development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}
