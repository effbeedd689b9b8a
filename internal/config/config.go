package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Local    LocalStorageConfig
	Events   EventsConfig
	Tracing  TracingConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	MaxUploadBytes     int
	StatsCacheTTL      time.Duration
}

// DatabaseConfig selects the storage backend. STORAGE_BACKEND is either
// "relational" (DB_DRIVER picks postgres or sqlite) or "local".
type DatabaseConfig struct {
	Backend    string
	Driver     string
	Connection string
}

type LocalStorageConfig struct {
	Engine       string // "cache" or "redis"
	SnapshotPath string
	Namespace    string
	RedisURL     string
}

type EventsConfig struct {
	Topic   string
	NatsURL string // empty disables NATS
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	SampleRatio float64
	Environment string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	env := getEnv("GO_ENV", "development")
	defaultDB := "data/notes-dev.db"
	if env == "production" {
		defaultDB = "data/notes.db"
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        env,
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			MaxUploadBytes:     getEnvAsInt("MAX_UPLOAD_BYTES", 10*1024*1024),
			StatsCacheTTL:      getEnvAsDuration("STATS_CACHE_TTL", 30*time.Second),
		},
		Database: DatabaseConfig{
			Backend:    getEnv("STORAGE_BACKEND", "relational"),
			Driver:     getEnv("DB_DRIVER", "sqlite"),
			Connection: getEnv("DB_CONNECTION_STRING", defaultDB),
		},
		Local: LocalStorageConfig{
			Engine:       getEnv("LOCAL_KV_ENGINE", "cache"),
			SnapshotPath: getEnv("LOCAL_SNAPSHOT_PATH", "data/notes-local"),
			Namespace:    getEnv("LOCAL_KV_NAMESPACE", "notes"),
			RedisURL:     getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Events: EventsConfig{
			Topic:   getEnv("NOTE_EVENTS_TOPIC", "NOTE_EVENTS"),
			NatsURL: getEnv("NATS_URL", ""),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			SampleRatio: getEnvAsFloat("OTEL_TRACES_SAMPLER_ARG", 1),
			Environment: env,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("30s") or plain seconds ("30").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	if seconds, err := strconv.Atoi(strValue); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}
