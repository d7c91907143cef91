package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-based settings
type Config struct {
	ServerAddress  string
	DatabaseURL    string
	MigrationsPath string

	Location Location

	AladhanBaseURL string
	FetchTimeout   time.Duration

	// SyncCron, when set, runs the sync engine on an in-process schedule
	// in addition to the POST /sync trigger.
	SyncCron string

	RedisAddress  string
	RedisUsername string
	RedisPassword string

	UseSpaces       bool
	SpacesEndpoint  string
	SpacesRegion    string
	SpacesBucket    string
	SpacesAccessKey string
	SpacesSecretKey string
	BackupDir       string
}

// Location is the single configured coordinate set the service answers for.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	Timezone  string // IANA id, e.g. "Asia/Qatar"
	Method    int    // Aladhan calculation method code
	MethodTag string // label stamped onto stored entries
	Tune      string // per-prayer minute offsets, neutral by default
}

// Load reads configuration from the environment. A .env file is applied
// first when present so local runs match deployed ones.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg := &Config{
		ServerAddress:  getEnv("SERVER_ADDRESS", ":8080"),
		DatabaseURL:    dbURL,
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		Location: Location{
			Name:      getEnv("LOCATION_NAME", "doha"),
			Latitude:  getEnvFloat("LOCATION_LATITUDE", 25.2854),
			Longitude: getEnvFloat("LOCATION_LONGITUDE", 51.5310),
			Timezone:  getEnv("LOCATION_TIMEZONE", "Asia/Qatar"),
			Method:    getEnvInt("CALC_METHOD", 2),
			MethodTag: getEnv("CALC_METHOD_TAG", "ISNA"),
			Tune:      getEnv("CALC_TUNE", "0,0,0,0,0,0,0,0,0"),
		},

		AladhanBaseURL: getEnv("ALADHAN_BASE_URL", "http://api.aladhan.com/v1/calendar"),
		FetchTimeout:   getEnvDuration("FETCH_TIMEOUT", 10*time.Second),

		SyncCron: os.Getenv("SYNC_CRON"),

		RedisAddress:  os.Getenv("REDIS_ADDRESS"),
		RedisUsername: os.Getenv("REDIS_USERNAME"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		UseSpaces:       os.Getenv("USE_SPACES") == "true",
		SpacesEndpoint:  os.Getenv("SPACES_ENDPOINT"),
		SpacesRegion:    os.Getenv("SPACES_REGION"),
		SpacesBucket:    getEnv("SPACES_BUCKET", "waqf-qatar-data"),
		SpacesAccessKey: os.Getenv("SPACES_ACCESS_KEY"),
		SpacesSecretKey: os.Getenv("SPACES_SECRET_KEY"),
		BackupDir:       getEnv("BACKUP_DIR", "./backups"),
	}

	if _, err := time.LoadLocation(cfg.Location.Timezone); err != nil {
		return nil, fmt.Errorf("invalid LOCATION_TIMEZONE %q: %w", cfg.Location.Timezone, err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
