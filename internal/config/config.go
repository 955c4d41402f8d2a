package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// Server
	Port    string
	BaseURL string

	// Database
	DBDriver string // "sqlite" or "postgres"
	DBPath   string // SQLite file path
	DBURL    string // PostgreSQL connection string

	// Guild Wars 2 API
	GW2BaseURL   string
	GW2RateLimit float64 // requests per second
	GW2Burst     int

	// Posts backend
	BackendURL string

	// Skin snapshot
	SkinStore         string // "memory", "file", "redis" or "database"
	SkinSnapshotPath  string
	SkinCacheMaxAge   time.Duration
	RedisAddr         string
	RedisPassword     string
	TagRequestsPerMin int

	// Sync
	SyncSchedule  string // cron expression
	SyncOnStartup bool
}

// LoadDotEnv reads a .env file into the process environment when present.
// Existing variables win over file values.
func LoadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		log.Debug().Str("path", path).Msg("no .env file loaded")
		return
	}
	log.Info().Str("path", path).Msg("loaded environment from .env")
}

func Load() *Config {
	return &Config{
		Port:              getEnv("PORT", "8080"),
		BaseURL:           getEnv("BASE_URL", "http://localhost:3000"),
		DBDriver:          getEnv("DB_DRIVER", "sqlite"),
		DBPath:            getEnv("DB_PATH", "./data/gw2style.db"),
		DBURL:             getEnv("DATABASE_URL", ""),
		GW2BaseURL:        getEnv("GW2_BASE_URL", "https://api.guildwars2.com"),
		GW2RateLimit:      getEnvFloat("GW2_RATE_LIMIT", 5),
		GW2Burst:          getEnvInt("GW2_BURST", 10),
		BackendURL:        getEnv("BACKEND_API_URL", "http://localhost:3000"),
		SkinStore:         strings.ToLower(getEnv("SKIN_STORE", "database")),
		SkinSnapshotPath:  getEnv("SKIN_SNAPSHOT_PATH", "./cache/skin.json"),
		SkinCacheMaxAge:   getEnvDuration("SKIN_CACHE_MAX_AGE", 30*24*time.Hour),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		TagRequestsPerMin: getEnvInt("TAG_REQUESTS_PER_MIN", 30),
		SyncSchedule:      getEnv("SYNC_SCHEDULE", "0 4 1 * *"), // 4am on the 1st of each month
		SyncOnStartup:     getEnvBool("SYNC_ON_STARTUP", true),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	val = strings.ToLower(val)
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return f
}

// getEnvDuration accepts Go durations ("720h") or a bare number of days ("30").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	if days, err := strconv.Atoi(val); err == nil {
		return time.Duration(days) * 24 * time.Hour
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
