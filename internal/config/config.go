package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL       string
	JWTSecret         string
	JWTRefreshSecret  string
	AccessTokenTTL    time.Duration
	RefreshTokenTTL   time.Duration
	Port              string
	FCMServiceAccount string
	LogLevel          string
	LogFormat         string
	AuthRateLimit     float64
	AuthRateBurst     int
	CORSOrigins       string
	UploadDir         string
}

// Load reads configuration from the environment. Values in a .env file in the
// working directory are applied first without overriding real variables.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "habithome.db"),
		JWTSecret:         getEnv("JWT_SECRET", "habithome-access-secret-change-in-production"),
		JWTRefreshSecret:  getEnv("JWT_REFRESH_SECRET", "habithome-refresh-secret-change-in-production"),
		AccessTokenTTL:    getDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:   getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		Port:              getEnv("PORT", "8080"),
		FCMServiceAccount: getEnv("FCM_SERVICE_ACCOUNT", ""),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "text"),
		AuthRateLimit:     getFloat("AUTH_RATE_LIMIT", 5),
		AuthRateBurst:     getInt("AUTH_RATE_BURST", 10),
		CORSOrigins:       getEnv("CORS_ORIGINS", "*"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
	}
}

// IsPostgres reports whether DatabaseURL points at PostgreSQL rather than a
// SQLite file.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}
