package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is only acceptable outside production
const DefaultJWTSecret = "smartpyme_dev_secret"

type Config struct {
	Port        string
	Env         string // development | production
	GinMode     string
	DBDriver    string // sqlite | postgres
	DBDSN       string
	JWTSecret   []byte
	JWTHours    int
	PlatformKey string
	UploadDir   string
	LogLevel    string
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Load reads configuration from the environment. A .env file is optional.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Env:         getEnv("APP_ENV", "development"),
		GinMode:     getEnv("GIN_MODE", ""),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBDSN:       getEnv("DB_DSN", "smartpyme.db"),
		JWTSecret:   []byte(getEnv("JWT_SECRET", DefaultJWTSecret)),
		JWTHours:    getEnvAsInt("JWT_EXPIRATION_HOURS", 24),
		PlatformKey: getEnv("PLATFORM_KEY", ""),
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
