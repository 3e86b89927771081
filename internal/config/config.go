package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMaxImageBytes  = 10 << 20
	defaultGatewayTimeout = 15 * time.Second
)

type Config struct {
	ListenAddr      string
	GatewayBackend  string
	GatewayURL      string
	GatewayToken    string
	GatewayTimeout  time.Duration
	DBPath          string
	MaxImageBytes   int64
	CollationLocale string
	LogLevel        string
	LogFile         string
}

// Load reads the configuration from the environment. Variables from the file
// named by ENV_FILE (default ".env") are applied first without overriding
// anything already set; a missing file is not an error.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	return &Config{
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		GatewayBackend:  getEnv("GATEWAY_BACKEND", "local"),
		GatewayURL:      getEnv("GATEWAY_URL", "http://localhost:3000"),
		GatewayToken:    getEnv("GATEWAY_TOKEN", ""),
		GatewayTimeout:  getEnvDuration("GATEWAY_TIMEOUT", defaultGatewayTimeout),
		DBPath:          getEnv("DB_PATH", "/data/aliados.db"),
		MaxImageBytes:   getEnvInt64("MAX_IMAGE_BYTES", defaultMaxImageBytes),
		CollationLocale: getEnv("COLLATION_LOCALE", "es"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFile:         getEnv("LOG_FILE", ""),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// getEnvInt64 falls back to defaultVal when the value is unset, malformed or
// not positive.
func getEnvInt64(key string, defaultVal int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultVal
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return defaultVal
	}
	return v
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultVal
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		if secs <= 0 {
			return defaultVal
		}
		return time.Duration(secs) * time.Second
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
