package helix

import (
	"os"
	"runtime"
	"strconv"
)

type WorldConfig struct {
	WorldID       string
	Workers       int
	LogLevel      string
	StatsdAddress string
	StatsdTags    string
}

func GetWorldConfig() WorldConfig {
	return WorldConfig{
		WorldID:       getEnv("HELIX_WORLD_ID", "world"),
		Workers:       getEnvInt("HELIX_WORKERS", runtime.NumCPU()),
		LogLevel:      getEnv("HELIX_LOG_LEVEL", "info"),
		StatsdAddress: getEnv("HELIX_STATSD_ADDRESS", ""),
		StatsdTags:    getEnv("HELIX_STATSD_TAGS", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
