package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port             int
	NatsURL          string
	NatsToken        string
	DatabaseURL      string
	LogLevel         string
	APIToken         string
	ContextID        string
	DatafileURL      string
	DatafileToken    string
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	ArtifactCacheTTL int // seconds
}

func Load() Config {
	return Config{
		Port:             envInt("LOOM_PORT", 8760),
		NatsURL:          envStr("NATS_URL", "nats://hermes:4222"),
		NatsToken:        envStr("NATS_TOKEN", ""),
		DatabaseURL:      envStr("DATABASE_URL", ""),
		LogLevel:         envStr("LOG_LEVEL", "info"),
		APIToken:         envStr("LOOM_API_TOKEN", ""),
		ContextID:        envStr("LOOM_CONTEXT_ID", ""),
		DatafileURL:      envStr("DATAFILE_URL", ""),
		DatafileToken:    envStr("DATAFILE_TOKEN", ""),
		RedisAddr:        envStr("REDIS_ADDR", ""),
		RedisPassword:    envStr("REDIS_PASSWORD", ""),
		RedisDB:          envInt("REDIS_DB", 0),
		ArtifactCacheTTL: envInt("ARTIFACT_CACHE_TTL", 900),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
