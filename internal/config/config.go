// Package config loads service configuration from environment variables,
// falling back to development defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the runtime settings for the chat service. RedisAddr and
// ArchiveDSN are optional: leaving them empty disables the name
// reservation API and the message archive respectively.
type Config struct {
	Addr           string
	Env            string
	AllowedOrigins []string
	MaxMessageSize int64
	HistoryLimit   int
	RedisAddr      string
	ArchiveDSN     string
	ReserveTTL     time.Duration
}

func defaults() Config {
	return Config{
		Addr:           ":8080",
		Env:            "development",
		AllowedOrigins: []string{"*"},
		MaxMessageSize: 64 * 1024,
		HistoryLimit:   1000,
		ReserveTTL:     5 * time.Minute,
	}
}

// Load reads configuration from the environment. Unset or unparsable
// values keep their defaults.
func Load() Config {
	cfg := defaults()

	if addr := os.Getenv("SERVER_ADDR"); addr != "" {
		if !strings.Contains(addr, ":") {
			addr = ":" + addr
		}
		cfg.Addr = addr
	}

	if env := os.Getenv("ENV"); env != "" {
		cfg.Env = env
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = splitOrigins(origins)
	}

	if size := os.Getenv("MAX_MESSAGE_SIZE"); size != "" {
		cfg.MaxMessageSize = parseInt64(size, cfg.MaxMessageSize)
	}

	if limit := os.Getenv("HISTORY_LIMIT"); limit != "" {
		cfg.HistoryLimit = parseInt(limit, cfg.HistoryLimit)
	}

	if ttl := os.Getenv("RESERVE_TTL_SECONDS"); ttl != "" {
		if seconds := parseInt(ttl, 0); seconds > 0 {
			cfg.ReserveTTL = time.Duration(seconds) * time.Second
		}
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.ArchiveDSN = os.Getenv("ARCHIVE_DSN")

	return cfg
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseInt64(value string, fallback int64) int64 {
	if parsed, err := strconv.ParseInt(value, 10, 64); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}

func parseInt(value string, fallback int) int {
	if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
		return parsed
	}
	return fallback
}
