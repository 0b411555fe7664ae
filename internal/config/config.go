// Package config validates process configuration from the environment,
// grounded on RoseWrightdev-Video-Conferencing's internal/v1/config package:
// accumulate every violation instead of failing on the first one, and
// redact secrets before logging the validated result.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// Config is the lobby server's validated process configuration.
type Config struct {
	BindAddr         string
	HandshakeTimeout time.Duration
	MaxFrameBytes    int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisEnabled  bool

	DevMode bool
}

// Load validates every LOBBY_* environment variable at once and returns a
// single combined error listing every violation found, the way
// RoseWrightdev's ValidateEnv does.
func Load(getenv func(string) string) (*Config, error) {
	var problems []string
	cfg := &Config{
		BindAddr:         getenvOrDefault(getenv, "LOBBY_BIND_ADDR", "0.0.0.0:7998"),
		HandshakeTimeout: 5 * time.Second,
		MaxFrameBytes:    1024,
	}

	if v := getenv("LOBBY_HANDSHAKE_TIMEOUT_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil || ms <= 0 {
			problems = append(problems, fmt.Sprintf("LOBBY_HANDSHAKE_TIMEOUT_MS must be a positive integer (got %q)", v))
		} else {
			cfg.HandshakeTimeout = time.Duration(ms) * time.Millisecond
		}
	}

	if v := getenv("LOBBY_MAX_FRAME_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			problems = append(problems, fmt.Sprintf("LOBBY_MAX_FRAME_BYTES must be a positive integer (got %q)", v))
		} else {
			cfg.MaxFrameBytes = n
		}
	}

	cfg.RedisAddr = getenv("LOBBY_REDIS_ADDR")
	cfg.RedisEnabled = cfg.RedisAddr != ""
	if cfg.RedisEnabled && !isValidHostPort(cfg.RedisAddr) {
		problems = append(problems, fmt.Sprintf("LOBBY_REDIS_ADDR must be in format 'host:port' (got %q)", cfg.RedisAddr))
	}
	cfg.RedisPassword = getenv("LOBBY_REDIS_PASSWORD")
	if v := getenv("LOBBY_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			problems = append(problems, fmt.Sprintf("LOBBY_REDIS_DB must be a non-negative integer (got %q)", v))
		} else {
			cfg.RedisDB = n
		}
	}

	cfg.DevMode = getenv("LOBBY_DEV_MODE") == "true"

	if len(problems) > 0 {
		return nil, fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}

	logValidated(cfg)
	return cfg, nil
}

func isValidHostPort(addr string) bool {
	parts := strings.Split(addr, ":")
	if len(parts) != 2 || parts[0] == "" {
		return false
	}
	port, err := strconv.Atoi(parts[1])
	return err == nil && port > 0 && port <= 65535
}

func getenvOrDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func logValidated(cfg *Config) {
	slog.Info("configuration validated",
		"bind_addr", cfg.BindAddr,
		"handshake_timeout", cfg.HandshakeTimeout,
		"max_frame_bytes", cfg.MaxFrameBytes,
		"redis_enabled", cfg.RedisEnabled,
		"redis_addr", cfg.RedisAddr,
		"redis_password", redact(cfg.RedisPassword),
		"dev_mode", cfg.DevMode,
	)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "***"
	}
	return secret[:4] + "***"
}
