package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DeliveryDelay is how long after acknowledging a request the callback is sent.
const DeliveryDelay = 30 * time.Second

// Config is read once at startup and never mutated afterwards.
type Config struct {
	Port               string
	DefaultCallbackURL string        // used when a request omits callbackUrl
	CallbackTimeout    time.Duration // outbound HTTP client timeout
	WorkerCount        int
	QueueSize          int
	MetricsEnabled     bool
	LogLevel           slog.Level
	ShutdownTimeout    time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getenvLevel(key string, def slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err == nil {
			return lvl
		}
	}
	return def
}

// FromEnv builds a Config from environment variables, falling back to defaults.
func FromEnv() Config {
	return Config{
		Port:               getenv("PORT", "3000"),
		DefaultCallbackURL: strings.TrimSpace(os.Getenv("DEFAULT_CALLBACK_URL")),
		CallbackTimeout:    getenvDuration("CALLBACK_TIMEOUT", 10*time.Second),
		WorkerCount:        getenvInt("WORKER_COUNT", 5),
		QueueSize:          getenvInt("QUEUE_SIZE", 100),
		MetricsEnabled:     getenvBool("METRICS_ENABLED", true),
		LogLevel:           getenvLevel("LOG_LEVEL", slog.LevelInfo),
		ShutdownTimeout:    getenvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT must not be empty"))
	}
	if c.WorkerCount <= 0 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount))
	}
	if c.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("QUEUE_SIZE must be positive, got %d", c.QueueSize))
	}
	if c.CallbackTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CALLBACK_TIMEOUT must be positive, got %s", c.CallbackTimeout))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	if c.DefaultCallbackURL != "" {
		u, err := url.Parse(c.DefaultCallbackURL)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Errorf("DEFAULT_CALLBACK_URL must be an absolute http(s) URL, got %q", c.DefaultCallbackURL))
		}
	}
	return errors.Join(errs...)
}
