// Package config collects the server's runtime settings from command-line
// flags with environment fallbacks.
package config

import (
	"flag"
	"os"
	"strconv"
)

// Config holds the API server settings.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// QueueSize is how many analysis jobs can wait before enqueueing blocks.
	QueueSize int
}

// Load parses flags, falling back to PORT and QUEUE_SIZE environment
// variables, then to defaults.
func Load() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.Port, "port", envString("PORT", "8080"), "HTTP server port (or set PORT env)")
	flag.IntVar(&cfg.QueueSize, "queue-size", envInt("QUEUE_SIZE", 100), "analysis job queue capacity (or set QUEUE_SIZE env)")
	flag.Parse()

	return cfg
}

func envString(key, fallback string) string {
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
