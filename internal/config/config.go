// Package config loads the core's runtime configuration from environment
// variables, with flag overrides for local development, mirroring the
// teacher's os.ExpandEnv + flag.String style (spec §6).
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/atinm/chesstactics/internal/chesserr"
)

// Config holds every setting spec §6 enumerates.
type Config struct {
	StorageJDBCURL string
	StorageUser    string
	StoragePass    string

	QueueCapacity          int
	WorkerFlushEveryNGames int

	HTTPAddr string
}

// Load reads environment variables, then applies any matching flags
// registered on fs, and validates the result. fs is typically flag.CommandLine;
// tests pass a fresh FlagSet so they do not collide with other tests.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{
		StorageJDBCURL:         os.Getenv("STORAGE_JDBC_URL"),
		StorageUser:            os.Getenv("STORAGE_USER"),
		StoragePass:            os.Getenv("STORAGE_PASSWORD"),
		QueueCapacity:          envInt("QUEUE_CAPACITY", 0),
		WorkerFlushEveryNGames: envInt("WORKER_FLUSH_EVERY_N_GAMES", 10),
		HTTPAddr:               envOr("HTTP_ADDR", ":8080"),
	}

	fs.StringVar(&cfg.StorageJDBCURL, "storage-jdbc-url", cfg.StorageJDBCURL, "store DSN, e.g. tcp(127.0.0.1:3306)/chesstactics")
	fs.StringVar(&cfg.StorageUser, "storage-user", cfg.StorageUser, "store username")
	fs.StringVar(&cfg.StoragePass, "storage-password", cfg.StoragePass, "store password")
	fs.IntVar(&cfg.QueueCapacity, "queue-capacity", cfg.QueueCapacity, "bounded queue depth; 0 means unbounded")
	fs.IntVar(&cfg.WorkerFlushEveryNGames, "worker-flush-every-n-games", cfg.WorkerFlushEveryNGames, "how often to persist games_indexed")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "address the HTTP API listens on")

	if err := fs.Parse(args); err != nil {
		return nil, &chesserr.ConfigError{Name: "flags", Detail: err.Error()}
	}

	if cfg.StorageJDBCURL == "" {
		return nil, &chesserr.ConfigError{Name: "STORAGE_JDBC_URL", Detail: "required, e.g. tcp(127.0.0.1:3306)/chesstactics"}
	}
	if cfg.StorageUser == "" {
		return nil, &chesserr.ConfigError{Name: "STORAGE_USER", Detail: "required"}
	}
	if cfg.QueueCapacity < 0 {
		return nil, &chesserr.ConfigError{Name: "QUEUE_CAPACITY", Detail: "must be >= 0"}
	}
	if cfg.WorkerFlushEveryNGames <= 0 {
		return nil, &chesserr.ConfigError{Name: "WORKER_FLUSH_EVERY_N_GAMES", Detail: "must be > 0"}
	}

	return cfg, nil
}

// DSN assembles the go-sql-driver/mysql data source name, following the
// teacher's os.ExpandEnv("${SQLUSER}:${SQLPASS}@tcp(${SQLIP}:${SQLPORT})/chess_tactics")
// pattern but sourced from already-loaded Config fields instead of expanding
// the environment a second time.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@%s", c.StorageUser, c.StoragePass, c.StorageJDBCURL)
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}
