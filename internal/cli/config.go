package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

// Config is the environment configuration of the CLI.
type Config struct {
	// Database is the default SQLite database path for commands that take
	// --db.
	Database string `env:"REWIND_DB" envDefault:"rewind.db"`
}

// LoadConfig reads Config from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger handed to the engine and store. Verbose runs
// log at debug level; otherwise only warnings (per-event diagnostics) are
// shown.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
