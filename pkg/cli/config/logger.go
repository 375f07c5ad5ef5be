package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Logger holds logger configuration. Level and JSON come from root CLI
// flags; File and Console are filled in from the config document once it
// has been loaded.
type Logger struct {
	Level   string
	JSON    bool
	File    string
	Console bool
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Destination: &c.Level,
			Sources:     cli.EnvVars("EXAMPORT_LOG_LEVEL"),
		},
		&cli.BoolFlag{
			Name:        "log-json",
			Usage:       "Output logs in JSON format",
			Value:       false,
			Destination: &c.JSON,
			Sources:     cli.EnvVars("EXAMPORT_LOG_JSON"),
		},
	}
}

// Configure configures and returns a logger. An empty level means info;
// an unknown level is an error.
func (c *Logger) Configure() (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "", "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, goerr.New("unknown log level", goerr.V("level", c.Level))
	}

	w, err := c.writer()
	if err != nil {
		return nil, err
	}

	var handler slog.Handler
	if c.JSON {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	} else {
		handler = clog.New(
			clog.WithWriter(w),
			clog.WithLevel(level),
			clog.WithColor(w == os.Stdout),
		)
	}

	return slog.New(handler), nil
}

func (c *Logger) writer() (io.Writer, error) {
	if c.File == "" {
		return os.Stdout, nil
	}

	f, err := os.OpenFile(c.File, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open log file",
			goerr.V("path", c.File))
	}

	if c.Console {
		return io.MultiWriter(os.Stdout, f), nil
	}
	return f, nil
}
