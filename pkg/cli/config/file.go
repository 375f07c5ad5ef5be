package config

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// EXAMPORT_API_TIMEOUT -> api.timeout
const envPrefix = "EXAMPORT_"

// Config is the typed configuration document. Precedence is
// defaults < YAML file < EXAMPORT_* environment variables.
type Config struct {
	API        APIConfig        `koanf:"api"`
	Download   DownloadConfig   `koanf:"download"`
	Output     OutputConfig     `koanf:"output"`
	Extraction ExtractionConfig `koanf:"extraction"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// APIConfig configures the remote exam API client
type APIConfig struct {
	BaseURL    string  `koanf:"base_url" validate:"required,url"`
	Timeout    int     `koanf:"timeout" validate:"min=1"`     // seconds
	MaxRetries int     `koanf:"max_retries" validate:"min=0"` // extra attempts after the first
	RetryDelay float64 `koanf:"retry_delay" validate:"min=0"` // seconds, doubles per retry
}

// TimeoutDuration returns the per-call timeout
func (c APIConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// RetryDelayDuration returns the initial backoff delay
func (c APIConfig) RetryDelayDuration() time.Duration {
	return time.Duration(c.RetryDelay * float64(time.Second))
}

// DownloadConfig bounds concurrency and pacing of the extraction run
type DownloadConfig struct {
	ConcurrentLimit int     `koanf:"concurrent_limit" validate:"min=1"`
	RateLimitDelay  float64 `koanf:"rate_limit_delay" validate:"min=0"` // seconds
	Resume          bool    `koanf:"resume"`
}

// RateLimitDelayDuration returns the pause applied after each exam
func (c DownloadConfig) RateLimitDelayDuration() time.Duration {
	return time.Duration(c.RateLimitDelay * float64(time.Second))
}

// OutputConfig selects output directory and formats
type OutputConfig struct {
	Directory string   `koanf:"directory" validate:"required"`
	Formats   []string `koanf:"formats" validate:"required,min=1,dive,oneof=json csv sqlite"`
}

// ExtractionConfig is the default exam ID range, half-open [start, end)
type ExtractionConfig struct {
	StartID int `koanf:"start_id" validate:"min=0"`
	EndID   int `koanf:"end_id" validate:"min=0"`
}

// LoggingConfig configures log output beyond the root CLI flags
type LoggingConfig struct {
	Level   string `koanf:"level"`
	File    string `koanf:"file"`
	Console bool   `koanf:"console"`
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "https://www.trueplookpanya.com/webservice/api/examination/formdoexamination",
			Timeout:    30,
			MaxRetries: 3,
			RetryDelay: 2,
		},
		Download: DownloadConfig{
			ConcurrentLimit: 5,
			RateLimitDelay:  0.5,
			Resume:          true,
		},
		Output: OutputConfig{
			Directory: "data/output",
			Formats:   []string{"json"},
		},
		Extraction: ExtractionConfig{
			StartID: 14000,
			EndID:   20000,
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
		},
	}
}

// Load reads the configuration document. A missing file falls back to
// defaults with a warning; an unreadable or invalid file is a fatal
// setup error.
func Load(ctx context.Context, path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, goerr.Wrap(err, "failed to load config defaults")
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, goerr.Wrap(err, "failed to load config file",
					goerr.V("path", path))
			}
		} else {
			ctxlog.From(ctx).Warn("config file not found, using defaults",
				"path", path)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, goerr.Wrap(err, "failed to load environment overrides")
	}

	// output.formats may arrive as a comma-separated env string
	if v, ok := k.Get("output.formats").(string); ok {
		formats := strings.Split(v, ",")
		for i := range formats {
			formats[i] = strings.TrimSpace(formats[i])
		}
		if err := k.Set("output.formats", formats); err != nil {
			return nil, goerr.Wrap(err, "failed to normalize output formats")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envTransform maps EXAMPORT_API_MAX_RETRIES to api.max_retries. Only the
// first underscore separates section and key; sections are single words.
func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Validate checks the configuration for setup errors. These are fatal:
// nothing is fetched with a broken configuration.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return goerr.Wrap(err, "invalid configuration")
	}

	if c.Extraction.EndID < c.Extraction.StartID {
		return goerr.New("extraction end_id must not be less than start_id",
			goerr.V("start_id", c.Extraction.StartID),
			goerr.V("end_id", c.Extraction.EndID),
		)
	}
	return nil
}
