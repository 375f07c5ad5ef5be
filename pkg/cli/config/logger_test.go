package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/examport/pkg/cli/config"
	"github.com/m-mizutani/gt"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{
			name:    "Empty level defaults to info",
			level:   "",
			wantErr: false,
		},
		{
			name:    "Valid level: debug",
			level:   "debug",
			wantErr: false,
		},
		{
			name:    "Valid level: DEBUG (case insensitive)",
			level:   "DEBUG",
			wantErr: false,
		},
		{
			name:    "Valid level: info",
			level:   "info",
			wantErr: false,
		},
		{
			name:    "Valid level: warn",
			level:   "warn",
			wantErr: false,
		},
		{
			name:    "Valid level: warning",
			level:   "warning",
			wantErr: false,
		},
		{
			name:    "Valid level: error",
			level:   "error",
			wantErr: false,
		},
		{
			name:    "Invalid level: invalid",
			level:   "invalid",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Logger{Level: tt.level}
			logger, err := cfg.Configure()

			if tt.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err)
			gt.True(t, logger != nil)
		})
	}
}

func TestLogger_ConfigureJSON(t *testing.T) {
	cfg := config.Logger{Level: "info", JSON: true}
	logger, err := cfg.Configure()
	gt.NoError(t, err)
	gt.True(t, logger != nil)
}

func TestLogger_ConfigureWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "extraction.log")
	cfg := config.Logger{Level: "info", File: path, Console: false}

	logger, err := cfg.Configure()
	gt.NoError(t, err)

	logger.Info("written to file")

	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.String(t, string(data)).Contains("written to file")
}

func TestLogger_ConfigureWithUnwritableFile(t *testing.T) {
	cfg := config.Logger{
		Level: "info",
		File:  filepath.Join(t.TempDir(), "missing", "dir", "extraction.log"),
	}

	_, err := cfg.Configure()
	gt.Error(t, err)
}
