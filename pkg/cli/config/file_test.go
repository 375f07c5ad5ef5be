package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/examport/pkg/cli/config"
	"github.com/m-mizutani/gt"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	ctx := context.Background()

	cfg, err := config.Load(ctx, filepath.Join(t.TempDir(), "no-such.yaml"))
	gt.NoError(t, err)

	gt.True(t, cfg.API.BaseURL != "")
	gt.Equal(t, cfg.API.Timeout, 30)
	gt.Equal(t, cfg.API.MaxRetries, 3)
	gt.Equal(t, cfg.Download.ConcurrentLimit, 5)
	gt.True(t, cfg.Download.Resume)
	gt.Equal(t, cfg.Output.Formats, []string{"json"})
	gt.Equal(t, cfg.Extraction.StartID, 14000)
	gt.Equal(t, cfg.Extraction.EndID, 20000)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	ctx := context.Background()

	path := writeConfig(t, `
api:
  base_url: https://exam.example.com/api
  timeout: 10
  max_retries: 1
download:
  concurrent_limit: 2
  resume: false
output:
  directory: /tmp/exams
  formats:
    - json
    - csv
    - sqlite
extraction:
  start_id: 100
  end_id: 200
`)

	cfg, err := config.Load(ctx, path)
	gt.NoError(t, err)

	gt.Equal(t, cfg.API.BaseURL, "https://exam.example.com/api")
	gt.Equal(t, cfg.API.Timeout, 10)
	gt.Equal(t, cfg.API.MaxRetries, 1)
	gt.Equal(t, cfg.Download.ConcurrentLimit, 2)
	gt.True(t, !cfg.Download.Resume)
	gt.Equal(t, cfg.Output.Formats, []string{"json", "csv", "sqlite"})
	gt.Equal(t, cfg.Extraction.StartID, 100)
	gt.Equal(t, cfg.Extraction.EndID, 200)

	// defaults survive for keys the file does not mention
	gt.Equal(t, cfg.API.RetryDelay, 2.0)
	gt.Equal(t, cfg.Download.RateLimitDelay, 0.5)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	ctx := context.Background()

	path := writeConfig(t, `
api:
  timeout: 10
`)

	t.Setenv("EXAMPORT_API_TIMEOUT", "60")
	t.Setenv("EXAMPORT_DOWNLOAD_CONCURRENT_LIMIT", "9")
	t.Setenv("EXAMPORT_OUTPUT_FORMATS", "json,csv")

	cfg, err := config.Load(ctx, path)
	gt.NoError(t, err)

	gt.Equal(t, cfg.API.Timeout, 60)
	gt.Equal(t, cfg.Download.ConcurrentLimit, 9)
	gt.Equal(t, cfg.Output.Formats, []string{"json", "csv"})
}

func TestLoad_InvalidYAMLIsFatal(t *testing.T) {
	ctx := context.Background()

	path := writeConfig(t, "api: [not: valid: yaml")
	_, err := config.Load(ctx, path)
	gt.Error(t, err)
}

func TestLoad_UnknownFormatIsFatal(t *testing.T) {
	ctx := context.Background()

	path := writeConfig(t, `
output:
  formats:
    - xml
`)
	_, err := config.Load(ctx, path)
	gt.Error(t, err)
}

func TestLoad_InvertedRangeIsFatal(t *testing.T) {
	ctx := context.Background()

	path := writeConfig(t, `
extraction:
  start_id: 500
  end_id: 100
`)
	_, err := config.Load(ctx, path)
	gt.Error(t, err)
}

func TestLoad_ZeroConcurrencyIsFatal(t *testing.T) {
	ctx := context.Background()

	path := writeConfig(t, `
download:
  concurrent_limit: 0
`)
	_, err := config.Load(ctx, path)
	gt.Error(t, err)
}
