package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/examport/pkg/cli/config"
	"github.com/m-mizutani/examport/pkg/domain/interfaces"
	"github.com/m-mizutani/examport/pkg/infra/examapi"
	"github.com/m-mizutani/examport/pkg/infra/storage"
	"github.com/m-mizutani/examport/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdExtract(loggerCfg *config.Logger) *cli.Command {
	var (
		configPath string
		dryRun     bool
		noResume   bool
		outputDir  string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to config file",
			Value:       "config.yaml",
			Destination: &configPath,
			Sources:     cli.EnvVars("EXAMPORT_CONFIG"),
		},
		&cli.IntFlag{
			Name:  "start",
			Usage: "First exam ID (overrides config)",
		},
		&cli.IntFlag{
			Name:  "end",
			Usage: "End exam ID, exclusive (overrides config)",
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Report what would be fetched without downloading or writing",
			Destination: &dryRun,
		},
		&cli.BoolFlag{
			Name:        "no-resume",
			Usage:       "Re-fetch exams whose output artifacts already exist",
			Destination: &noResume,
		},
		&cli.StringFlag{
			Name:        "output-dir",
			Usage:       "Output directory (overrides config)",
			Destination: &outputDir,
			Sources:     cli.EnvVars("EXAMPORT_OUTPUT_DIRECTORY"),
		},
	}

	return &cli.Command{
		Name:    "extract",
		Aliases: []string{"x"},
		Usage:   "Extract a range of exam IDs to the configured formats",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.Load(ctx, configPath)
			if err != nil {
				return err
			}

			if c.IsSet("start") {
				cfg.Extraction.StartID = int(c.Int("start"))
			}
			if c.IsSet("end") {
				cfg.Extraction.EndID = int(c.Int("end"))
			}
			if outputDir != "" {
				cfg.Output.Directory = outputDir
			}
			if noResume {
				cfg.Download.Resume = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// The config document may refine logging (level when no flag
			// was given, optional log file)
			if loggerCfg.Level == "" {
				loggerCfg.Level = cfg.Logging.Level
			}
			loggerCfg.File = cfg.Logging.File
			loggerCfg.Console = cfg.Logging.Console

			logger, err := loggerCfg.Configure()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			exporters, cleanup, err := buildExporters(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			client := examapi.New(cfg.API.BaseURL,
				examapi.WithTimeout(cfg.API.TimeoutDuration()),
				examapi.WithMaxRetries(cfg.API.MaxRetries),
				examapi.WithRetryDelay(cfg.API.RetryDelayDuration()),
			)

			uc := usecase.NewExtractor(client, exporters,
				usecase.WithConcurrency(cfg.Download.ConcurrentLimit),
				usecase.WithRateLimit(cfg.Download.RateLimitDelayDuration()),
				usecase.WithResume(cfg.Download.Resume),
				usecase.WithDryRun(dryRun),
			)

			report, err := uc.Run(ctx, cfg.Extraction.StartID, cfg.Extraction.EndID)
			if err != nil {
				return err
			}

			printSummary(os.Stdout, report)

			if !dryRun {
				path, err := storage.WriteReport(cfg.Output.Directory, report)
				if err != nil {
					return goerr.Wrap(err, "failed to write statistics report")
				}
				logger.Info("statistics report saved", "path", path)
			}

			return nil
		},
	}
}

// buildExporters instantiates one exporter per configured format. The
// returned cleanup closes the SQLite connection if one was opened.
func buildExporters(cfg *config.Config) ([]interfaces.Exporter, func(), error) {
	var exporters []interfaces.Exporter
	cleanup := func() {}

	for _, format := range cfg.Output.Formats {
		switch format {
		case "json":
			x, err := storage.NewJSONExporter(cfg.Output.Directory)
			if err != nil {
				return nil, cleanup, err
			}
			exporters = append(exporters, x)

		case "csv":
			x, err := storage.NewCSVExporter(cfg.Output.Directory)
			if err != nil {
				return nil, cleanup, err
			}
			exporters = append(exporters, x)

		case "sqlite":
			x, err := storage.NewSQLiteExporter(cfg.Output.Directory)
			if err != nil {
				return nil, cleanup, err
			}
			exporters = append(exporters, x)
			cleanup = func() {
				_ = x.Close()
			}

		default:
			return nil, cleanup, goerr.New("unknown output format",
				goerr.V("format", format))
		}
	}

	return exporters, cleanup, nil
}
