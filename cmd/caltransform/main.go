// Command caltransform runs one reconciliation pass against a CalDAV server:
// it reads the configured source calendars, applies the filter/transform rule
// sets, and creates or deletes copies in the destination calendar. Periodic
// operation is left to an external scheduler (cron, systemd timer).
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/illixion/CalendarTransformer/caldav"
	"github.com/illixion/CalendarTransformer/config"
	"github.com/illixion/CalendarTransformer/engine"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration file")
	dryRun := flag.Bool("dry-run", false, "compute the plan but do not write to the destination calendar")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(*configPath, *dryRun, logger); err != nil {
		logger.Error("run failed", "error", err)
		if errors.Is(err, config.ErrInvalid) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(configPath string, dryRun bool, logger *slog.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	client, err := caldav.New(cfg.URL, cfg.Username, cfg.Password, cfg.DestCalendar, logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := client.Connect(ctx); err != nil {
		return err
	}

	stats, err := engine.Run(ctx, client, client, cfg.Options(dryRun), logger)
	if err != nil {
		return err
	}
	logger.Info("run complete",
		"source_events", stats.SourceEvents,
		"destination_copies", stats.Copies,
		"created", stats.Created,
		"deleted", stats.Deleted)
	return nil
}
