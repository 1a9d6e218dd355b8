package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"agendacal/internal/config"
	appLog "agendacal/internal/log"
	"agendacal/internal/pipeline"
	"agendacal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath  string
	listen      string
	once        bool
	convertOnly bool
	verbose     bool
}

func main() {
	appLog.Info("agendacal starting", "version", "0.1.0")

	flags := parseFlags()
	if flags.verbose {
		appLog.SetLevel(appLog.LevelDebug)
	}

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"portal_url", conf.PortalURL,
		"data_dir", conf.DataDir,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"summary_days", conf.SummaryDays,
		"listen", conf.Listen,
		"once", flags.once,
		"convert_only", flags.convertOnly,
	)

	runner, err := pipeline.New(conf)
	if err != nil {
		appLog.Error("failed to initialize pipeline", err)
		os.Exit(1)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.once {
		if runRefresh(ctx, runner, flags.convertOnly) != nil {
			os.Exit(1)
		}
		appLog.Info("agendacal exiting")
		return
	}

	// Periodic refresh driven by cron; one run at startup so artifacts
	// exist before the first tick.
	_ = runRefresh(ctx, runner, flags.convertOnly)

	c := cron.New()
	if _, err := c.AddFunc(conf.RefreshCron, func() {
		_ = runRefresh(ctx, runner, flags.convertOnly)
	}); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.RefreshCron)
		os.Exit(1)
	}
	c.Start()
	defer c.Stop()

	if conf.Listen != "" {
		if err := web.StartServer(ctx, conf); err != nil {
			appLog.Error("HTTP server failed", err)
			os.Exit(1)
		}
	} else {
		<-ctx.Done()
	}

	appLog.Info("agendacal exiting")
}

// runRefresh executes one pipeline cycle under a per-run id so overlapping
// log lines from consecutive cron ticks can be told apart.
func runRefresh(ctx context.Context, runner *pipeline.Runner, convertOnly bool) error {
	runID := uuid.New().String()
	appLog.Info("refresh run starting", "run_id", runID, "convert_only", convertOnly)

	var report *pipeline.Report
	var err error
	if convertOnly {
		report, err = runner.Convert(ctx)
	} else {
		report, err = runner.RunOnce(ctx)
	}
	if err != nil {
		appLog.Error("refresh run failed", err, "run_id", runID)
		return err
	}

	appLog.Info("refresh run completed",
		"run_id", runID,
		"sources", report.SourcesProcessed,
		"source_errors", len(report.SourceErrors),
		"activities", report.Activities,
		"calendars", report.CalendarsWritten,
		"summaries", report.SummariesWritten,
	)
	return nil
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "/etc/agendacal/config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Run one download+convert cycle and exit")
	flag.BoolVar(&cfg.convertOnly, "convert-only", false, "Skip downloading; convert exports already on disk")
	flag.BoolVar(&cfg.verbose, "v", false, "Enable debug logging")

	flag.Parse()

	return cfg
}
