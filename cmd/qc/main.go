package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/quality-control/internal/application"
	"github.com/eugenenazirov/quality-control/internal/config"
	"github.com/eugenenazirov/quality-control/internal/console"
	"github.com/eugenenazirov/quality-control/internal/logging"
)

var signalNotify = signal.Notify

// defaultConsoleLogFile keeps JSON log lines off the interactive screen.
const defaultConsoleLogFile = "qc-console.log"

type flags struct {
	configFile     *string
	port           *string
	rateLimitRPS   *float64
	rateLimitBurst *int
	reasonPolicy   *string
	exportDir      *string
	exportFormat   *string
	logLevel       *string
	logFile        *string
}

type cli struct {
	app        *kingpin.Application
	serveCmd   *kingpin.CmdClause
	consoleCmd *kingpin.CmdClause
	serve      flags
	console    flags
}

func newCLI() *cli {
	app := kingpin.New("qc", "Production quality control - inspects pieces, packs approved ones into boxes and reports rejections")

	serveCmd := app.Command("serve", "Run the HTTP API").Default()
	consoleCmd := app.Command("console", "Run the interactive operator menu")

	return &cli{
		app:        app,
		serveCmd:   serveCmd,
		consoleCmd: consoleCmd,
		serve: flags{
			configFile:     serveCmd.Flag("config", "Path to YAML configuration file").String(),
			port:           serveCmd.Flag("port", "HTTP port exposed by the service").String(),
			rateLimitRPS:   serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64(),
			rateLimitBurst: serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int(),
			reasonPolicy:   serveCmd.Flag("reason-policy", "Rejection reason consolidation: whole or split").String(),
			logLevel:       serveCmd.Flag("log-level", "Minimum log level").String(),
			logFile:        serveCmd.Flag("log-file", "Write logs to this file instead of stderr").String(),
		},
		console: flags{
			configFile:   consoleCmd.Flag("config", "Path to YAML configuration file").String(),
			reasonPolicy: consoleCmd.Flag("reason-policy", "Rejection reason consolidation: whole or split").String(),
			exportDir:    consoleCmd.Flag("export-dir", "Directory written by the export option").String(),
			exportFormat: consoleCmd.Flag("export-format", "Export format: csv, json or yaml").String(),
			logLevel:     consoleCmd.Flag("log-level", "Minimum log level").String(),
			logFile:      consoleCmd.Flag("log-file", "Write logs to this file (default "+defaultConsoleLogFile+")").String(),
		},
	}
}

func main() {
	c := newCLI()
	switch kingpin.MustParse(c.app.Parse(os.Args[1:])) {
	case c.serveCmd.FullCommand():
		runServe(c.serve.overrides())
	case c.consoleCmd.FullCommand():
		runConsole(c.console.overrides())
	}
}

func (f flags) overrides() *config.CLIOverrides {
	overrides := &config.CLIOverrides{}
	if f.configFile != nil {
		overrides.ConfigFile = *f.configFile
	}
	overrides.Port = nonEmpty(f.port)
	overrides.ReasonPolicy = nonEmpty(f.reasonPolicy)
	overrides.ExportDir = nonEmpty(f.exportDir)
	overrides.ExportFormat = nonEmpty(f.exportFormat)
	overrides.LogLevel = nonEmpty(f.logLevel)
	overrides.LogFile = nonEmpty(f.logFile)

	if f.rateLimitRPS != nil && *f.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = f.rateLimitRPS
	}
	if f.rateLimitBurst != nil && *f.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = f.rateLimitBurst
	}
	return overrides
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

// loadConfig resolves the configuration. fallbackLogFile applies only when no
// source set a log file.
func loadConfig(overrides *config.CLIOverrides, fallbackLogFile string) (config.Config, error) {
	cfg, err := config.Load(overrides)
	if err != nil {
		return config.Config{}, err
	}
	if cfg.LogFile == "" {
		cfg.LogFile = fallbackLogFile
	}
	return cfg, nil
}

func setup(overrides *config.CLIOverrides, fallbackLogFile string) (config.Config, *zap.Logger) {
	cfg, err := loadConfig(overrides, fallbackLogFile)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, OutputPath: cfg.LogFile})
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return cfg, logger
}

func runServe(overrides *config.CLIOverrides) {
	cfg, logger := setup(overrides, "")
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

func runConsole(overrides *config.CLIOverrides) {
	cfg, logger := setup(overrides, defaultConsoleLogFile)
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("console started",
		zap.String("reason_policy", string(cfg.ReasonPolicy)),
		zap.String("export_dir", cfg.ExportDir),
	)
	if err := console.Run(application.NewConsole(cfg, logger)); err != nil {
		logger.Error("console stopped", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Info("console finished")
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
