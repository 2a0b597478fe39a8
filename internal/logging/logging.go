package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eugenenazirov/quality-control/internal/inspection"
)

// Options tunes the logger built by New. Zero values keep production defaults.
type Options struct {
	Level      string
	OutputPath string
}

// New creates a production-ready structured logger configured for JSON output.
func New(opts Options) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.StacktraceKey = "stacktrace"
	cfg.DisableStacktrace = false

	if lvl := strings.TrimSpace(opts.Level); lvl != "" {
		level, err := zap.ParseAtomicLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		cfg.Level = level
	}

	if path := strings.TrimSpace(opts.OutputPath); path != "" {
		cfg.OutputPaths = []string{path}
		cfg.ErrorOutputPaths = []string{path}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// LedgerEvents returns an event handler that records box transitions.
func LedgerEvents(logger *zap.Logger) inspection.EventHandler {
	return func(e inspection.Event) {
		fields := []zap.Field{
			zap.Int("box", e.Box),
			zap.Int("population", e.Population),
			zap.Int("capacity", inspection.BoxCapacity),
			zap.String("piece_id", e.PieceID),
		}
		switch e.Kind {
		case inspection.EventBoxClosed:
			logger.Info("box closed", fields...)
		case inspection.EventClosedBoxAltered:
			logger.Warn("piece removed from closed box", fields...)
		default:
			logger.Debug("ledger event", append(fields, zap.String("kind", string(e.Kind)))...)
		}
	}
}
