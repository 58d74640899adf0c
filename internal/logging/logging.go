// Package logging builds the zap loggers used by chatbox.
//
// The TUI owns the terminal, so interactive runs log to a file; the relay logs to stderr.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewFile returns a JSON logger writing to path. An empty path yields a no-op logger.
func NewFile(path, level string, verbose bool) (*zap.Logger, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return zap.NewNop(), nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{path}
	if err := applyLevel(&config, level, verbose); err != nil {
		return nil, err
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// NewConsole returns a human-readable logger on stderr.
func NewConsole(level string, verbose bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Development = false
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if err := applyLevel(&config, level, verbose); err != nil {
		return nil, err
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func applyLevel(config *zap.Config, level string, verbose bool) error {
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return nil
	}
	level = strings.TrimSpace(level)
	if level == "" {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		return nil
	}
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	config.Level = parsed
	return nil
}
