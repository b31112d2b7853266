package internal

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// NewMCPLogger returns a logger writing to mcp.log in the cache directory.
// Stdout carries the protocol in stdio mode, so nothing may be printed there.
// A disabled or unopenable log yields a logger that discards everything.
func NewMCPLogger(config *Config) (*slog.Logger, func()) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	if !config.MCPLogEnabled {
		return discard, func() {}
	}

	if err := os.MkdirAll(config.CacheDir, 0755); err != nil {
		return discard, func() {}
	}

	logPath := filepath.Join(config.CacheDir, "mcp.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return discard, func() {}
	}

	handler := slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(handler).With(slog.String("component", "mcp"))
	return logger, func() { _ = logFile.Close() }
}
