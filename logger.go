package yolo2coco

import (
	"log/slog"
	"sync"
)

// Package-level logger for conversion operations
var (
	logger   *slog.Logger
	loggerMu sync.Mutex
)

// SetLogger replaces the package logger
func SetLogger(l *slog.Logger) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	logger = l
}

// GetLogger returns the package logger, falling back to the slog default
// logger if none has been set
func GetLogger() *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger == nil {
		logger = slog.Default().With("module", "yolo2coco")
	}

	return logger
}
