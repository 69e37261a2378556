package rknn

import (
	"log/slog"
	"sync"
)

// Package-level logger for NPU inference
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

// GetLogger returns the package logger
func GetLogger() *slog.Logger {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logger == nil {
		logger = slog.Default().With("module", "rknn")
	}

	return logger
}
