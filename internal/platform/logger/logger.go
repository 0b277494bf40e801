package logger

import (
	"log/slog"
	"os"
)

// New returns the process-wide structured logger. Level defaults to info;
// set LINGKOD_LOG_LEVEL=debug to see cache and session detail.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LINGKOD_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
