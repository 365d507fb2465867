// Package logx configures the process-wide structured logger.
package logx

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

// Level resolves the slog level from the LOG_LEVEL environment variable.
func Level() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "ERROR":
		return slog.LevelError
	case "WARN":
		return slog.LevelWarn
	case "DEBUG":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing tinted output to stderr. Color is
// disabled when stderr is not a terminal.
func New() *slog.Logger {
	w := os.Stderr
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      Level(),
		TimeFormat: time.Kitchen,
		NoColor:    !isatty.IsTerminal(w.Fd()),
	}))
}
