package main

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// newLogger returns a slog logger rendered by charmbracelet/log.
// Debug wins over quiet when both are requested.
func newLogger(w io.Writer, debug, quiet bool) *slog.Logger {
	level := log.InfoLevel
	switch {
	case debug:
		level = log.DebugLevel
	case quiet:
		level = log.WarnLevel
	}

	handler := log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: "ffstatic",
	})
	return slog.New(handler)
}
