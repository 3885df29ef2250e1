// SPDX-License-Identifier: MPL-2.0

// Package logging builds the process logger from the log section of the
// project configuration.
//
// Components receive a *log.Logger with their own prefix. The same logger
// backs the log/slog default so package-level slog calls share one sink.
package logging

import (
	"io"
	"log/slog"

	"github.com/wirehook/wirehook/internal/config"

	"github.com/charmbracelet/log"
)

// Component prefixes.
const (
	PrefixPlugins  = "plugins"
	PrefixGather   = "gather"
	PrefixAutoload = "autoload"
	PrefixInject   = "inject"
	PrefixBuild    = "build"
	PrefixWatch    = "watch"
	PrefixCommand  = "command"
)

// New creates a logger writing to w with the configured level and format.
// Unknown values fall back to info and text.
func New(w io.Writer, cfg config.LogConfig) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:     Level(cfg.Level),
		Formatter: Formatter(cfg.Format),
	})
}

// Level maps a configured level to a charmbracelet level.
func Level(level config.LogLevel) log.Level {
	parsed, err := log.ParseLevel(string(level))
	if err != nil {
		return log.InfoLevel
	}
	return parsed
}

// Formatter maps a configured format to a charmbracelet formatter.
func Formatter(format config.LogFormat) log.Formatter {
	switch format {
	case config.LogFormatJSON:
		return log.JSONFormatter
	case config.LogFormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel + 1})
}

// OrDiscard returns l, or a discard logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// Component returns a child of l prefixed with the component name.
func Component(l *log.Logger, prefix string) *log.Logger {
	return OrDiscard(l).WithPrefix(prefix)
}

// InstallDefault makes l the default for both charmbracelet/log and log/slog.
func InstallDefault(l *log.Logger) {
	log.SetDefault(l)
	slog.SetDefault(slog.New(l))
}
