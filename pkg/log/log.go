// Package log handles the global slog setup.
package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dotse/slug"
	sentryslog "github.com/getsentry/sentry-go/slog"
	slogmulti "github.com/samber/slog-multi"
)

type Level string

const (
	Debug Level = "debug"
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

func ToSlogLevel(level Level) slog.Level {
	switch level {
	case Debug:
		return slog.LevelDebug
	case Info:
		return slog.LevelInfo
	case Warn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// MustCreateLogger installs the default slog logger. The returned closer must be
// called on shutdown when logging to a file.
func MustCreateLogger(ctx context.Context, logPath string, level Level, useSentry bool, version string) func() {
	closer := func() {}

	opts := slug.HandlerOptions{
		HandlerOptions: slog.HandlerOptions{
			Level: ToSlogLevel(level),
		},
	}

	var handlers []slog.Handler
	if useSentry {
		handlers = append(handlers, sentryslog.Option{
			Level:     slog.LevelDebug,
			AddSource: true,
		}.NewSentryHandler(ctx))
	}

	if logPath != "" {
		logFile, errLogFile := os.Create(logPath)
		if errLogFile != nil {
			panic(fmt.Sprintf("Failed to open logfile: %v", errLogFile))
		}

		closer = func() {
			if errClose := logFile.Close(); errClose != nil {
				panic(fmt.Sprintf("Failed to close log file: %v", errClose))
			}
		}

		handlers = append(handlers, slug.NewHandler(opts, logFile))
	} else {
		handlers = append(handlers, slug.NewHandler(opts, os.Stdout))
	}

	defaultLogger := slog.New(slogmulti.Fanout(handlers...))

	if version != "" {
		defaultLogger.With("release", version)
	}

	slog.SetDefault(defaultLogger)

	return closer
}

// ErrAttr is a shortcut to create a consistent error attribute.
func ErrAttr(err error) slog.Attr {
	return slog.Any("error", err)
}

// Closer closes a resource, logging on failure. Meant for defers where the error does
// not change the outcome.
func Closer(closer interface{ Close() error }) {
	if errClose := closer.Close(); errClose != nil {
		slog.Error("Failed to close", ErrAttr(errClose))
	}
}
