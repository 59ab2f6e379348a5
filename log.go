package render

import (
	"log/slog"
	"os"
)

// renderLogLevel controls the log level for render diagnostics.
// Default is LevelInfo, which suppresses Debug messages.
// SetVerbose(true) sets it to LevelDebug.
var renderLogLevel = new(slog.LevelVar)

// SetVerbose enables or disables verbose/debug logging for the render package.
// Call this from main() after parsing flags.
func SetVerbose(v bool) {
	if v {
		renderLogLevel.Set(slog.LevelDebug)
	} else {
		renderLogLevel.Set(slog.LevelInfo)
	}
}

// renderVerbose returns true if debug logging is enabled.
func renderVerbose() bool {
	return renderLogLevel.Level() <= slog.LevelDebug
}

// logger is shared by every component of the package.
var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: renderLogLevel}))

// SetLogger replaces the package logger. Passing nil restores the default
// stderr text logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: renderLogLevel}))
	}
	logger = l
}
