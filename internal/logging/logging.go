package logging

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var std = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.TimeOnly,
	Prefix:          "voxview",
})

// SetDebug switches the global level between info and debug.
func SetDebug(enabled bool) {
	if enabled {
		std.SetLevel(log.DebugLevel)
	} else {
		std.SetLevel(log.InfoLevel)
	}
}

// Debug logs a debug message with optional key/value pairs.
func Debug(msg any, kv ...any) { std.Debug(msg, kv...) }

// Info logs an informational message with optional key/value pairs.
func Info(msg any, kv ...any) { std.Info(msg, kv...) }

// Warn logs a warning with optional key/value pairs.
func Warn(msg any, kv ...any) { std.Warn(msg, kv...) }

// Error logs an error with optional key/value pairs.
func Error(msg any, kv ...any) { std.Error(msg, kv...) }

// Fatal logs the message and exits. Only startup paths should use this.
func Fatal(msg any, kv ...any) { std.Fatal(msg, kv...) }
