// Package logging configures structured logging for the cloud client using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel is a level name as read from CLOUD_LOG_LEVEL.
type LogLevel string

// Level names accepted by Setup. Unknown names fall back to LevelInfo.
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
	LevelOff   LogLevel = "off"
)

var levels = map[string]zerolog.Level{
	"debug":    zerolog.DebugLevel,
	"info":     zerolog.InfoLevel,
	"warn":     zerolog.WarnLevel,
	"warning":  zerolog.WarnLevel,
	"error":    zerolog.ErrorLevel,
	"off":      zerolog.Disabled,
	"disabled": zerolog.Disabled,
}

// Config controls the process-wide logger.
type Config struct {
	Level LogLevel

	// Pretty switches from JSON lines to zerolog's console format.
	Pretty bool

	// Output defaults to os.Stderr, keeping stdout free for command results.
	Output io.Writer
}

// DefaultConfig logs JSON at info level to stderr.
func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr}
}

// Setup installs the global zerolog logger that NewLogger derives from.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	return log.Logger
}

func parseLevel(level LogLevel) zerolog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(string(level)))]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// NewLogger tags the global logger with a component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// ForTask derives the logger used for a single dispatched task.
func ForTask(logger zerolog.Logger, taskID, route string) zerolog.Logger {
	return logger.With().
		Str("task_id", taskID).
		Str("route", route).
		Logger()
}

// Log Level Guidelines:
//
// Debug: Task internals
//   - Request build details (url, body size)
//   - Transport error classification
//   - Envelope parse failures after classification
//   - Auth data store misses
//
// Info: Completed requests
//   - Outcome, server code and duration per task
//   - CLI startup and shutdown
//
// Warn: Requests that ended without a server verdict
//   - Transport failures (network_error)
//   - Unreadable replies and build failures (other_client_error)
//   - Completions delivered outside the caller loop
//
// Error: Conditions requiring attention
//   - Recovered panics during request execution
//   - Configuration errors
//
// Context Fields:
//   - component: emitting component (cloud-client, auth-store, cloud-dispatch)
//   - task_id: unique ID of a dispatched task
//   - route: destination path, e.g. get_founds
//   - url: absolute request URL
//   - status: HTTP status of the reply
//   - code: server-reported envelope code
//   - outcome: classified outcome
//   - duration: network call duration
