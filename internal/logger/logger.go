// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package logger provides the application-wide structured logger. Records go
// to a JSON log file under the XDG state directory and, in CLI mode, to a
// human-readable stderr stream as well.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu            sync.RWMutex
	defaultLogger zerolog.Logger
	initialized   bool
)

// getLogFilePath determines the path for the application log file based on XDG spec.
func getLogFilePath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}

	return filepath.Join(stateDir, "cf-worker-cli", "app.log"), nil
}

// openLogFile creates the log directory if needed and opens the log file for appending.
func openLogFile() (*os.File, string, error) {
	logFilePath, err := getLogFilePath()
	if err != nil {
		return nil, "", err
	}
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0750); err != nil {
		return nil, logFilePath, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		return nil, logFilePath, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, logFilePath, nil
}

// build assembles a logger writing to the given file (JSON) and optionally to
// stderr. Stderr only receives warnings and errors so normal command output
// stays readable.
func build(file io.Writer, logToStderr bool, level zerolog.Level) zerolog.Logger {
	var writers []io.Writer
	if file != nil {
		writers = append(writers, file)
	}
	if logToStderr {
		console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: console},
			Level:  zerolog.WarnLevel,
		})
	}

	var out io.Writer
	switch len(writers) {
	case 0:
		out = io.Discard
	case 1:
		out = writers[0]
	default:
		out = zerolog.MultiLevelWriter(writers...)
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// InitLogger initializes the logger for the execution mode. The interactive
// shell owns the terminal, so it only logs to file; the CLI additionally
// reports warnings on stderr.
// It should be called once at the beginning of the application.
func InitLogger(interactive bool, level string) {
	file, path, err := openLogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v. File logging disabled.\n", err)
		file = nil
	}

	var w io.Writer
	if file != nil {
		w = file
	}
	l := build(w, !interactive || file == nil, parseLevel(level))

	mu.Lock()
	defaultLogger = l
	initialized = true
	mu.Unlock()

	if file != nil {
		Debug("Logging configured", "file", path, "stderr", !interactive)
	}
}

// SetLogger replaces the default logger instance. Mostly useful in tests.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
	initialized = true
}

// current returns the active logger, falling back to warn-level stderr
// output when InitLogger was never called.
func current() zerolog.Logger {
	mu.RLock()
	if initialized {
		l := defaultLogger
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if !initialized {
		defaultLogger = build(nil, true, zerolog.WarnLevel)
		initialized = true
	}
	return defaultLogger
}

// With returns a child logger tagged with a component name.
func With(component string) zerolog.Logger {
	return current().With().Str("component", component).Logger()
}

// Info logs an informational message with alternating key/value pairs.
func Info(msg string, args ...any) {
	l := current()
	l.Info().Fields(args).Msg(msg)
}

// Infof logs a formatted informational message.
func Infof(format string, v ...any) {
	l := current()
	l.Info().Msg(fmt.Sprintf(format, v...))
}

// Error logs an error message.
func Error(msg string, args ...any) {
	l := current()
	l.Error().Fields(args).Msg(msg)
}

// Errorf logs a formatted error message.
func Errorf(format string, v ...any) {
	l := current()
	l.Error().Msg(fmt.Sprintf(format, v...))
}

// Debug logs a debug message.
func Debug(msg string, args ...any) {
	l := current()
	l.Debug().Fields(args).Msg(msg)
}

// Debugf logs a formatted debug message.
func Debugf(format string, v ...any) {
	l := current()
	l.Debug().Msg(fmt.Sprintf(format, v...))
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	l := current()
	l.Warn().Fields(args).Msg(msg)
}

// Warnf logs a formatted warning message.
func Warnf(format string, v ...any) {
	l := current()
	l.Warn().Msg(fmt.Sprintf(format, v...))
}

func parseLevel(s string) zerolog.Level {
	switch s {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "silent":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}
