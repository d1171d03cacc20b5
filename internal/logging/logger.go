// Package logging holds the process-wide structured logger used by the buffer pool, the free space
// index and the table layer. It wraps log/slog and is quiet by default (warnings and errors on stderr)
// since the module is a library embedded in a larger program.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	logger   *slog.Logger
	loggerMu sync.RWMutex
	logFile  *os.File
	isInited bool
)

// LogLevel - Logging verbosity as given in configuration
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
)

// Config - Logger configuration
//   - Level is one of DEBUG, INFO, WARN or ERROR, anything else means WARN
//   - OutputPath is a file to append to, empty means stderr
//   - Format is "json" or "text"
type Config struct {
	Level      LogLevel
	OutputPath string
	Format     string
}

// Init - Replaces the global logger. Calling Init twice without Close in between is an error.
func Init(config Config) (err error) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if isInited {
		err = fmt.Errorf("logger already initialized, call Close first to reinitialize")
		return
	}

	var writer io.Writer = os.Stderr
	if config.OutputPath != "" {
		err = os.MkdirAll(filepath.Dir(config.OutputPath), 0o750)
		if err != nil {
			return
		}

		var f *os.File
		f, err = os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return
		}
		writer = f
		logFile = f
	}

	logger = newLogger(writer, config.Level, config.Format)
	isInited = true

	return
}

// Close - Closes any log file and restores the default logger
func Close() (err error) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	if logFile != nil {
		err = logFile.Close()
		logFile = nil
	}
	logger = nil
	isInited = false

	return
}

// GetLogger - Returns the current logger, creating the default one on first use
func GetLogger() *slog.Logger {
	loggerMu.RLock()
	l := logger
	loggerMu.RUnlock()
	if l != nil {
		return l
	}

	loggerMu.Lock()
	defer loggerMu.Unlock()
	if logger == nil {
		logger = newLogger(os.Stderr, LevelWarn, "text")
	}

	return logger
}

func newLogger(w io.Writer, level LogLevel, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: toSlogLevel(level)}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
