// Package logger provides structured leveled logging for timescribe
// components.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message
type LogLevel int

const (
	ERROR LogLevel = iota
	WARN
	INFO
	DEBUG
)

var levelNames = map[LogLevel]string{
	ERROR: "ERROR",
	WARN:  "WARN",
	INFO:  "INFO",
	DEBUG: "DEBUG",
}

// LevelToString returns the display name of a level.
func LevelToString(level LogLevel) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return "INFO"
}

// ParseLevel converts a config string to a LogLevel, defaulting to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return ERROR
	case "WARN", "WARNING":
		return WARN
	case "DEBUG":
		return DEBUG
	default:
		return INFO
	}
}

// Logger provides structured logging with levels and kv-pair context.
type Logger struct {
	mu            sync.Mutex
	level         LogLevel
	currentFile   *os.File
	consoleOutput bool
}

// New creates a Logger. When logDir is non-empty, entries are also
// appended to a dated file in that directory.
func New(level LogLevel, logDir string) (*Logger, error) {
	l := &Logger{level: level, consoleOutput: true}
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("creating log directory: %w", err)
		}
		name := fmt.Sprintf("timescribe-%s.log", time.Now().Format("2006-01-02"))
		f, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		l.currentFile = f
	}
	return l, nil
}

// SetConsoleOutput enables or disables console output.
func (l *Logger) SetConsoleOutput(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.consoleOutput = enabled
}

// SetLevel changes the current log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.currentFile != nil {
		err := l.currentFile.Close()
		l.currentFile = nil
		return err
	}
	return nil
}

// Error logs at ERROR level.
func (l *Logger) Error(msg string, kv ...any) { l.log(ERROR, msg, kv...) }

// Warn logs at WARN level.
func (l *Logger) Warn(msg string, kv ...any) { l.log(WARN, msg, kv...) }

// Info logs at INFO level.
func (l *Logger) Info(msg string, kv ...any) { l.log(INFO, msg, kv...) }

// Debug logs at DEBUG level.
func (l *Logger) Debug(msg string, kv ...any) { l.log(DEBUG, msg, kv...) }

func (l *Logger) log(level LogLevel, msg string, kv ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level > l.level {
		return
	}

	line := fmt.Sprintf("%s [%s] %s%s\n",
		time.Now().Format(time.RFC3339), LevelToString(level), msg, formatContext(kv...))
	if l.consoleOutput {
		fmt.Fprint(os.Stderr, line)
	}
	if l.currentFile != nil {
		fmt.Fprint(l.currentFile, line)
	}
}

func formatContext(kv ...any) string {
	if len(kv) == 0 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprintf("arg%d", i)
		var val any = "<missing>"
		if k, ok := kv[i].(string); ok {
			key = k
		} else {
			val = kv[i]
		}
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		fmt.Fprintf(&b, " %s=%v", key, val)
	}
	return b.String()
}
