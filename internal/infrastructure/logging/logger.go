package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger interface used by every component of the application
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// Level is the minimum severity a logger emits
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level. Unknown values mean info.
func ParseLevel(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// DefaultLogger writes one JSON object per line
type DefaultLogger struct {
	mu       sync.Mutex
	out      io.Writer // nil means the standard log package output
	minLevel Level
}

// NewDefaultLogger creates a new default logger instance
func NewDefaultLogger() Logger {
	return &DefaultLogger{}
}

// NewWriterLogger creates a logger that writes to w, dropping entries below minLevel
func NewWriterLogger(w io.Writer, minLevel Level) *DefaultLogger {
	return &DefaultLogger{out: w, minLevel: minLevel}
}

// FileOptions configures the rotating log file
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Level      string
}

// NewFileLogger creates a logger backed by a size-rotated file. The returned
// closer releases the file handle.
func NewFileLogger(opts FileOptions) (*DefaultLogger, io.Closer) {
	w := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	return NewWriterLogger(w, ParseLevel(opts.Level)), w
}

// logEntry represents a structured log entry
type logEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields"`
}

// fieldsToMap converts the variadic fields slice to a map
// Expected format: key1, value1, key2, value2, ...
func fieldsToMap(fields []interface{}) map[string]interface{} {
	result := make(map[string]interface{})

	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			result[fmt.Sprintf("field_%d", i/2)] = fields[i]
			continue
		}
		key, ok := fields[i].(string)
		if !ok {
			result[fmt.Sprintf("field_%d", i/2)] = fields[i]
			result[fmt.Sprintf("field_%d_value", i/2)] = fields[i+1]
			continue
		}
		if err, isErr := fields[i+1].(error); isErr && err != nil {
			result[key] = err.Error()
			continue
		}
		result[key] = fields[i+1]
	}

	return result
}

// logStructured logs a message with structured JSON format
func (l *DefaultLogger) logStructured(level Level, name, msg string, fields []interface{}) {
	if level < l.minLevel {
		return
	}

	entry := logEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     name,
		Message:   msg,
		Fields:    fieldsToMap(fields),
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		// Fallback to safe string representation
		fallbackFields := fmt.Sprintf("%v", fields)
		entry.Fields = map[string]interface{}{
			"original_fields": fallbackFields,
			"marshal_error":   err.Error(),
		}
		if jsonBytes, err = json.Marshal(entry); err != nil {
			log.Printf("[%s] %s %s", name, msg, fallbackFields)
			return
		}
	}

	if l.out == nil {
		log.Println(string(jsonBytes))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.out.Write(append(jsonBytes, '\n')); err != nil {
		log.Printf("[%s] %s (log sink failed: %v)", name, msg, err)
	}
}

func (l *DefaultLogger) Debug(msg string, fields ...interface{}) {
	l.logStructured(LevelDebug, "DEBUG", msg, fields)
}

func (l *DefaultLogger) Info(msg string, fields ...interface{}) {
	l.logStructured(LevelInfo, "INFO", msg, fields)
}

func (l *DefaultLogger) Warn(msg string, fields ...interface{}) {
	l.logStructured(LevelWarn, "WARN", msg, fields)
}

func (l *DefaultLogger) Error(msg string, fields ...interface{}) {
	l.logStructured(LevelError, "ERROR", msg, fields)
}

// CodedError is implemented by the application's classified errors
// (declared here to avoid an import cycle with the errors package)
type CodedError interface {
	Error() string
	GetCode() string
	IsRetryable() bool
	GetContext() map[string]string
	GetTimestamp() time.Time
}

// LogError logs an error with its classification and the given context
func LogError(logger Logger, err error, operation string, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []interface{}{"operation", operation}

	if coded, ok := err.(CodedError); ok {
		fields = append(fields,
			"error_code", coded.GetCode(),
			"retryable", coded.IsRetryable(),
			"timestamp", coded.GetTimestamp(),
		)
		for k, v := range coded.GetContext() {
			fields = append(fields, k, v)
		}
		for k, v := range context {
			fields = append(fields, k, v)
		}
		logger.Error(fmt.Sprintf("Operation failed: %s", err.Error()), fields...)
		return
	}

	fields = append(fields, "error_type", fmt.Sprintf("%T", err))
	for k, v := range context {
		fields = append(fields, k, v)
	}
	logger.Error(fmt.Sprintf("Unexpected error: %s", err.Error()), fields...)
}

// LogOperation logs successful operations with their duration
func LogOperation(logger Logger, operation string, duration time.Duration, context map[string]interface{}) {
	if logger == nil {
		logger = NewDefaultLogger()
	}

	fields := []interface{}{
		"operation", operation,
		"duration_ms", duration.Milliseconds(),
	}
	for k, v := range context {
		fields = append(fields, k, v)
	}

	logger.Info(fmt.Sprintf("Operation completed: %s", operation), fields...)
}
