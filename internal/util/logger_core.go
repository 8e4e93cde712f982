package util

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel orders log entries by severity
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// Field is a key-value pair attached to a log entry
type Field struct {
	Key   string
	Value interface{}
}

// LogFormat selects how outputs encode entries
type LogFormat string

const (
	FormatText LogFormat = "text"
	FormatJSON LogFormat = "json"
)

// Output is a log destination
type Output interface {
	Write(entry LogEntry) error
	Close() error
}

// LogEntry is a single log record as handed to outputs
type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger fans entries at or above its level out to every output
type Logger struct {
	level   LogLevel
	outputs []Output
	fields  map[string]interface{}
	mu      sync.RWMutex
}

// LoggerInterface is what the global helpers and Log hand out
type LoggerInterface interface {
	Debug(msg string, fields ...Field)
	Debugf(format string, args ...interface{})
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Warnf(format string, args ...interface{})
	Error(msg string, fields ...Field)
	WithContext(ctx context.Context) LoggerInterface
	AddOutput(output Output)
	Close() error
}

// NewLogger creates a logger writing to stderr in debug mode and to logFile
// when set. With neither, the logger discards everything.
func NewLogger(levelStr string, logFile string, debugToConsole bool, format LogFormat) (*Logger, error) {
	logger := &Logger{
		level:  parseLogLevel(levelStr),
		fields: make(map[string]interface{}),
	}

	if debugToConsole {
		if format == FormatJSON {
			logger.AddOutput(NewZapOutput(os.Stderr))
		} else {
			logger.AddOutput(NewConsoleOutput(os.Stderr, FormatText))
		}
	}

	if logFile != "" {
		fileOutput, err := NewFileOutput(logFile, format)
		if err != nil {
			return nil, fmt.Errorf("failed to create file output for %s: %w", logFile, err)
		}
		logger.AddOutput(fileOutput)
	}

	return logger, nil
}

// parseLogLevel maps a level name to its LogLevel, info when unknown
func parseLogLevel(levelStr string) LogLevel {
	switch strings.ToLower(levelStr) {
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

func (l *Logger) log(level LogLevel, msg string, fields ...Field) {
	if l.level > level {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     levelNames[level],
		Message:   msg,
		Fields:    make(map[string]interface{}, len(l.fields)+len(fields)),
	}
	for k, v := range l.fields {
		entry.Fields[k] = v
	}
	for _, field := range fields {
		entry.Fields[field.Key] = field.Value
	}

	for _, output := range l.outputs {
		if err := output.Write(entry); err != nil {
			log.Printf("Failed to write log entry: %v", err)
		}
	}
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(LevelDebug, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(LevelWarn, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

type contextKey string

const traceIDKey contextKey = "trace_id"

// ContextWithTraceID attaches a trace id picked up by WithContext
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID returns the trace id attached to ctx, if any
func TraceID(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(traceIDKey).(string)
	return traceID, ok
}

// WithContext returns a logger sharing the outputs of l whose entries carry
// the trace id of ctx
func (l *Logger) WithContext(ctx context.Context) LoggerInterface {
	l.mu.RLock()
	defer l.mu.RUnlock()

	fields := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		fields[k] = v
	}
	if traceID, ok := TraceID(ctx); ok {
		fields[string(traceIDKey)] = traceID
	}
	return &Logger{level: l.level, outputs: l.outputs, fields: fields}
}

// Close closes every output, returning the first failure
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, output := range l.outputs {
		if err := output.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.outputs = nil
	return firstErr
}

func (l *Logger) AddOutput(output Output) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.outputs = append(l.outputs, output)
}
