package util

import (
	"context"
	"sync"
)

var (
	globalLogger LoggerInterface
	loggerOnce   sync.Once
)

// InitLogger initializes the global logger instance with debug mode support
func InitLogger(logLevel, logFile string, debugToConsole bool, format LogFormat) error {
	var err error
	loggerOnce.Do(func() {
		var logger *Logger
		logger, err = NewLogger(logLevel, logFile, debugToConsole, format)
		if err == nil {
			globalLogger = logger
		}
	})
	return err
}

// SetLogger replaces the global logger, returning the previous one
func SetLogger(logger LoggerInterface) LoggerInterface {
	previous := globalLogger
	globalLogger = logger
	return previous
}

// Log returns the global logger enriched with the values of ctx, a silent
// logger when none was initialized.
func Log(ctx context.Context) LoggerInterface {
	if globalLogger == nil {
		return &Logger{level: LevelError, fields: make(map[string]interface{})}
	}
	return globalLogger.WithContext(ctx)
}

// LogInfo convenience functions for logging
func LogInfo(msg string) {
	if globalLogger != nil {
		globalLogger.Info(msg)
	}
}

func LogDebug(msg string) {
	if globalLogger != nil {
		globalLogger.Debug(msg)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.Debugf(format, args...)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if globalLogger != nil {
		globalLogger.Warnf(format, args...)
	}
}

func LogError(msg string) {
	if globalLogger != nil {
		globalLogger.Error(msg)
	}
}
