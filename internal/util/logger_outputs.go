package util

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// formatText renders an entry as a single text line with sorted fields
func formatText(entry LogEntry) string {
	timestamp := entry.Timestamp.Format("2006/01/02 15:04:05")
	output := fmt.Sprintf("%s [%s] %s", timestamp, entry.Level, entry.Message)

	if len(entry.Fields) > 0 {
		fieldStrs := make([]string, 0, len(entry.Fields))
		for k, v := range entry.Fields {
			fieldStrs = append(fieldStrs, fmt.Sprintf("%s=%v", k, v))
		}
		sort.Strings(fieldStrs)
		output += " " + strings.Join(fieldStrs, " ")
	}
	return output
}

// ConsoleOutput writes logs to console
type ConsoleOutput struct {
	writer io.Writer
	format LogFormat
	mu     sync.Mutex
}

// NewConsoleOutput creates a new console output
func NewConsoleOutput(writer io.Writer, format LogFormat) Output {
	return &ConsoleOutput{
		writer: writer,
		format: format,
	}
}

// Write writes a log entry to console
func (c *ConsoleOutput) Write(entry LogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var output string
	if c.format == FormatJSON {
		data, err := sonic.Marshal(entry)
		if err != nil {
			return err
		}
		output = string(data)
	} else {
		output = formatText(entry)
	}

	_, err := fmt.Fprintln(c.writer, output)
	return err
}

// Close closes the console output
func (c *ConsoleOutput) Close() error {
	return nil
}

// FileOutput writes logs to a file
type FileOutput struct {
	file   *os.File
	format LogFormat
	mu     sync.Mutex
}

// NewFileOutput creates a new file output
func NewFileOutput(path string, format LogFormat) (Output, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	return &FileOutput{
		file:   file,
		format: format,
	}, nil
}

// Write writes a log entry to file
func (f *FileOutput) Write(entry LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var output string
	if f.format == FormatJSON {
		data, err := sonic.Marshal(entry)
		if err != nil {
			return err
		}
		output = string(data)
	} else {
		output = formatText(entry)
	}

	_, err := fmt.Fprintln(f.file, output)
	return err
}

// Close closes the file
func (f *FileOutput) Close() error {
	return f.file.Close()
}

// ZapOutput writes JSON log lines through a zap core
type ZapOutput struct {
	logger *zap.Logger
}

// NewZapOutput creates a JSON output on writer backed by zap
func NewZapOutput(writer io.Writer) Output {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(writer),
		zapcore.DebugLevel,
	)
	return &ZapOutput{logger: zap.New(core)}
}

func zapLevel(level string) zapcore.Level {
	switch level {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Write writes a log entry through zap
func (z *ZapOutput) Write(entry LogEntry) error {
	ce := z.logger.Check(zapLevel(entry.Level), entry.Message)
	if ce == nil {
		return nil
	}
	ce.Time = entry.Timestamp

	fields := make([]zap.Field, 0, len(entry.Fields))
	for k, v := range entry.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	ce.Write(fields...)
	return nil
}

// Close flushes zap buffers
func (z *ZapOutput) Close() error {
	// syncing a terminal returns EINVAL on some platforms
	_ = z.logger.Sync()
	return nil
}
