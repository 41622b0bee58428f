package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// LogLevel defines the severity of the log
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// LogFormat defines the output format of the log
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Logger is the interface for logging SQL executions and internal
// messages.
type Logger interface {
	SetLevel(level LogLevel)
	SetFormat(format LogFormat)
	SetOutput(w io.Writer)
	WithFields(fields map[string]any) Logger
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SQL(sql string, duration time.Duration, args ...any)
}

// stdLogger is the default implementation of Logger.
type stdLogger struct {
	level  LogLevel
	format LogFormat
	writer io.Writer
	fields map[string]any
}

// NewStdLogger creates a logger writing text records to stdout at
// Info level.
func NewStdLogger() Logger {
	return &stdLogger{
		level:  LogLevelInfo,
		format: LogFormatText,
		writer: os.Stdout,
		fields: make(map[string]any),
	}
}

// WithFields returns a copy of the logger that attaches the given
// fields to every record. The receiver is left untouched.
func (l *stdLogger) WithFields(fields map[string]any) Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &stdLogger{
		level:  l.level,
		format: l.format,
		writer: l.writer,
		fields: merged,
	}
}

func (l *stdLogger) SetLevel(level LogLevel) {
	l.level = level
}

func (l *stdLogger) SetFormat(format LogFormat) {
	l.format = format
}

func (l *stdLogger) SetOutput(w io.Writer) {
	l.writer = w
}

func (l *stdLogger) Info(format string, args ...any) {
	if l.level >= LogLevelInfo {
		l.log("INFO", fmt.Sprintf(format, args...))
	}
}

func (l *stdLogger) Warn(format string, args ...any) {
	if l.level >= LogLevelWarn {
		l.log("WARN", fmt.Sprintf(format, args...))
	}
}

func (l *stdLogger) Error(format string, args ...any) {
	if l.level >= LogLevelError {
		l.log("ERROR", fmt.Sprintf(format, args...))
	}
}

func (l *stdLogger) SQL(sql string, duration time.Duration, args ...any) {
	if l.level < LogLevelInfo {
		return
	}
	if l.format == LogFormatJSON {
		l.logJSON("SQL", map[string]any{
			"sql":      sql,
			"duration": duration.String(),
			"args":     args,
		})
		return
	}
	msg := fmt.Sprintf("[%v] %s | args: %v", duration, sql, args)
	l.log("SQL", statementColor(sql)+msg+ansiReset)
}

func (l *stdLogger) log(level, msg string) {
	now := time.Now()
	if l.format == LogFormatJSON {
		l.logJSON(level, map[string]any{"msg": msg})
		return
	}
	fieldStr := ""
	if len(l.fields) > 0 {
		fieldStr = fmt.Sprintf(" fields: %v", l.fields)
	}
	fmt.Fprintf(l.writer, "[DBQ] %s %s: %s%s\n", now.Format("2006-01-02 15:04:05"), level, msg, fieldStr)
}

func (l *stdLogger) logJSON(level string, data map[string]any) {
	for k, v := range l.fields {
		if _, taken := data[k]; !taken {
			data[k] = v
		}
	}
	data["time"] = time.Now().Format(time.RFC3339)
	data["level"] = level
	json.NewEncoder(l.writer).Encode(data)
}

func statementColor(sql string) string {
	s := strings.TrimSpace(strings.ToUpper(sql))
	switch {
	case strings.HasPrefix(s, "SELECT"):
		return ansiYellow
	case strings.HasPrefix(s, "INSERT"), strings.HasPrefix(s, "UPDATE"):
		return ansiGreen
	case strings.HasPrefix(s, "DELETE"):
		return ansiRed
	default:
		return ansiCyan
	}
}
