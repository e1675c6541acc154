package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
	ColorRed    = "\033[31m"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

var (
	mu          sync.Mutex
	globalLevel LogLevel  = LogLevelInfo
	output      io.Writer = os.Stdout
)

// ParseLevel maps a config string onto a level, falling back to info.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// SetGlobalLevel sets the level picked up by every logger created afterwards.
func SetGlobalLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	globalLevel = level
}

// SetOutput redirects all loggers, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

type Log struct {
	level  LogLevel
	err    error
	fields map[string]any
}

func New() *Log {
	mu.Lock()
	defer mu.Unlock()
	return &Log{level: globalLevel}
}

func (l *Log) SetLevel(level LogLevel) {
	l.level = level
}

func (l *Log) clone() *Log {
	c := &Log{level: l.level, err: l.err, fields: make(map[string]any, len(l.fields)+1)}
	for k, v := range l.fields {
		c.fields[k] = v
	}
	return c
}

func (l *Log) WithError(err error) *Log {
	c := l.clone()
	c.err = err
	return c
}

func (l *Log) WithField(key string, value any) *Log {
	c := l.clone()
	c.fields[key] = value
	return c
}

func (l *Log) timestamp() string {
	return time.Now().Format("15:04:05")
}

func (l *Log) suffix() string {
	var b strings.Builder
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
		}
	}
	if l.err != nil {
		fmt.Fprintf(&b, ": %v", l.err)
	}
	return b.String()
}

func (l *Log) print(level LogLevel, color, icon, msg string) {
	if level < l.level {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output, "%s[%s]%s %s %s%s%s\n", color, l.timestamp(), ColorReset, icon, msg, l.suffix(), ColorReset)
}

func (l *Log) Debug(msg string) {
	l.print(LogLevelDebug, ColorCyan, "🔎", msg)
}

func (l *Log) Info(msg string) {
	l.print(LogLevelInfo, ColorBlue, "ℹ️ ", msg)
}

// Success is an info-level line for completed user-facing actions.
func (l *Log) Success(msg string) {
	l.print(LogLevelInfo, ColorGreen, "✅", msg)
}

func (l *Log) Warn(msg string) {
	l.print(LogLevelWarn, ColorYellow, "⚠️ ", msg)
}

func (l *Log) Error(msg string) {
	l.print(LogLevelError, ColorRed, "❌", msg)
}
