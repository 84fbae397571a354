// Package log provides structured debug logging for fuzzyhl.
// It wraps tea.LogToFile with structured fields (level, category, timestamp)
// and is enabled by --debug-log or FUZZYHL_DEBUG_LOG.
package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatLex      Category = "lex"      // Lexing
	CatParse    Category = "parse"    // Fuzzy parse and recovery
	CatClassify Category = "classify" // Token classification
	CatRender   Category = "render"   // Output rendering
	CatCache    Category = "cache"    // Highlight result cache
	CatConfig   Category = "config"   // Configuration loading
	CatCLI      Category = "cli"      // Command dispatch
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	closer   io.Closer
	enabled  bool
	minLevel Level
}

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

// Init opens path with tea.LogToFile and makes it the log destination.
// Returns a cleanup function to close the log file.
func Init(path string) (func(), error) {
	f, err := tea.LogToFile(path, "fuzzyhl")
	if err != nil {
		return nil, fmt.Errorf("open debug log: %w", err)
	}
	setDefault(&Logger{writer: f, closer: f, enabled: true, minLevel: LevelDebug})
	return func() {
		setDefault(nil)
		_ = f.Close()
	}, nil
}

// InitWriter logs to w. Used where no file is wanted.
func InitWriter(w io.Writer) func() {
	setDefault(&Logger{writer: w, enabled: true, minLevel: LevelDebug})
	return func() { setDefault(nil) }
}

func setDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

func current() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLogger
}

// Enabled reports whether a logger is active.
func Enabled() bool {
	l := current()
	return l != nil && l.enabled
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.enabled || level < l.minLevel || l.writer == nil {
		return
	}

	// Format: 2026-01-02T15:04:05 [DEBUG] [parse] message key=value key2=value2
	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	// Handle odd field count - append orphan key with no value
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(l.writer, b.String())
}
