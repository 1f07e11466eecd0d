// Package log provides the leveled key=value logger used across gtt.
package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
)

// Level represents log severity levels
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a configuration string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info", "":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// Logger interface defines structured logging methods. Args are key/value
// pairs appended to the message.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Enabled(level Level) bool
	With(args ...interface{}) Logger
}

// Config holds configuration for the logger
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer
	Colors     bool
}

// DefaultLogger is the default implementation of Logger
type DefaultLogger struct {
	mu     *sync.Mutex
	level  Level
	json   bool
	out    io.Writer
	colors bool
	fields []interface{}
	now    func() time.Time
}

var (
	defaultLogger *DefaultLogger
	once          sync.Once
)

// New creates a new logger with the given configuration
func New(cfg Config) *DefaultLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return &DefaultLogger{
		mu:     &sync.Mutex{},
		level:  cfg.Level,
		json:   cfg.JSONOutput,
		out:    out,
		colors: cfg.Colors && !cfg.JSONOutput,
		now:    time.Now,
	}
}

// Default returns the process-wide logger writing to stderr.
func Default() *DefaultLogger {
	once.Do(func() {
		defaultLogger = New(Config{
			Level:  InfoLevel,
			Colors: color.SupportColor() && os.Getenv("NO_COLOR") == "",
		})
	})
	return defaultLogger
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return New(Config{Level: ErrorLevel + 1, Output: io.Discard})
}

// Configure applies level and output mode to the default logger.
func Configure(level Level, jsonOutput bool) {
	l := Default()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.json = jsonOutput
	if jsonOutput {
		l.colors = false
	}
}

// Enabled reports whether messages at level are written.
func (l *DefaultLogger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

// With returns a logger that adds args to every message.
func (l *DefaultLogger) With(args ...interface{}) Logger {
	child := *l
	child.fields = append(append([]interface{}{}, l.fields...), args...)
	return &child
}

// pairs normalizes args into key/value pairs. A leading odd argument is
// reported under the "extra" key.
func pairs(args []interface{}) [][2]interface{} {
	var out [][2]interface{}
	if len(args)%2 != 0 {
		out = append(out, [2]interface{}{"extra", args[0]})
		args = args[1:]
	}
	for i := 0; i+1 < len(args); i += 2 {
		out = append(out, [2]interface{}{fmt.Sprint(args[i]), args[i+1]})
	}
	return out
}

func formatText(msg string, kv [][2]interface{}) string {
	if len(kv) == 0 {
		return msg
	}
	var sb strings.Builder
	sb.WriteString(msg)
	for _, p := range kv {
		value := fmt.Sprintf("%v", p[1])
		if strings.ContainsAny(value, " \t\"") {
			value = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(&sb, " %s=%s", p[0], value)
	}
	return sb.String()
}

func levelStyle(level Level) color.Color {
	switch level {
	case DebugLevel:
		return color.FgCyan
	case InfoLevel:
		return color.FgGreen
	case WarnLevel:
		return color.FgYellow
	default:
		return color.FgRed
	}
}

func (l *DefaultLogger) log(level Level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}

	kv := pairs(append(append([]interface{}{}, l.fields...), args...))
	timestamp := l.now().Format("2006-01-02 15:04:05")

	if l.json {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level.String(),
			"message":   msg,
		}
		for _, p := range kv {
			key := p[0].(string)
			if err, ok := p[1].(error); ok {
				entry[key] = err.Error()
				continue
			}
			entry[key] = p[1]
		}
		data, err := json.Marshal(entry)
		if err != nil {
			data, _ = json.Marshal(map[string]string{"timestamp": timestamp, "level": level.String(), "message": msg})
		}
		fmt.Fprintln(l.out, string(data))
		return
	}

	levelStr := level.String()
	if l.colors {
		levelStr = levelStyle(level).Render(levelStr)
	}
	fmt.Fprintf(l.out, "[%s] %s: %s\n", timestamp, levelStr, formatText(msg, kv))
}

// Debug logs a debug message
func (l *DefaultLogger) Debug(msg string, args ...interface{}) {
	l.log(DebugLevel, msg, args)
}

// Info logs an info message
func (l *DefaultLogger) Info(msg string, args ...interface{}) {
	l.log(InfoLevel, msg, args)
}

// Warn logs a warning message
func (l *DefaultLogger) Warn(msg string, args ...interface{}) {
	l.log(WarnLevel, msg, args)
}

// Error logs an error message
func (l *DefaultLogger) Error(msg string, args ...interface{}) {
	l.log(ErrorLevel, msg, args)
}

var _ Logger = (*DefaultLogger)(nil)

// Progress reports how many of a known number of items are done. It
// redraws a single status line and is safe for concurrent use.
type Progress struct {
	mu      sync.Mutex
	out     io.Writer
	label   string
	total   int
	done    int
	enabled bool
}

// NewProgress creates a progress line on stderr. It is silent when stderr
// is not a color-capable terminal.
func NewProgress(label string, total int) *Progress {
	return &Progress{
		out:     os.Stderr,
		label:   label,
		total:   total,
		enabled: color.SupportColor() && os.Getenv("NO_COLOR") == "",
	}
}

// Step marks one more item as done.
func (p *Progress) Step() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.enabled {
		fmt.Fprintf(p.out, "\r%s %d/%d", color.FgCyan.Render(p.label), p.done, p.total)
	}
}

// Done clears the progress line.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		fmt.Fprint(p.out, "\r\033[K")
	}
}
