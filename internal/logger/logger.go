package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tomoyayamashita/license-gate/internal/ecosystem"
	"github.com/tomoyayamashita/license-gate/internal/policy"
)

// Level represents log level
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

var levelOrder = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel converts a flag value into a Level
func ParseLevel(s string) (Level, error) {
	level := Level(s)
	if _, ok := levelOrder[level]; !ok {
		return LevelInfo, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
	}
	return level, nil
}

// Logger provides JSON Lines logging
type Logger struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
}

// NewLogger creates a new Logger
func NewLogger(writer io.Writer, level Level) *Logger {
	if writer == nil {
		writer = os.Stderr
	}
	return &Logger{
		writer: writer,
		level:  level,
	}
}

// PackageCheckEvent represents a package check event
type PackageCheckEvent struct {
	Timestamp string `json:"ts"`
	Level     string `json:"level"`
	Event     string `json:"event"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	License   string `json:"license"`
	Group     string `json:"group,omitempty"`
	Decision  string `json:"decision"`
	Reason    string `json:"reason,omitempty"`
	Mode      string `json:"mode"`
	CI        bool   `json:"ci"`
	RunID     string `json:"run_id,omitempty"`
}

// LogPackageCheck logs the classification of one package at debug level,
// or warn level when it is blocked
func (l *Logger) LogPackageCheck(
	pkg ecosystem.PackageRecord,
	result policy.Result,
	mode policy.Mode,
	isCI bool,
	runID string,
) {
	level := LevelDebug
	if result.ShouldBlock() {
		level = LevelWarn
	}
	if !l.shouldLog(level) {
		return
	}

	l.writeJSON(PackageCheckEvent{
		Timestamp: now(),
		Level:     string(level),
		Event:     "package_check",
		Name:      pkg.Name,
		Version:   pkg.Version,
		License:   pkg.License,
		Group:     string(pkg.Group),
		Decision:  string(result.Decision),
		Reason:    result.Reason,
		Mode:      string(mode),
		CI:        isCI,
		RunID:     runID,
	})
}

// LogDiagnostics logs non-fatal package notices as warnings, one event per
// notice named after its kind
func (l *Logger) LogDiagnostics(diags []ecosystem.Diagnostic, runID string) {
	for _, d := range diags {
		event := string(d.Kind)
		if event == "" {
			event = "diagnostic"
		}
		l.Warn(event, d.Message, map[string]interface{}{
			"package": d.Package,
			"run_id":  runID,
		})
	}
}

// GenericEvent represents a generic log event
type GenericEvent struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	Message   string                 `json:"message,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Log logs a generic event
func (l *Logger) Log(level Level, event, message string, data map[string]interface{}) {
	l.writeJSON(GenericEvent{
		Timestamp: now(),
		Level:     string(level),
		Event:     event,
		Message:   message,
		Data:      data,
	})
}

// Debug logs a debug event
func (l *Logger) Debug(event, message string, data map[string]interface{}) {
	if l.shouldLog(LevelDebug) {
		l.Log(LevelDebug, event, message, data)
	}
}

// Info logs an info event
func (l *Logger) Info(event, message string, data map[string]interface{}) {
	if l.shouldLog(LevelInfo) {
		l.Log(LevelInfo, event, message, data)
	}
}

// Warn logs a warning event
func (l *Logger) Warn(event, message string, data map[string]interface{}) {
	if l.shouldLog(LevelWarn) {
		l.Log(LevelWarn, event, message, data)
	}
}

// Error logs an error event
func (l *Logger) Error(event, message string, data map[string]interface{}) {
	if l.shouldLog(LevelError) {
		l.Log(LevelError, event, message, data)
	}
}

// writeJSON writes a JSON line to the output
func (l *Logger) writeJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		// Fallback to stderr if marshal fails
		os.Stderr.WriteString("Failed to marshal log: " + err.Error() + "\n")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer.Write(append(data, '\n'))
}

// shouldLog checks if a log level should be logged
func (l *Logger) shouldLog(level Level) bool {
	return levelOrder[level] >= levelOrder[l.level]
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
