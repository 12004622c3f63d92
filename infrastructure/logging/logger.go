// Package logging provides structured logging with trace ID support and
// the fixed-field redaction the kernel's error-handling design requires
// (spec §7): actor_id, from_actor, to_actor, amount, and any field whose
// name looks like a token or key are scrubbed before they reach a sink.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContextKey is the type for context keys.
type ContextKey string

const (
	TraceIDKey ContextKey = "trace_id"
	UserIDKey  ContextKey = "user_id"
	RoleKey    ContextKey = "role"
	ServiceKey ContextKey = "service"
)

// redactedFields lists field names scrubbed from every log entry by
// default. Matching is case-insensitive and also catches any field
// name containing "token" or "key" as a substring.
var redactedFields = map[string]bool{
	"actor_id":   true,
	"from_actor": true,
	"to_actor":   true,
	"amount":     true,
}

const redactedValue = "[REDACTED]"

func shouldRedact(field string) bool {
	lower := strings.ToLower(field)
	if redactedFields[lower] {
		return true
	}
	return strings.Contains(lower, "token") || strings.Contains(lower, "key")
}

// Redact returns a copy of fields with sensitive values replaced.
func Redact(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if shouldRedact(k) {
			out[k] = redactedValue
			continue
		}
		out[k] = v
	}
	return out
}

// Logger wraps logrus.Logger with service tagging and redaction.
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a new Logger instance.
func New(service, level, format string) *Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	}

	logger.SetOutput(os.Stdout)

	return &Logger{Logger: logger, service: service}
}

// NewFromEnv constructs a logger using LOG_LEVEL and LOG_FORMAT
// environment variables. Defaults to "info" and "json" when unset.
func NewFromEnv(service string) *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(service, level, format)
}

// WithContext creates a new logger entry with context values.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("service", l.service)

	if traceID := ctx.Value(TraceIDKey); traceID != nil {
		entry = entry.WithField("trace_id", traceID)
	}
	if userID := ctx.Value(UserIDKey); userID != nil {
		entry = entry.WithField("actor_id", redactedValue)
	}
	if role := ctx.Value(RoleKey); role != nil {
		entry = entry.WithField("role", role)
	}

	return entry
}

// WithTraceID creates a new logger entry with a trace id.
func (l *Logger) WithTraceID(traceID string) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"service":  l.service,
		"trace_id": traceID,
	})
}

// WithFields creates a new logger entry with redacted custom fields.
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	redacted := Redact(fields)
	redacted["service"] = l.service
	return l.Logger.WithFields(redacted)
}

// WithError creates a new logger entry carrying an error.
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{
		"service": l.service,
		"error":   err.Error(),
	})
}

// SetOutput sets the logger output.
func (l *Logger) SetOutput(output io.Writer) {
	l.Logger.SetOutput(output)
}

// NewTraceID generates a new trace/correlation id.
func NewTraceID() string {
	return uuid.New().String()
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, RoleKey, role)
}

func GetRole(ctx context.Context) string {
	if role, ok := ctx.Value(RoleKey).(string); ok {
		return role
	}
	return ""
}

func WithService(ctx context.Context, service string) context.Context {
	return context.WithValue(ctx, ServiceKey, service)
}

func GetService(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceKey).(string); ok {
		return serviceName
	}
	return ""
}

// Kernel-specific structured logging helpers ---------------------------

// LogCommand logs a command's outcome through the façade.
func (l *Logger) LogCommand(ctx context.Context, commandType, streamID string, duration time.Duration, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"command_type": commandType,
		"stream_id":    streamID,
		"duration_ms":  duration.Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).Error("command rejected")
		return
	}
	entry.Info("command applied")
}

// LogAppend logs an event-log append outcome.
func (l *Logger) LogAppend(ctx context.Context, streamID string, eventCount int, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"stream_id":   streamID,
		"event_count": eventCount,
	})
	if err != nil {
		entry.WithError(err).Error("append failed")
		return
	}
	entry.Debug("append committed")
}

// LogReflexEvent logs a tick-engine-emitted reflex event.
func (l *Logger) LogReflexEvent(ctx context.Context, eventType, streamID string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(Redact(fields)).WithFields(logrus.Fields{
		"event_type": eventType,
		"stream_id":  streamID,
		"reflex":     true,
	}).Info("reflex event emitted")
}

// LogAudit logs an audit event.
func (l *Logger) LogAudit(ctx context.Context, action, resource, resourceID, result string) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"action":      action,
		"resource":    resource,
		"resource_id": resourceID,
		"result":      result,
		"audit":       true,
	}).Info("audit log")
}

// LogErrorWithStack logs an error with redacted additional context.
// The name is kept from the teacher's convention; production builds
// never attach an actual stack trace (spec §7), only structured fields.
func (l *Logger) LogErrorWithStack(ctx context.Context, err error, message string, fields map[string]interface{}) {
	logFields := Redact(fields)
	logFields["error"] = err.Error()
	l.WithContext(ctx).WithFields(logFields).Error(message)
}

func (l *Logger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	if l.Logger.Level >= logrus.DebugLevel {
		l.WithContext(ctx).WithFields(fields).Debug(message)
	}
}

func (l *Logger) Info(ctx context.Context, message string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(fields).Info(message)
}

func (l *Logger) Warn(ctx context.Context, message string, fields map[string]interface{}) {
	l.WithContext(ctx).WithFields(fields).Warn(message)
}

func (l *Logger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	entry := l.WithContext(ctx)
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.WithFields(Redact(fields)).Error(message)
}

// Global default logger, set once at process construction time.

var defaultLogger *Logger

func InitDefault(service, level, format string) {
	defaultLogger = New(service, level, format)
}

func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = New("unknown", "info", "json")
	}
	return defaultLogger
}

func InfoDefault(ctx context.Context, message string) {
	Default().WithContext(ctx).Info(message)
}

func ErrorDefault(ctx context.Context, message string, err error) {
	Default().WithContext(ctx).WithError(err).Error(message)
}

func WarnDefault(ctx context.Context, message string) {
	Default().WithContext(ctx).Warn(message)
}

func DebugDefault(ctx context.Context, message string) {
	Default().WithContext(ctx).Debug(message)
}

// FormatDuration formats a duration in milliseconds for log fields.
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1e6)
}
