// Package audit writes the hiring-pipeline audit trail as structured zap
// records, separate from the application log stream.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType names an auditable action.
type EventType string

const (
	EventApplicationSubmitted EventType = "application_submitted"
	EventApplicationWithdrawn EventType = "application_withdrawn"
	EventStatusChanged        EventType = "status_changed"
	EventBulkStatusChanged    EventType = "bulk_status_changed"
	EventTransitionForbidden  EventType = "transition_forbidden"
	EventInterviewScheduled   EventType = "interview_scheduled"
	EventInterviewUpdated     EventType = "interview_updated"
	EventChatDeleted          EventType = "chat_deleted"
	EventJobClosed            EventType = "job_closed"
)

// Event is one audit record.
type Event struct {
	Timestamp time.Time
	Type      EventType
	ActorID   string
	Subject   string // "application", "chat", ...
	SubjectID int64
	Details   map[string]interface{}
}

// Logger emits audit events. The zero value is not usable; use New or Nop.
type Logger struct {
	zapLogger *zap.Logger
	service   string
}

// New builds a production zap logger writing JSON to stdout.
func New(service string) *Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	l, err := config.Build(zap.AddCaller())
	if err != nil {
		l, _ = zap.NewProduction()
	}
	return &Logger{zapLogger: l.Named("audit"), service: service}
}

// Nop discards every event.
func Nop() *Logger {
	return &Logger{zapLogger: zap.NewNop()}
}

// NewWithCore is used by tests to observe events.
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{zapLogger: zap.New(core), service: "test"}
}

// Log records an event. Forbidden attempts are logged at warn level.
func (l *Logger) Log(_ context.Context, ev Event) {
	if l == nil {
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	fields := []zap.Field{
		zap.String("service", l.service),
		zap.String("event", string(ev.Type)),
		zap.String("actor_id", ev.ActorID),
		zap.String("subject", ev.Subject),
		zap.Int64("subject_id", ev.SubjectID),
		zap.Time("at", ev.Timestamp),
	}
	if len(ev.Details) > 0 {
		fields = append(fields, zap.Any("details", ev.Details))
	}

	if ev.Type == EventTransitionForbidden {
		l.zapLogger.Warn("audit", fields...)
		return
	}
	l.zapLogger.Info("audit", fields...)
}

// Sync flushes buffered records.
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.zapLogger.Sync()
}
