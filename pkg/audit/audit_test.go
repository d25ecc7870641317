package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogLevels(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := NewWithCore(core)

	l.Log(context.Background(), Event{Type: EventStatusChanged, ActorID: "r1", Subject: "application", SubjectID: 10,
		Details: map[string]interface{}{"from": "Applied", "to": "Reviewed"}})
	l.Log(context.Background(), Event{Type: EventTransitionForbidden, ActorID: "r2", Subject: "application", SubjectID: 10})

	entries := logs.All()
	require.Len(t, entries, 2)

	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "status_changed", fields["event"])
	assert.Equal(t, "r1", fields["actor_id"])
	assert.Equal(t, int64(10), fields["subject_id"])
	assert.Contains(t, fields, "details")

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.NotContains(t, entries[1].ContextMap(), "details")
}

func TestNilAndNopLoggers(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Log(context.Background(), Event{Type: EventJobClosed}) })
	assert.NoError(t, l.Sync())

	assert.NotPanics(t, func() { Nop().Log(context.Background(), Event{Type: EventChatDeleted}) })
}
