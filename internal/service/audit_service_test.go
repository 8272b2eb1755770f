package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/garage-auth/internal/events"
)

func TestAuditServiceLogsEvents(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventLoginSucceeded, "alice", "10.0.0.1", nil)))
	require.NoError(t, dispatcher.Publish(ctx, events.NewEvent(events.EventLoginFailed, "alice", "", events.LoginFailedPayload{Reason: "bad_credentials"})))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "login_succeeded", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "alice", entries[0].ContextMap()["username"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}
