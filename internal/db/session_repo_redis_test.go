package db

import (
	"context"
	"testing"
	"time"

	"github.com/lucentpay/console-gateway/internal/gwerrors"
	"github.com/lucentpay/console-gateway/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Check that RedisAdapter implements SessionRepository.
// This test would fail to compile otherwise.
func TestRedisAdapterIsSessionRepository(t *testing.T) {
	rdb := RedisAdapter{}
	_ = models.SessionRepository(rdb)
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter := NewMockRedisAdapter()
	session := models.Session{
		ID:             "session1",
		UserID:         "user1",
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		ExpiresAt:      time.Now().UTC().Add(time.Hour).Truncate(time.Second),
		IdleTTLSeconds: 600,
		MaxTTLSeconds:  3600,
	}

	err := adapter.SetSession(ctx, session)
	require.NoError(t, err)

	loaded, err := adapter.GetSession(ctx, "session1")
	require.NoError(t, err)
	assert.Equal(t, session, loaded)
}

func TestSessionNotFound(t *testing.T) {
	ctx := context.Background()
	adapter := NewMockRedisAdapter()

	_, err := adapter.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, gwerrors.ErrSessionNotFound)
}

func TestRemoveSession(t *testing.T) {
	ctx := context.Background()
	adapter := NewMockRedisAdapter()
	session := models.Session{ID: "session1", CreatedAt: time.Now().UTC()}
	require.NoError(t, adapter.SetSession(ctx, session))

	require.NoError(t, adapter.RemoveSession(ctx, "session1"))
	_, err := adapter.GetSession(ctx, "session1")
	assert.ErrorIs(t, err, gwerrors.ErrSessionNotFound)

	// removing a removed session does not fail
	require.NoError(t, adapter.RemoveSession(ctx, "session1"))
}
