package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionExpired(t *testing.T) {
	session := Session{
		ID:        "sessionID1",
		CreatedAt: time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	assert.False(t, session.Expired())
	session.ExpiresAt = time.Now().Add(-8 * time.Hour)
	assert.True(t, session.Expired())
}

func TestSessionTouch(t *testing.T) {
	session := Session{
		ID:             "sessionID1",
		CreatedAt:      time.Now().UTC(),
		IdleTTLSeconds: 600,
		MaxTTLSeconds:  3600,
	}
	session.ExpiresAt = session.CreatedAt.Add(session.IdleTTL())
	session.Touch()
	assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), session.ExpiresAt, time.Minute)

	// the max TTL caps the sliding expiry
	session.CreatedAt = time.Now().UTC().Add(-59 * time.Minute)
	session.Touch()
	assert.WithinDuration(t, session.CreatedAt.Add(time.Hour), session.ExpiresAt, time.Second)
}

func TestSerializableIntText(t *testing.T) {
	var a SerializableInt = 10
	data, err := a.MarshalText()
	assert.NoError(t, err)
	var b SerializableInt
	err = b.UnmarshalText(data)
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSerializableIntBinary(t *testing.T) {
	var a SerializableInt = 10
	data, err := a.MarshalBinary()
	assert.NoError(t, err)
	var b SerializableInt
	err = b.UnmarshalBinary(data)
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}
