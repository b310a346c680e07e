package db

import (
	"context"

	"github.com/lucentpay/console-gateway/internal/gwerrors"
	"github.com/lucentpay/console-gateway/internal/models"
)

// GetSession reads a session from Redis
func (r RedisAdapter) GetSession(ctx context.Context, sessionID string) (models.Session, error) {
	output := models.Session{}
	// NOTE: HGETALL will return an empty list of hash-keys and hash-values if the key is not found
	// then this is deserialized as an empty (zero-valued) struct
	raw, err := r.rdb.HGetAll(
		ctx,
		sessionPrefix+sessionID,
	).Result()
	if err != nil {
		return output, err
	}
	err = r.deserializeToStruct(raw, &output)
	if err != nil {
		if err == gwerrors.ErrMissingDBResource {
			err = gwerrors.ErrSessionNotFound
		}
		return models.Session{}, err
	}
	return output, nil
}

// SetSession writes a session to Redis
func (r RedisAdapter) SetSession(ctx context.Context, session models.Session) error {
	return r.rdb.HSet(
		ctx,
		sessionPrefix+session.ID,
		r.serializeStruct(session)...,
	).Err()
}

// RemoveSession removes a session entry from Redis
func (r RedisAdapter) RemoveSession(ctx context.Context, sessionID string) error {
	return r.rdb.Del(
		ctx,
		sessionPrefix+sessionID,
	).Err()
}
