package db

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/lucentpay/console-gateway/internal/gwerrors"
	"github.com/lucentpay/console-gateway/internal/models"
	"github.com/redis/go-redis/v9"
)

// GetCredentials reads the credential pair of a session from Redis
func (r RedisAdapter) GetCredentials(ctx context.Context, sessionID string) (models.CredentialPair, error) {
	output := models.CredentialPair{}
	raw, err := r.rdb.HGetAll(
		ctx,
		credentialsPrefix+sessionID,
	).Result()
	if err != nil {
		return output, err
	}
	err = r.deserializeToStruct(raw, &output)
	if err != nil {
		if err == gwerrors.ErrMissingDBResource {
			err = gwerrors.ErrCredentialsNotFound
		}
		return models.CredentialPair{}, err
	}
	decPair, err := output.Decrypt(r.encryptor)
	if err != nil {
		return models.CredentialPair{}, err
	}
	return decPair, nil
}

// SetCredentials writes a session's credential pair to Redis. A single HSET with a fixed
// field set fully replaces the previous pair, there are never partial updates.
func (r RedisAdapter) SetCredentials(ctx context.Context, pair models.CredentialPair) error {
	if pair.SessionID == "" {
		return fmt.Errorf("cannot store a credential pair without a session ID")
	}
	encPair, err := pair.Encrypt(r.encryptor)
	if err != nil {
		return err
	}

	slog.Debug("CREDENTIAL STORE", "message", "saving credential pair", "pair", pair)

	err = r.setToIndexExpiringCredentials(ctx, pair)
	if err != nil {
		return err
	}
	return r.rdb.HSet(
		ctx,
		credentialsPrefix+pair.SessionID,
		r.serializeStruct(encPair)...,
	).Err()
}

// RemoveCredentials removes a session's credential pair from Redis. Removing an
// absent pair is not an error.
func (r RedisAdapter) RemoveCredentials(ctx context.Context, sessionID string) error {
	err := r.rdb.ZRem(
		ctx,
		indexExpiringCredentials,
		sessionID,
	).Err()
	if err != nil {
		return err
	}
	return r.rdb.Del(
		ctx,
		credentialsPrefix+sessionID,
	).Err()
}

// GetExpiringCredentialIDs reads the session IDs whose access credential expires
// between the two provided timestamps.
func (r RedisAdapter) GetExpiringCredentialIDs(
	ctx context.Context,
	expiryStart time.Time,
	expiryEnd time.Time,
) ([]string, error) {
	var expiring []string

	zrangeargs := redis.ZRangeArgs{
		Key:     indexExpiringCredentials,
		Start:   float64(expiryStart.Unix()),
		Stop:    float64(expiryEnd.Unix()),
		ByScore: true,
	}

	zrange, err := r.rdb.ZRangeArgsWithScores(
		ctx,
		zrangeargs,
	).Result()

	for _, member := range zrange {
		expiring = append(expiring, fmt.Sprintf("%v", member.Member))
	}

	return expiring, err
}

// setToIndexExpiringCredentials writes the expiry and session ID of a credential pair
// to the sorted set used by the background sweep.
func (r RedisAdapter) setToIndexExpiringCredentials(ctx context.Context, pair models.CredentialPair) error {
	z1 := redis.Z{
		Score:  float64(pair.ExpiresAt.Unix()),
		Member: pair.SessionID,
	}

	return r.rdb.ZAdd(
		ctx,
		indexExpiringCredentials,
		z1,
	).Err()
}
