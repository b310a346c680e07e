// Package tokens inspects access tokens issued by the upstream API.
//
// The expiry claim is decoded without any signature verification. The result
// is advisory and only ever used to decide when to refresh a credential,
// never whether to trust it. The upstream API remains the sole authority on
// token validity.
package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ExpiresAt decodes the exp claim of an access token without verifying its
// signature. A token that cannot be decoded or carries no exp claim returns
// an error.
func ExpiresAt(accessToken string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("the access token carries no exp claim")
	}
	return claims.ExpiresAt.Time, nil
}

// Expired reports whether the token's expiry is at or before now. A token
// whose expiry cannot be decoded counts as expired so that the caller is
// pushed toward a refresh instead of sending a bad credential upstream.
func Expired(accessToken string, now time.Time) bool {
	expiresAt, err := ExpiresAt(accessToken)
	if err != nil {
		return true
	}
	return !expiresAt.After(now)
}

// ExpiresSoon reports whether the token expires within the given margin from
// now. Decode failures count as expiring, same as in Expired.
func ExpiresSoon(accessToken string, now time.Time, margin time.Duration) bool {
	expiresAt, err := ExpiresAt(accessToken)
	if err != nil {
		return true
	}
	return expiresAt.Sub(now) < margin
}
