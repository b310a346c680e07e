package models

import (
	"fmt"
	"time"
)

// CredentialPair holds the access and refresh credentials issued for one
// session by the upstream API. Writing a new pair always replaces the old one
// as a whole, there are no partial updates.
type CredentialPair struct {
	// SessionID ties the pair to exactly one gateway session
	SessionID    string
	AccessToken  string
	RefreshToken string
	// UTC timestamp for when the access token expires, decoded from its exp claim
	ExpiresAt time.Time
}

// Encrypt encrypts the token values of the pair if an encryptor is provided.
func (c CredentialPair) Encrypt(enc Encryptor) (CredentialPair, error) {
	if enc == nil {
		return c, nil
	}
	output := c
	encAccess, err := enc.Encrypt(c.AccessToken)
	if err != nil {
		return CredentialPair{}, err
	}
	encRefresh, err := enc.Encrypt(c.RefreshToken)
	if err != nil {
		return CredentialPair{}, err
	}
	output.AccessToken = encAccess
	output.RefreshToken = encRefresh
	return output, nil
}

// Decrypt decrypts the token values of the pair if an encryptor is provided.
func (c CredentialPair) Decrypt(enc Encryptor) (CredentialPair, error) {
	if enc == nil {
		return c, nil
	}
	output := c
	decAccess, err := enc.Decrypt(c.AccessToken)
	if err != nil {
		return CredentialPair{}, err
	}
	decRefresh, err := enc.Decrypt(c.RefreshToken)
	if err != nil {
		return CredentialPair{}, err
	}
	output.AccessToken = decAccess
	output.RefreshToken = decRefresh
	return output, nil
}

// String implements the Stringer interface for printing the pair in logs
func (c CredentialPair) String() string {
	return fmt.Sprintf(
		"CredentialPair<SessionID: %s, AccessToken: redacted, RefreshToken: redacted, ExpiresAt: %s>",
		c.SessionID,
		c.ExpiresAt,
	)
}

func (c CredentialPair) Expired() bool {
	return time.Now().UTC().After(c.ExpiresAt)
}

func (c CredentialPair) ExpiresSoon(margin time.Duration) bool {
	return time.Now().UTC().Add(margin).After(c.ExpiresAt)
}
