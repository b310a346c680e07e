package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockEncryptor struct {
	suffix string
}

func (m *MockEncryptor) Encrypt(value string) (encrypted string, err error) {
	return value + m.suffix, nil
}

func (m *MockEncryptor) Decrypt(value string) (decrypted string, err error) {
	return strings.TrimSuffix(value, m.suffix), nil
}

func TestEncrypt(t *testing.T) {
	encryptSuffix := "_encrypted"
	encryptor := MockEncryptor{encryptSuffix}
	pair := CredentialPair{
		SessionID:    "123456",
		AccessToken:  "secretAccessValue",
		RefreshToken: "secretRefreshValue",
		ExpiresAt:    time.Now().Add(time.Hour * 4),
	}
	encPair, err := pair.Encrypt(&encryptor)
	require.NoError(t, err)
	assert.Equal(t, pair.AccessToken+encryptSuffix, encPair.AccessToken)
	assert.Equal(t, pair.RefreshToken+encryptSuffix, encPair.RefreshToken)
	encPair.AccessToken = pair.AccessToken
	encPair.RefreshToken = pair.RefreshToken
	assert.Equal(t, pair, encPair)
}

func TestDecrypt(t *testing.T) {
	encryptSuffix := "_encrypted"
	encryptor := MockEncryptor{encryptSuffix}
	pair := CredentialPair{
		SessionID:    "123456",
		AccessToken:  "secretAccessValue",
		RefreshToken: "secretRefreshValue",
		ExpiresAt:    time.Now().Add(time.Hour * 4),
	}
	encPair, err := pair.Encrypt(&encryptor)
	require.NoError(t, err)
	decPair, err := encPair.Decrypt(&encryptor)
	require.NoError(t, err)
	assert.Equal(t, pair, decPair)
}

func TestNoEncryptor(t *testing.T) {
	pair := CredentialPair{
		SessionID:    "123456",
		AccessToken:  "secretAccessValue",
		RefreshToken: "secretRefreshValue",
		ExpiresAt:    time.Now().Add(time.Hour * 4),
	}
	encPair, err := pair.Encrypt(nil)
	require.NoError(t, err)
	decPair, err := encPair.Decrypt(nil)
	require.NoError(t, err)
	assert.Equal(t, pair, encPair)
	assert.Equal(t, pair, decPair)
}

func TestCredentialPairString(t *testing.T) {
	pair := CredentialPair{
		SessionID:    "123456",
		AccessToken:  "secretAccessValue",
		RefreshToken: "secretRefreshValue",
		ExpiresAt:    time.Now().Add(time.Hour * 4),
	}
	printed := pair.String()
	assert.NotContains(t, printed, "secretAccessValue")
	assert.NotContains(t, printed, "secretRefreshValue")
	assert.Contains(t, printed, "123456")
}

func TestCredentialPairExpiry(t *testing.T) {
	pair := CredentialPair{
		SessionID:   "123456",
		AccessToken: "value",
		ExpiresAt:   time.Now().UTC().Add(2 * time.Minute),
	}
	assert.False(t, pair.Expired())
	assert.True(t, pair.ExpiresSoon(5*time.Minute))
	assert.False(t, pair.ExpiresSoon(time.Minute))
	pair.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	assert.True(t, pair.Expired())
	assert.True(t, pair.ExpiresSoon(time.Minute))
}
