package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGCMEncryptorRoundTrip(t *testing.T) {
	enc, err := NewGCMEncryptor("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	encrypted, err := enc.Encrypt("some-token-value")
	require.NoError(t, err)
	assert.NotEqual(t, "some-token-value", encrypted)

	decrypted, err := enc.Decrypt(encrypted)
	require.NoError(t, err)
	assert.Equal(t, "some-token-value", decrypted)
}

func TestGCMEncryptorUniqueNonces(t *testing.T) {
	enc, err := NewGCMEncryptor("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	first, err := enc.Encrypt("same-value")
	require.NoError(t, err)
	second, err := enc.Encrypt("same-value")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestGCMEncryptorRejectsBadKey(t *testing.T) {
	_, err := NewGCMEncryptor("too-short")
	assert.Error(t, err)
}

func TestGCMEncryptorRejectsTamperedValue(t *testing.T) {
	enc, err := NewGCMEncryptor("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	_, err = enc.Decrypt("not-encrypted")
	assert.Error(t, err)
}
