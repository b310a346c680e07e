package config

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validTestConfig() Config {
	baseURL, _ := url.Parse("https://api.lucentpay.dev")
	return Config{
		Upstream: UpstreamConfig{
			BaseURL:     baseURL,
			LoginPath:   "/auth/session",
			RefreshPath: "/auth/session/refresh",
			LogoutPath:  "/auth/session/logout",
		},
		Credentials: CredentialsConfig{ExpiryMarginSeconds: 300},
		Sessions:    SessionConfig{IdleSessionTTLSeconds: 600, MaxSessionTTLSeconds: 3600},
		Redis:       RedisConfig{Type: DBTypeRedisMock},
	}
}

func TestValidateOK(t *testing.T) {
	config := validTestConfig()
	assert.NoError(t, config.Validate())
}

func TestValidateMissingUpstream(t *testing.T) {
	config := validTestConfig()
	config.Upstream.BaseURL = nil
	assert.Error(t, config.Validate())

	config = validTestConfig()
	config.Upstream.RefreshPath = ""
	assert.Error(t, config.Validate())
}

func TestValidateEncryptionKeyLength(t *testing.T) {
	config := validTestConfig()
	config.Credentials.Encryption = TokenEncryptionConfig{Enabled: true, SecretKey: "too-short"}
	assert.Error(t, config.Validate())

	config.Credentials.Encryption.SecretKey = RedactedString("0123456789abcdef0123456789abcdef")
	assert.NoError(t, config.Validate())
}

func TestValidateSessionTTLs(t *testing.T) {
	config := validTestConfig()
	config.Sessions = SessionConfig{IdleSessionTTLSeconds: 3600, MaxSessionTTLSeconds: 600}
	assert.Error(t, config.Validate())
}

func TestValidateRedis(t *testing.T) {
	config := validTestConfig()
	config.Redis = RedisConfig{Type: "unknown"}
	assert.Error(t, config.Validate())

	config.Redis = RedisConfig{Type: DBTypeRedis}
	assert.Error(t, config.Validate())

	config.Redis = RedisConfig{Type: DBTypeRedis, Addresses: []string{"localhost:6379"}}
	assert.NoError(t, config.Validate())
}
