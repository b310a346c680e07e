package config

import (
	"fmt"
	"net/url"
)

// UpstreamConfig describes the dashboard API the gateway fronts.
type UpstreamConfig struct {
	// BaseURL is where all proxied /api requests go
	BaseURL *url.URL
	// LoginPath, RefreshPath and LogoutPath are the auth endpoints of the
	// upstream API, relative to BaseURL
	LoginPath   string
	RefreshPath string
	LogoutPath  string
}

func (c *UpstreamConfig) Validate() error {
	if c.BaseURL == nil || c.BaseURL.String() == "" {
		return fmt.Errorf("the upstream base URL is not set")
	}
	if c.LoginPath == "" || c.RefreshPath == "" || c.LogoutPath == "" {
		return fmt.Errorf("the upstream auth endpoint paths are not fully set")
	}
	return nil
}

type TokenEncryptionConfig struct {
	Enabled   bool
	SecretKey RedactedString
}

// CredentialsConfig controls how the gateway treats stored credential pairs.
type CredentialsConfig struct {
	// ExpiryMarginSeconds is the proactive refresh horizon: a credential
	// expiring within this margin is refreshed before it is used
	ExpiryMarginSeconds int
	// SweepIntervalMinutes is how often the background sweep looks for
	// credentials that are about to expire, zero disables the sweep
	SweepIntervalMinutes int
	Encryption           TokenEncryptionConfig
}

func (c *CredentialsConfig) Validate() error {
	if c.ExpiryMarginSeconds <= 0 {
		return fmt.Errorf("invalid value for ExpiryMarginSeconds (%d)", c.ExpiryMarginSeconds)
	}
	if c.Encryption.Enabled && len(c.Encryption.SecretKey) != 32 {
		return fmt.Errorf(
			"token encryption key has to be 32 bytes long, the provided one is %d long",
			len(c.Encryption.SecretKey),
		)
	}
	return nil
}
