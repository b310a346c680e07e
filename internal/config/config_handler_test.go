package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeYamlFile(t *testing.T, path string, content map[string]any) {
	t.Helper()
	data, err := yaml.Marshal(content)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func testConfigContent() map[string]any {
	return map[string]any{
		"server": map[string]any{
			"host": "127.0.0.1",
			"port": 8080,
		},
		"upstream": map[string]any{
			"baseurl":     "https://api.lucentpay.dev",
			"loginpath":   "/auth/session",
			"refreshpath": "/auth/session/refresh",
			"logoutpath":  "/auth/session/logout",
		},
		"credentials": map[string]any{
			"expirymarginseconds":  300,
			"sweepintervalminutes": 1,
		},
		"sessions": map[string]any{
			"idlesessionttlseconds": 600,
			"maxsessionttlseconds":  3600,
		},
		"redis": map[string]any{
			"type":      "redis",
			"addresses": []string{"localhost:6379"},
		},
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	writeYamlFile(t, filepath.Join(dir, "config.yaml"), testConfigContent())
	writeYamlFile(t, filepath.Join(dir, "secret_config.yaml"), map[string]any{
		"redis": map[string]any{
			"password": "secret-password-from-file",
		},
	})
	t.Setenv("CONFIG_LOCATION", dir)

	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", config.Server.Host)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "https://api.lucentpay.dev", config.Upstream.BaseURL.String())
	assert.Equal(t, "/auth/session/refresh", config.Upstream.RefreshPath)
	assert.Equal(t, 300, config.Credentials.ExpiryMarginSeconds)
	// the secret file overwrites the main config
	assert.Equal(t, RedactedString("secret-password-from-file"), config.Redis.Password)
}

func TestEnvVarsOverrideConfigFiles(t *testing.T) {
	dir := t.TempDir()
	writeYamlFile(t, filepath.Join(dir, "config.yaml"), testConfigContent())
	writeYamlFile(t, filepath.Join(dir, "secret_config.yaml"), map[string]any{
		"redis": map[string]any{
			"password": "secret-password-from-file",
		},
	})
	t.Setenv("CONFIG_LOCATION", dir)
	t.Setenv("REDIS_PASSWORD", "env-var-password")
	t.Setenv("UPSTREAM_LOGINPATH", "/auth/signin")

	ch := NewConfigHandler()
	config, err := ch.Config()
	require.NoError(t, err)

	assert.Equal(t, RedactedString("env-var-password"), config.Redis.Password)
	assert.Equal(t, "/auth/signin", config.Upstream.LoginPath)
}

func TestConfigIsStable(t *testing.T) {
	dir := t.TempDir()
	writeYamlFile(t, filepath.Join(dir, "config.yaml"), testConfigContent())
	writeYamlFile(t, filepath.Join(dir, "secret_config.yaml"), map[string]any{})
	t.Setenv("CONFIG_LOCATION", dir)

	ch := NewConfigHandler()
	config1, err := ch.Config()
	require.NoError(t, err)
	config2, err := ch.Config()
	require.NoError(t, err)

	if diff := cmp.Diff(config1, config2); diff != "" {
		t.Errorf("reading the same configuration twice gave different results (-first +second):\n%s", diff)
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	dir := t.TempDir()
	content := testConfigContent()
	content["credentials"] = map[string]any{"expirymarginseconds": 0}
	writeYamlFile(t, filepath.Join(dir, "config.yaml"), content)
	writeYamlFile(t, filepath.Join(dir, "secret_config.yaml"), map[string]any{})
	t.Setenv("CONFIG_LOCATION", dir)

	ch := NewConfigHandler()
	_, err := ch.Config()
	assert.Error(t, err)
}
