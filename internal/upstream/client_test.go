package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/lucentpay/console-gateway/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAuthServer(t *testing.T, handler http.HandlerFunc) *AuthClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	baseURL, err := url.Parse(server.URL)
	require.NoError(t, err)
	client, err := NewAuthClient(WithConfig(config.UpstreamConfig{
		BaseURL:     baseURL,
		LoginPath:   "/auth/login",
		RefreshPath: "/auth/refresh",
		LogoutPath:  "/auth/logout",
	}))
	require.NoError(t, err)
	return client
}

func TestLogin(t *testing.T) {
	client := testAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		payload := map[string]string{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "jane@example.com", payload["email"])
		require.Equal(t, "hunter2", payload["password"])
		json.NewEncoder(w).Encode(map[string]any{
			"user_id":       "user1",
			"access_token":  "access-token-value",
			"refresh_token": "refresh-token-value",
			"expires_in":    3600,
		})
	})

	creds, err := client.Login(context.Background(), "jane@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "user1", creds.UserID)
	assert.Equal(t, "access-token-value", creds.AccessToken)
	assert.Equal(t, "refresh-token-value", creds.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), creds.ExpiresAt, time.Minute)
}

func TestLoginRejected(t *testing.T) {
	client := testAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid credentials"})
	})

	_, err := client.Login(context.Background(), "jane@example.com", "wrong")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestRefresh(t *testing.T) {
	client := testAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		payload := map[string]string{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Equal(t, "old-refresh-token", payload["refresh_token"])
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "new-access-token",
			"refresh_token": "new-refresh-token",
			"expires_in":    900,
		})
	})

	creds, err := client.Refresh(context.Background(), "old-refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "new-access-token", creds.AccessToken)
	assert.Equal(t, "new-refresh-token", creds.RefreshToken)
}

func TestRefreshWithoutRotation(t *testing.T) {
	client := testAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "new-access-token",
			"expires_in":   900,
		})
	})

	creds, err := client.Refresh(context.Background(), "old-refresh-token")
	require.NoError(t, err)
	assert.Equal(t, "new-access-token", creds.AccessToken)
	assert.Empty(t, creds.RefreshToken)
}

func TestRefreshRejected(t *testing.T) {
	client := testAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.Refresh(context.Background(), "revoked-refresh-token")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestReplyWithoutAccessTokenIsAnError(t *testing.T) {
	client := testAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"expires_in": 900})
	})

	_, err := client.Refresh(context.Background(), "refresh-token")
	assert.Error(t, err)
}

func TestLogout(t *testing.T) {
	var seenAuthorization string
	client := testAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)
		seenAuthorization = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.Logout(context.Background(), "access-token-value")
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-token-value", seenAuthorization)
}

func TestLogoutRejected(t *testing.T) {
	client := testAuthServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.Logout(context.Background(), "access-token-value")
	assert.Error(t, err)
}
