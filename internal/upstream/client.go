// Package upstream talks to the auth endpoints of the dashboard API the gateway fronts.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"log/slog"

	"github.com/lucentpay/console-gateway/internal/config"
	"github.com/lucentpay/console-gateway/internal/tokens"
)

// APIError is a non-2xx reply from an upstream auth endpoint.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream replied with status %d: %s", e.Status, e.Message)
}

// credentialResponse is the payload returned by the upstream login and refresh endpoints.
type credentialResponse struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Credentials is the decoded outcome of a successful login or refresh call.
type Credentials struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

type AuthClient struct {
	baseURL     *url.URL
	loginPath   string
	refreshPath string
	logoutPath  string
	httpClient  *http.Client
}

type AuthClientOption func(*AuthClient) error

func WithConfig(upstreamConfig config.UpstreamConfig) AuthClientOption {
	return func(c *AuthClient) error {
		if upstreamConfig.BaseURL == nil {
			return fmt.Errorf("the upstream base URL is not set")
		}
		c.baseURL = upstreamConfig.BaseURL
		c.loginPath = upstreamConfig.LoginPath
		c.refreshPath = upstreamConfig.RefreshPath
		c.logoutPath = upstreamConfig.LogoutPath
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) AuthClientOption {
	return func(c *AuthClient) error {
		c.httpClient = httpClient
		return nil
	}
}

// NewAuthClient creates a client for the upstream login, refresh and logout endpoints.
func NewAuthClient(options ...AuthClientOption) (*AuthClient, error) {
	client := AuthClient{httpClient: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range options {
		err := opt(&client)
		if err != nil {
			return &AuthClient{}, err
		}
	}
	if client.baseURL == nil {
		return &AuthClient{}, fmt.Errorf("upstream client config not provided")
	}
	return &client, nil
}

func (c *AuthClient) endpoint(path string) string {
	return c.baseURL.JoinPath(path).String()
}

// Login exchanges user credentials for a fresh credential pair.
func (c *AuthClient) Login(ctx context.Context, email string, password string) (Credentials, error) {
	payload := map[string]string{"email": email, "password": password}
	return c.postForCredentials(ctx, c.endpoint(c.loginPath), payload)
}

// Refresh exchanges a refresh token for a new credential pair. The upstream may or
// may not rotate the refresh token, when it does not the returned RefreshToken is empty.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (Credentials, error) {
	payload := map[string]string{"refresh_token": refreshToken}
	return c.postForCredentials(ctx, c.endpoint(c.refreshPath), payload)
}

// Logout asks the upstream to invalidate the session's credentials. This is best-effort
// from the gateway's point of view, the caller is expected to tear the session down locally
// no matter what this returns.
func (c *AuthClient) Logout(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(c.logoutPath), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: "logout rejected"}
	}
	return nil
}

func (c *AuthClient) postForCredentials(ctx context.Context, endpoint string, payload map[string]string) (Credentials, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Credentials{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Credentials{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Credentials{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := APIError{Status: resp.StatusCode}
		errBody := struct {
			Message string `json:"message"`
		}{}
		// the body is informational only, ignore decoding problems
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			apiErr.Message = errBody.Message
		}
		return Credentials{}, &apiErr
	}

	decoded := credentialResponse{}
	err = json.NewDecoder(resp.Body).Decode(&decoded)
	if err != nil {
		return Credentials{}, err
	}
	if decoded.AccessToken == "" {
		return Credentials{}, fmt.Errorf("the upstream reply contains no access token")
	}

	expiresAt := time.Now().UTC().Add(time.Second * time.Duration(decoded.ExpiresIn))
	if decoded.ExpiresIn <= 0 {
		// no expires_in in the reply, fall back to the token's own exp claim
		decodedExpiry, err := tokens.ExpiresAt(decoded.AccessToken)
		if err != nil {
			// a zero expiry counts as already expired which forces a refresh on first use
			slog.Warn("UPSTREAM", "message", "cannot determine the access token expiry", "error", err)
			decodedExpiry = time.Time{}
		}
		expiresAt = decodedExpiry
	}

	return Credentials{
		UserID:       decoded.UserID,
		AccessToken:  decoded.AccessToken,
		RefreshToken: decoded.RefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}
