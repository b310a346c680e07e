// Package proxy forwards console API calls to the upstream with the session's
// access token attached, refreshing the token when the upstream rejects it.
package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/lucentpay/console-gateway/internal/config"
	"github.com/lucentpay/console-gateway/internal/gwerrors"
	"github.com/lucentpay/console-gateway/internal/models"
	"github.com/lucentpay/console-gateway/internal/sessions"
	"github.com/lucentpay/console-gateway/internal/utils"
)

// CredentialSource provides tokens that are safe to send upstream.
// *refresh.Coordinator implements it.
type CredentialSource interface {
	Fresh(ctx context.Context, sessionID string) (models.CredentialPair, error)
	Refresh(ctx context.Context, sessionID string) (models.CredentialPair, error)
}

type Proxy struct {
	upstreamURL *url.URL
	credentials CredentialSource
	sessions    *sessions.SessionStore
	client      *http.Client
}

type ProxyOption func(*Proxy) error

func WithConfig(upstreamConfig config.UpstreamConfig) ProxyOption {
	return func(p *Proxy) error {
		if upstreamConfig.BaseURL == nil {
			return fmt.Errorf("the upstream base URL is not set")
		}
		p.upstreamURL = upstreamConfig.BaseURL
		return nil
	}
}

func WithCredentialSource(source CredentialSource) ProxyOption {
	return func(p *Proxy) error {
		p.credentials = source
		return nil
	}
}

func WithSessionStore(store *sessions.SessionStore) ProxyOption {
	return func(p *Proxy) error {
		p.sessions = store
		return nil
	}
}

func WithHTTPClient(client *http.Client) ProxyOption {
	return func(p *Proxy) error {
		p.client = client
		return nil
	}
}

func NewProxy(options ...ProxyOption) (*Proxy, error) {
	proxy := Proxy{client: &http.Client{Timeout: 60 * time.Second}}
	for _, opt := range options {
		err := opt(&proxy)
		if err != nil {
			return &Proxy{}, err
		}
	}
	if proxy.upstreamURL == nil {
		return &Proxy{}, fmt.Errorf("proxy config not provided")
	}
	if proxy.credentials == nil {
		return &Proxy{}, fmt.Errorf("credential source not initialized")
	}
	if proxy.sessions == nil {
		return &Proxy{}, fmt.Errorf("session store not initialized")
	}
	return &proxy, nil
}

func (p *Proxy) RegisterHandlers(server *echo.Echo, commonMiddlewares ...echo.MiddlewareFunc) {
	e := server.Group("/api")
	e.Use(commonMiddlewares...)
	e.Any("/*", p.Execute)
}

type errorResponse struct {
	Message string `json:"message"`
}

func authenticationRequired(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Message: "authentication required"})
}

func sessionExpired(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{Message: "your session has expired, please sign in again"})
}

// Execute forwards one console API call upstream. The session's access token
// is refreshed proactively when it is about to expire, and reactively when the
// upstream rejects it, in which case the call is resent exactly once. A second
// rejection is passed through untouched. Business-level errors from the
// upstream are never reinterpreted.
func (p *Proxy) Execute(c echo.Context) error {
	ctx := c.Request().Context()

	session, err := p.sessions.Get(c)
	if err != nil || session.ID == "" {
		if err != nil && err != gwerrors.ErrSessionNotFound && err != gwerrors.ErrSessionExpired {
			return err
		}
		return authenticationRequired(c)
	}

	pair, err := p.credentials.Fresh(ctx, session.ID)
	if err == gwerrors.ErrCredentialsNotFound {
		return authenticationRequired(c)
	}
	if err == gwerrors.ErrSessionExpired {
		// the proactive refresh failed, do not even send the request
		p.endSession(c, session.ID)
		return sessionExpired(c)
	}
	if err != nil {
		return err
	}

	// the body has to be buffered so a rejected request can be resent
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	correlationID := c.Request().Header.Get("X-Correlation-ID")
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	retried := false
	for {
		resp, err := p.send(c, pair.AccessToken, correlationID, body)
		if err != nil {
			slog.Error("PROXY", "message", "the upstream call failed", "error", err, "requestID", utils.GetRequestID(c))
			return c.JSON(http.StatusBadGateway, errorResponse{Message: "the upstream service is unavailable"})
		}
		if resp.StatusCode == http.StatusUnauthorized && !retried {
			resp.Body.Close()
			slog.Info(
				"PROXY",
				"message",
				"the upstream rejected the access token, refreshing",
				"sessionID",
				session.ID,
				"requestID",
				utils.GetRequestID(c),
			)
			pair, err = p.credentials.Refresh(ctx, session.ID)
			if err != nil {
				p.endSession(c, session.ID)
				return sessionExpired(c)
			}
			retried = true
			continue
		}
		// a second rejection, or any other status, goes to the caller as-is
		return relay(c, resp)
	}
}

// send performs one upstream attempt with the given access token.
func (p *Proxy) send(c echo.Context, accessToken string, correlationID string, body []byte) (*http.Response, error) {
	incoming := c.Request()
	target := p.upstreamURL.JoinPath(strings.TrimPrefix(incoming.URL.Path, "/api"))
	target.RawQuery = incoming.URL.RawQuery

	req, err := http.NewRequestWithContext(incoming.Context(), incoming.Method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header = incoming.Header.Clone()
	// the session cookie is gateway-internal and never goes upstream
	req.Header.Del(echo.HeaderCookie)
	req.Header.Set("X-Correlation-ID", correlationID)
	if req.Header.Get(echo.HeaderAuthorization) == "" {
		req.Header.Set(echo.HeaderAuthorization, fmt.Sprintf("Bearer %s", accessToken))
	}
	return p.client.Do(req)
}

// relay streams an upstream response back to the caller unmodified.
func relay(c echo.Context, resp *http.Response) error {
	defer resp.Body.Close()
	header := c.Response().Header()
	for key, values := range resp.Header {
		for _, value := range values {
			header.Add(key, value)
		}
	}
	c.Response().WriteHeader(resp.StatusCode)
	_, err := io.Copy(c.Response(), resp.Body)
	return err
}

// endSession removes the session after an unrecoverable refresh failure. The
// credentials are already gone at this point, this only cleans up the session
// record and the cookie.
func (p *Proxy) endSession(c echo.Context, sessionID string) {
	err := p.sessions.Delete(c)
	if err != nil {
		slog.Warn("PROXY", "message", "cannot remove the session of an expired login", "error", err, "sessionID", sessionID)
	}
}
