// Package login handles the session lifecycle of the console: signing users in
// against the upstream API and tearing sessions down again.
package login

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/lucentpay/console-gateway/internal/models"
	"github.com/lucentpay/console-gateway/internal/sessions"
)

type LoginServer struct {
	upstream    UpstreamAuthenticator
	sessions    *sessions.SessionStore
	credentials models.CredentialRepository
}

func (l *LoginServer) RegisterHandlers(server *echo.Echo, commonMiddlewares ...echo.MiddlewareFunc) {
	e := server.Group("/auth")
	e.Use(commonMiddlewares...)

	e.POST("/login", l.PostLogin, NoCaching)
	e.POST("/logout", l.PostLogout, NoCaching)
}

type LoginServerOption func(*LoginServer) error

func WithUpstream(authenticator UpstreamAuthenticator) LoginServerOption {
	return func(l *LoginServer) error {
		l.upstream = authenticator
		return nil
	}
}

func WithSessionStore(store *sessions.SessionStore) LoginServerOption {
	return func(l *LoginServer) error {
		l.sessions = store
		return nil
	}
}

func WithCredentialRepository(repo models.CredentialRepository) LoginServerOption {
	return func(l *LoginServer) error {
		l.credentials = repo
		return nil
	}
}

// NewLoginServer creates a new LoginServer that signs users in against the
// upstream API and stores the resulting credential pair for their session.
func NewLoginServer(options ...LoginServerOption) (*LoginServer, error) {
	server := LoginServer{}
	for _, opt := range options {
		err := opt(&server)
		if err != nil {
			return &LoginServer{}, err
		}
	}
	if server.upstream == nil {
		return &LoginServer{}, fmt.Errorf("upstream authenticator not initialized")
	}
	if server.sessions == nil {
		return &LoginServer{}, fmt.Errorf("session store not initialized")
	}
	if server.credentials == nil {
		return &LoginServer{}, fmt.Errorf("credential repository not initialized")
	}
	return &server, nil
}
