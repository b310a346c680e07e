package login

import (
	"context"

	"github.com/lucentpay/console-gateway/internal/upstream"
)

// UpstreamAuthenticator is the part of the upstream auth API the login server
// needs. *upstream.AuthClient implements it.
type UpstreamAuthenticator interface {
	Login(ctx context.Context, email string, password string) (upstream.Credentials, error)
	Logout(ctx context.Context, accessToken string) error
}
