// Package refresh keeps the stored credential pairs fresh. The Coordinator
// guarantees that for any one session at most one refresh call is in flight
// against the upstream at any time, no matter how many request handlers notice
// an expiring token at once.
package refresh

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/lucentpay/console-gateway/internal/gwerrors"
	"github.com/lucentpay/console-gateway/internal/models"
	"github.com/lucentpay/console-gateway/internal/tokens"
	"github.com/lucentpay/console-gateway/internal/upstream"
)

// UpstreamRefresher is the single upstream call the coordinator makes.
// *upstream.AuthClient implements it.
type UpstreamRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (upstream.Credentials, error)
}

// attempt is one in-flight refresh. The outcome fields are written exactly
// once, before done is closed, and only read after done is closed.
type attempt struct {
	done chan struct{}
	pair models.CredentialPair
	err  error
}

type Coordinator struct {
	upstream    UpstreamRefresher
	credentials models.CredentialRepository
	margin      time.Duration

	mu       sync.Mutex
	inflight map[string]*attempt
}

type CoordinatorOption func(*Coordinator) error

func WithUpstream(refresher UpstreamRefresher) CoordinatorOption {
	return func(c *Coordinator) error {
		if refresher == nil {
			return fmt.Errorf("the upstream refresher cannot be nil")
		}
		c.upstream = refresher
		return nil
	}
}

func WithCredentialRepository(repo models.CredentialRepository) CoordinatorOption {
	return func(c *Coordinator) error {
		if repo == nil {
			return fmt.Errorf("the credential repository cannot be nil")
		}
		c.credentials = repo
		return nil
	}
}

// WithExpiryMargin sets how long before its expiry a token counts as expiring
// soon and gets refreshed proactively.
func WithExpiryMargin(margin time.Duration) CoordinatorOption {
	return func(c *Coordinator) error {
		if margin < 0 {
			return fmt.Errorf("the expiry margin cannot be negative")
		}
		c.margin = margin
		return nil
	}
}

func NewCoordinator(options ...CoordinatorOption) (*Coordinator, error) {
	coordinator := Coordinator{
		margin:   5 * time.Minute,
		inflight: map[string]*attempt{},
	}
	for _, opt := range options {
		err := opt(&coordinator)
		if err != nil {
			return &Coordinator{}, err
		}
	}
	if coordinator.upstream == nil {
		return &Coordinator{}, fmt.Errorf("the coordinator cannot be created without an upstream refresher")
	}
	if coordinator.credentials == nil {
		return &Coordinator{}, fmt.Errorf("the coordinator cannot be created without a credential repository")
	}
	return &coordinator, nil
}

// Fresh returns an access token that is safe to send upstream, refreshing the
// session's credential pair first when the stored token is expired or about to
// expire. Most callers want this rather than Refresh.
func (c *Coordinator) Fresh(ctx context.Context, sessionID string) (models.CredentialPair, error) {
	pair, err := c.credentials.GetCredentials(ctx, sessionID)
	if err != nil {
		return models.CredentialPair{}, err
	}
	if !tokens.ExpiresSoon(pair.AccessToken, time.Now().UTC(), c.margin) {
		return pair, nil
	}
	slog.Debug("REFRESH", "message", "access token expires soon, refreshing", "sessionID", sessionID)
	return c.Refresh(ctx, sessionID)
}

// Refresh obtains a new credential pair for the session with single-flight
// semantics. Callers that arrive while a refresh for the same session is in
// flight do not trigger a second upstream call, they block until the in-flight
// attempt settles and then all observe its outcome. A failed refresh is fatal
// for the session: the stored credentials are removed and every caller gets
// ErrSessionExpired.
func (c *Coordinator) Refresh(ctx context.Context, sessionID string) (models.CredentialPair, error) {
	c.mu.Lock()
	if inflight, found := c.inflight[sessionID]; found {
		c.mu.Unlock()
		select {
		case <-inflight.done:
			return inflight.pair, inflight.err
		case <-ctx.Done():
			// the in-flight refresh keeps running, only this caller gives up
			return models.CredentialPair{}, ctx.Err()
		}
	}
	current := &attempt{done: make(chan struct{})}
	c.inflight[sessionID] = current
	c.mu.Unlock()

	// The refresh outcome is shared session state, not per-caller state, so it
	// must not die with the caller that happened to trigger it.
	current.pair, current.err = c.doRefresh(context.WithoutCancel(ctx), sessionID)

	// Remove the entry before releasing the waiters so that a later call
	// starts a fresh attempt instead of adopting this settled one.
	c.mu.Lock()
	delete(c.inflight, sessionID)
	c.mu.Unlock()
	close(current.done)

	return current.pair, current.err
}

// ExpiringSessionIDs lists the sessions whose stored credentials expire within
// the given window. Used by the background sweep.
func (c *Coordinator) ExpiringSessionIDs(ctx context.Context, start time.Time, end time.Time) ([]string, error) {
	return c.credentials.GetExpiringCredentialIDs(ctx, start, end)
}

func (c *Coordinator) doRefresh(ctx context.Context, sessionID string) (models.CredentialPair, error) {
	current, err := c.credentials.GetCredentials(ctx, sessionID)
	if err != nil {
		return models.CredentialPair{}, err
	}

	refreshed, err := c.upstream.Refresh(ctx, current.RefreshToken)
	if err != nil {
		slog.Warn("REFRESH", "message", "refreshing the credentials failed, tearing the session down", "sessionID", sessionID, "error", err)
		removeErr := c.credentials.RemoveCredentials(ctx, sessionID)
		if removeErr != nil {
			slog.Error("REFRESH", "message", "cannot remove the credentials of an expired session", "sessionID", sessionID, "error", removeErr)
		}
		return models.CredentialPair{}, gwerrors.ErrSessionExpired
	}

	refreshToken := refreshed.RefreshToken
	if refreshToken == "" {
		// the upstream did not rotate the refresh token, keep the current one
		refreshToken = current.RefreshToken
	}
	pair := models.CredentialPair{
		SessionID:    sessionID,
		AccessToken:  refreshed.AccessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    refreshed.ExpiresAt,
	}
	// The new pair has to be stored before any waiter is released so that a
	// retried request always reads the refreshed token.
	err = c.credentials.SetCredentials(ctx, pair)
	if err != nil {
		return models.CredentialPair{}, err
	}
	slog.Debug("REFRESH", "message", "credentials refreshed", "sessionID", sessionID, "expiresAt", pair.ExpiresAt)
	return pair, nil
}
