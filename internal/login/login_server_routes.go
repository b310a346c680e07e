package login

import (
	"context"
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/lucentpay/console-gateway/internal/gwerrors"
	"github.com/lucentpay/console-gateway/internal/models"
	"github.com/lucentpay/console-gateway/internal/upstream"
	"github.com/lucentpay/console-gateway/internal/utils"
)

// upstreamLogoutTimeout bounds the best-effort logout call so that a slow
// upstream can never hold local teardown hostage.
const upstreamLogoutTimeout = 5 * time.Second

// loginIDGenerator produces the IDs that correlate the log lines of one login
// or logout attempt. ULIDs sort by time which makes them easy to scan in logs.
var loginIDGenerator models.IDGenerator = models.ULIDGenerator{}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID string `json:"user_id"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// PostLogin signs the user in against the upstream API. On success a new
// session is created and its credential pair stored, on failure nothing is
// stored and the upstream's reason is relayed to the caller.
func (l *LoginServer) PostLogin(c echo.Context) error {
	attemptID, err := loginIDGenerator.ID()
	if err != nil {
		return err
	}
	request := loginRequest{}
	if err := c.Bind(&request); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "cannot parse the login payload"})
	}
	if request.Email == "" || request.Password == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Message: "email and password are required"})
	}

	creds, err := l.upstream.Login(c.Request().Context(), request.Email, request.Password)
	if err != nil {
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) {
			slog.Info(
				"LOGIN",
				"message",
				"the upstream rejected a login",
				"status",
				apiErr.Status,
				"attemptID",
				attemptID,
				"requestID",
				utils.GetRequestID(c),
			)
			return c.JSON(apiErr.Status, errorResponse{Message: apiErr.Message})
		}
		slog.Error("LOGIN", "message", "calling the upstream login endpoint failed", "error", err, "attemptID", attemptID, "requestID", utils.GetRequestID(c))
		return c.JSON(http.StatusBadGateway, errorResponse{Message: "the login service is unavailable"})
	}

	session, err := l.sessions.Create(c)
	if err != nil {
		return err
	}
	session.UserID = creds.UserID

	pair := models.CredentialPair{
		SessionID:    session.ID,
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		ExpiresAt:    creds.ExpiresAt,
	}
	if err := l.credentials.SetCredentials(c.Request().Context(), pair); err != nil {
		return err
	}

	slog.Info("LOGIN", "message", "user logged in", "userID", creds.UserID, "sessionID", session.ID, "attemptID", attemptID, "requestID", utils.GetRequestID(c))
	return c.JSON(http.StatusOK, loginResponse{UserID: creds.UserID})
}

// PostLogout tears the session down. The upstream invalidation call is
// best-effort, its failure is logged and swallowed and never blocks the local
// teardown. Logging out without a session, or twice in a row, succeeds.
func (l *LoginServer) PostLogout(c echo.Context) error {
	session, err := l.sessions.Get(c)
	if err != nil && err != gwerrors.ErrSessionNotFound && err != gwerrors.ErrSessionExpired {
		return err
	}

	if session.ID != "" {
		pair, err := l.credentials.GetCredentials(c.Request().Context(), session.ID)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), upstreamLogoutTimeout)
			defer cancel()
			if err := l.upstream.Logout(ctx, pair.AccessToken); err != nil {
				slog.Warn("LOGOUT", "message", "the upstream logout call failed", "error", err, "sessionID", session.ID, "requestID", utils.GetRequestID(c))
			}
		} else if err != gwerrors.ErrCredentialsNotFound {
			slog.Warn("LOGOUT", "message", "cannot load the session credentials", "error", err, "sessionID", session.ID, "requestID", utils.GetRequestID(c))
		}

		if err := l.credentials.RemoveCredentials(c.Request().Context(), session.ID); err != nil {
			return err
		}
	}

	if err := l.sessions.Delete(c); err != nil {
		return err
	}
	slog.Info("LOGOUT", "message", "session ended", "sessionID", session.ID, "requestID", utils.GetRequestID(c))
	return c.NoContent(http.StatusNoContent)
}
