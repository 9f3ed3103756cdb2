package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "session"

// SessionResolver resolves a session token to a user id.
type SessionResolver interface {
	Resolve(ctx context.Context, token uuid.UUID) (uuid.UUID, error)
}

// SessionAuth validates the session cookie and sets the user id in the echo
// context. Web page requests without a valid session are redirected to the
// login form; API requests get a plain 401.
func SessionAuth(sessions SessionResolver, redirectToLogin bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := resolveCookie(c, sessions)
			if err != nil {
				if redirectToLogin {
					// Drop the dead cookie, otherwise the login page keeps
					// bouncing the browser back here.
					dropSessionCookie(c)
					return c.Redirect(http.StatusFound, "/login")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
			}

			c.Set("user_id", userID)
			return next(c)
		}
	}
}

func resolveCookie(c echo.Context, sessions SessionResolver) (uuid.UUID, error) {
	cookie, err := c.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return uuid.Nil, fmt.Errorf("missing session cookie")
	}

	token, err := uuid.Parse(cookie.Value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("malformed session token")
	}

	return sessions.Resolve(c.Request().Context(), token)
}

func dropSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetUserID extracts the authenticated user id from echo context
func GetUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get("user_id").(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("user_id not found in context")
	}
	return userID, nil
}
