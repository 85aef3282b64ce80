package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
)

const CookieName = "session"

// Context keys set for every authenticated request. All four hold strings;
// UserID returns the numeric id.
const (
	KeyUserID   = "UserId"
	KeyUsername = "Username"
	KeyRole     = "UserRole"
	KeyFullName = "UserFullName"
	keyIdentity = "identity"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*service.Identity, error)
}

type Middleware struct {
	Auth         Authenticator
	SecureCookie bool
}

func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, false)
}

// RequireAdmin answers 401 without a session and 403 for a non-admin one.
func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, true)
}

func (m *Middleware) require(next echo.HandlerFunc, admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "session")

		cookie, err := c.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			l.Warn("session_rejected", "status", 401, "reason", "missing session cookie")
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}

		id, err := m.Auth.Authenticate(ctx, cookie.Value)
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				l.Warn("session_rejected", "status", 401, "reason", "invalid session", "error", err)
				c.SetCookie(DeleteCookie(m.SecureCookie))
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			l.Error("session_rejected", "status", 500, "reason", "cannot load session", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot load session")
		}

		if admin && !id.IsAdmin() {
			l.Warn("session_rejected", "status", 403, "reason", "admin role required", "user_id", id.UserID)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}

		setUserContext(c, id)
		return next(c)
	}
}

func setUserContext(c echo.Context, id *service.Identity) {
	c.Set(keyIdentity, id)
	c.Set(KeyUserID, strconv.FormatUint(uint64(id.UserID), 10))
	c.Set(KeyUsername, id.Username)
	c.Set(KeyRole, id.Role)
	c.Set(KeyFullName, id.FullName)

	l := logging.FromContext(c.Request().Context()).With("user_id", id.UserID)
	c.SetRequest(c.Request().WithContext(logging.IntoContext(c.Request().Context(), l)))
}

// IdentityFrom returns the identity stored by the session middleware.
func IdentityFrom(c echo.Context) (*service.Identity, bool) {
	id, ok := c.Get(keyIdentity).(*service.Identity)
	return id, ok
}

func UserID(c echo.Context) uint {
	if id, ok := IdentityFrom(c); ok {
		return id.UserID
	}
	return 0
}

func CreateCookie(value string, exp time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
