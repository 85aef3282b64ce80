package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/middleware/session"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
)

type AuthHTTP struct {
	Svc          *service.AuthService
	SecureCookie bool
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_failed", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_failed", err, "cannot register user")
	}

	return success(c, http.StatusCreated, "registration successful", echo.Map{"user": user})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_failed", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(l, "login_failed", err, "cannot log in")
	}

	c.SetCookie(session.CreateCookie(res.Token, res.ExpiresAt, h.SecureCookie))
	return success(c, http.StatusOK, "login successful", echo.Map{
		"user":     res.Identity,
		"is_admin": res.Identity.IsAdmin(),
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	c.SetCookie(session.DeleteCookie(h.SecureCookie))
	if id, ok := session.IdentityFrom(c); ok {
		if err := h.Svc.Logout(ctx, id.SessionID); err != nil {
			return fail(l, "logout_failed", err, "cannot revoke session")
		}
	}

	l.Info("logout_success")
	return success(c, http.StatusOK, "logged out", nil)
}

func (h *AuthHTTP) Me(c echo.Context) error {
	id, ok := session.IdentityFrom(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, id)
}
