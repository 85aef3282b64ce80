package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy_shop/internal/logging"
	"github.com/Skotchmaster/pharmacy_shop/internal/service"
	"github.com/Skotchmaster/pharmacy_shop/internal/upload"
)

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrorHandler renders every error as {"success": false, "message": ...}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	} else {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", code, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, envelope{Success: false, Message: msg})
}

// fail logs err under event and turns it into the matching HTTP error.
// Anything that is not a known service error becomes a 500 with a generic
// message; the cause only goes to the log.
func fail(l *slog.Logger, event string, err error, internal string) error {
	code, msg := http.StatusInternalServerError, internal

	switch {
	case errors.Is(err, service.ErrValidation):
		code, msg = http.StatusBadRequest, detail(err, service.ErrValidation)
	case errors.Is(err, upload.ErrUnsupportedImage):
		code, msg = http.StatusBadRequest, detail(err, upload.ErrUnsupportedImage)
	case errors.Is(err, service.ErrInvalidCredentials):
		code, msg = http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, service.ErrUnauthorized):
		code, msg = http.StatusUnauthorized, "authentication required"
	case errors.Is(err, service.ErrNotFound):
		code, msg = http.StatusNotFound, detail(err, service.ErrNotFound)+" not found"
	case errors.Is(err, service.ErrConflict):
		code, msg = http.StatusConflict, detail(err, service.ErrConflict)
	}

	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", code, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

// detail strips the sentinel prefix from a "%w: ..." error message.
func detail(err, sentinel error) string {
	s := err.Error()
	if i := strings.Index(s, sentinel.Error()+": "); i >= 0 {
		return s[i+len(sentinel.Error())+2:]
	}
	return sentinel.Error()
}

func success(c echo.Context, code int, msg string, extra echo.Map) error {
	body := echo.Map{"success": true, "message": msg}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(code, body)
}
