package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medical_shop/internal/service"
)

const internalMessage = "internal server error"

// ErrorHandler renders every error as {"error": "<message>"}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := internalMessage

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		switch m := he.Message.(type) {
		case string:
			msg = m
		case error:
			msg = m.Error()
		default:
			msg = fmt.Sprint(m)
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": msg})
}

// statusFor maps service errors to a status and a message safe to show a client.
func statusFor(err error) (int, string) {
	var stockErr *service.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return http.StatusBadRequest, stockErr.Error()
	case errors.Is(err, service.ErrEmptyCart):
		return http.StatusBadRequest, service.ErrEmptyCart.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusBadRequest, service.ErrInvalidCredentials.Error()
	case errors.Is(err, service.ErrInvalidResetToken):
		return http.StatusBadRequest, service.ErrInvalidResetToken.Error()
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, detail(err, service.ErrValidation)
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, strings.Replace(err.Error(), ": "+service.ErrNotFound.Error(), " "+service.ErrNotFound.Error(), 1)
	case errors.Is(err, service.ErrConflict):
		return http.StatusConflict, detail(err, service.ErrConflict)
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrOrderPlacementFailed):
		return http.StatusInternalServerError, service.ErrOrderPlacementFailed.Error()
	default:
		return http.StatusInternalServerError, internalMessage
	}
}

// detail strips the sentinel prefix from "<sentinel>: <detail>".
func detail(err, sentinel error) string {
	s := err.Error()
	if rest, ok := strings.CutPrefix(s, sentinel.Error()+": "); ok && rest != "" {
		return rest
	}
	return s
}

func fail(l *slog.Logger, event string, err error) error {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, msg).SetInternal(err)
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason).SetInternal(err)
}

func parseID(c echo.Context, l *slog.Logger, event string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, badRequest(l, event, "id is not a uuid", err)
	}
	return id, nil
}
