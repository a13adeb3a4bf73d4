package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medical_shop/internal/service"
	"github.com/Skotchmaster/medical_shop/internal/transport"
	"github.com/Skotchmaster/medical_shop/pkg/logging"
	middleware "github.com/Skotchmaster/medical_shop/pkg/middleware/auth"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	res, err := h.Svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("login_error", "status", 400, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusBadRequest, service.ErrInvalidCredentials.Error())
		}
		return fail(l, "login_error", err)
	}

	l.Info("login_success", "user_id", res.User.ID, "role", res.User.Role)
	return c.JSON(http.StatusOK, map[string]any{
		"message":    "Login successful!",
		"token":      res.Token,
		"expires_at": res.ExpiresAt.UTC().Format(time.RFC3339),
		"user": userView{
			ID:    res.User.ID.String(),
			Name:  res.User.Name,
			Email: res.User.Email,
			Role:  res.User.Role,
		},
	})
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_error", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "User registered successfully!",
		"user": userView{
			ID:    user.ID.String(),
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	claims, err := middleware.ClaimsFrom(c)
	if err != nil {
		l.Warn("logout_error", "status", 401, "reason", "no claims in context", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, middleware.ErrUnauthenticated.Error())
	}
	if err := h.Svc.Logout(ctx, claims); err != nil {
		return fail(l, "logout_error", err)
	}

	l.Info("logout_success", "user_id", claims.Subject)
	// revocation is only enforced on /admin; the client still has to drop the token
	return c.JSON(http.StatusOK, map[string]any{
		"message":    "Token revoked for admin routes. Discard it on the client; other routes accept it until it expires.",
		"expires_at": claims.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.forgot_password")

	var req transport.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "forgot_password_error", "invalid body", err)
	}
	if err := h.Svc.RequestPasswordReset(ctx, req.Email); err != nil {
		return fail(l, "forgot_password_error", err)
	}

	// same answer whether or not the email is registered
	return c.JSON(http.StatusOK, map[string]string{
		"message": "If the email is registered, a reset link has been sent.",
	})
}

func (h *AuthHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.reset_password")

	var req transport.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "reset_password_error", "invalid body", err)
	}
	if err := h.Svc.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return fail(l, "reset_password_error", err)
	}

	l.Info("reset_password_success")
	return c.JSON(http.StatusOK, map[string]string{"message": "Password has been reset."})
}

func (h *AuthHTTP) Dashboard(c echo.Context) error {
	id, ok := middleware.IdentityFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, middleware.ErrUnauthenticated.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Welcome to your dashboard!",
		"user": map[string]string{
			"id":    id.UserID.String(),
			"email": id.Email,
			"role":  id.Role,
		},
	})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")

	userID, err := middleware.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, middleware.ErrUnauthenticated.Error())
	}
	user, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		return fail(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_users")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, users)
}
