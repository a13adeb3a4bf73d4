package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/medical_shop/pkg/logging"
	"github.com/Skotchmaster/medical_shop/pkg/tokens"
)

var (
	ErrUnauthenticated = errors.New("access token required")
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrForbidden       = errors.New("admin access required")
)

// Denylist holds revoked token ids until their natural expiry.
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

type identityKey struct{}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

type Gate struct {
	JWTSecret []byte
	Denylist  Denylist
}

func NewGate(secret []byte, denylist Denylist) *Gate {
	return &Gate{JWTSecret: secret, Denylist: denylist}
}

type ValidatorFunc func(c echo.Context, claims *tokens.Claims) error

func (g *Gate) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireAuthWithValidator(next, nil)
}

func (g *Gate) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return g.requireAuthWithValidator(next, func(c echo.Context, claims *tokens.Claims) error {
		if !claims.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, ErrForbidden.Error())
		}
		return g.checkRevoked(c, claims)
	})
}

func (g *Gate) checkRevoked(c echo.Context, claims *tokens.Claims) error {
	if g.Denylist == nil {
		return nil
	}
	revoked, err := g.Denylist.IsRevoked(c.Request().Context(), claims.ID)
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("denylist_lookup_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error()).SetInternal(err)
	}
	if revoked {
		return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error())
	}
	return nil
}

func (g *Gate) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error())
		}

		claims, err := tokens.Parse(raw, g.JWTSecret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error()).SetInternal(err)
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidToken.Error()).SetInternal(err)
		}

		if validator != nil {
			if err := validator(c, claims); err != nil {
				return err
			}
		}

		setUserContext(c, claims, userID)
		return next(c)
	}
}

func BearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func setUserContext(c echo.Context, claims *tokens.Claims, userID uuid.UUID) {
	c.Set("user_id", userID)
	c.Set("email", claims.Email)
	c.Set("role", claims.Role)
	c.Set("claims", claims)

	id := Identity{UserID: userID, Email: claims.Email, Role: claims.Role}
	c.SetRequest(c.Request().WithContext(context.WithValue(c.Request().Context(), identityKey{}, id)))
}

func UserID(c echo.Context) (uuid.UUID, error) {
	id, ok := c.Get("user_id").(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

func ClaimsFrom(c echo.Context) (*tokens.Claims, error) {
	claims, ok := c.Get("claims").(*tokens.Claims)
	if !ok || claims == nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
