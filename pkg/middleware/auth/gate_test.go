package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/medical_shop/pkg/tokens"
)

var testSecret = []byte("test-jwt-secret")

type memDenylist struct {
	mu   sync.Mutex
	jtis map[string]bool
	err  error
}

func (m *memDenylist) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.jtis == nil {
		m.jtis = map[string]bool{}
	}
	m.jtis[jti] = true
	return nil
}

func (m *memDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jtis[jti], m.err
}

func issue(t *testing.T, role string, now time.Time) (string, *tokens.Claims) {
	t.Helper()
	iss := &tokens.Issuer{Secret: testSecret, UserTTL: 24 * time.Hour, AdminTTL: 2 * time.Hour, Now: func() time.Time { return now }}
	token, _, err := iss.Issue(tokens.Subject{ID: uuid.NewString(), Email: "x@clinic.test", Role: role})
	require.NoError(t, err)
	claims, err := tokens.Parse(token, testSecret)
	if err != nil {
		return token, nil
	}
	return token, claims
}

func run(t *testing.T, mw echo.MiddlewareFunc, header string) (*httptest.ResponseRecorder, error, *Identity) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *Identity
	err := mw(func(c echo.Context) error {
		id, ok := IdentityFromContext(c.Request().Context())
		require.True(t, ok)
		seen = &id
		uid, err := UserID(c)
		require.NoError(t, err)
		assert.Equal(t, id.UserID, uid)
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, err, seen
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected HTTPError, got %v", err)
	return he.Code
}

func TestRequireAuth_MissingHeader(t *testing.T) {
	g := NewGate(testSecret, nil)

	for _, h := range []string{"", "Bearer", "Bearer   ", "Basic abc", "token-without-scheme"} {
		_, err, seen := run(t, g.RequireAuth, h)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err), "header %q", h)
		assert.Nil(t, seen)
	}
}

func TestRequireAuth_InvalidSignature(t *testing.T) {
	g := NewGate([]byte("another-secret"), nil)
	token, _ := issue(t, "user", time.Now())

	_, err, seen := run(t, g.RequireAuth, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.Nil(t, seen)
}

func TestRequireAuth_ExpiredRejectedDespiteValidSignature(t *testing.T) {
	g := NewGate(testSecret, nil)
	token, _ := issue(t, "user", time.Now().Add(-25*time.Hour))

	_, err, seen := run(t, g.RequireAuth, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.Nil(t, seen)
}

func TestRequireAuth_StandardUserAccepted(t *testing.T) {
	g := NewGate(testSecret, nil)
	token, claims := issue(t, "user", time.Now())

	rec, err, seen := run(t, g.RequireAuth, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, claims.Subject, seen.UserID.String())
	assert.Equal(t, "user", seen.Role)
	assert.Equal(t, "x@clinic.test", seen.Email)
}

func TestRequireAdmin_StandardUserForbidden(t *testing.T) {
	g := NewGate(testSecret, &memDenylist{})
	token, _ := issue(t, "user", time.Now())

	_, err, seen := run(t, g.RequireAdmin, "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	assert.Nil(t, seen)
}

func TestRequireAdmin_AdminAccepted(t *testing.T) {
	g := NewGate(testSecret, &memDenylist{})
	token, _ := issue(t, tokens.RoleAdmin, time.Now())

	rec, err, seen := run(t, g.RequireAdmin, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, tokens.RoleAdmin, seen.Role)
}

func TestRequireAdmin_RevokedTokenRejected(t *testing.T) {
	dl := &memDenylist{}
	g := NewGate(testSecret, dl)
	token, claims := issue(t, tokens.RoleAdmin, time.Now())
	require.NoError(t, dl.Revoke(context.Background(), claims.ID, time.Hour))

	_, err, seen := run(t, g.RequireAdmin, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.Nil(t, seen)

	// standard path does not consult the denylist
	rec, err, _ := run(t, g.RequireAuth, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_DenylistFailureFailsClosed(t *testing.T) {
	g := NewGate(testSecret, &memDenylist{err: errors.New("redis down")})
	token, _ := issue(t, tokens.RoleAdmin, time.Now())

	_, err, _ := run(t, g.RequireAdmin, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}
