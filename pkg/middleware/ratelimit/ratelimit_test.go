package ratelimit

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_BurstThenReject(t *testing.T) {
	l := NewPerMinute(3)
	now := time.Now()
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"))
	}
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))

	now = now.Add(20 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestLimiter_EvictsIdleVisitors(t *testing.T) {
	l := NewPerMinute(1)
	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	now = now.Add(11 * time.Minute)
	l.Allow("10.0.0.2")

	l.mu.Lock()
	_, ok := l.visitors["10.0.0.1"]
	l.mu.Unlock()
	assert.False(t, ok)
}

func TestLimiter_SweepsOncePerIdleWindow(t *testing.T) {
	l := NewPerMinute(5)
	now := time.Now()
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1")
	swept := l.lastSweep

	now = now.Add(time.Minute)
	l.Allow("10.0.0.2")
	assert.Equal(t, swept, l.lastSweep)

	now = now.Add(10 * time.Minute)
	l.Allow("10.0.0.3")
	assert.True(t, l.lastSweep.After(swept))

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.visitors, "10.0.0.1")
	assert.Contains(t, l.visitors, "10.0.0.2")
	assert.Contains(t, l.visitors, "10.0.0.3")
}

func TestLimiter_Middleware(t *testing.T) {
	l := NewPerMinute(1)
	e := echo.New()
	h := l.Middleware(func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	require.NoError(t, h(e.NewContext(req, httptest.NewRecorder())))

	err := h(e.NewContext(req, httptest.NewRecorder()))
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusTooManyRequests, he.Code)
}
