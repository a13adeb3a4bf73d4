package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/medical_shop/internal/models"
	"github.com/Skotchmaster/medical_shop/internal/repo"
	"github.com/Skotchmaster/medical_shop/internal/testutil"
	"github.com/Skotchmaster/medical_shop/internal/transport"
	"github.com/Skotchmaster/medical_shop/pkg/events"
	"github.com/Skotchmaster/medical_shop/pkg/tokens"
)

type memDenylist struct {
	mu  sync.Mutex
	ttl map[string]time.Duration
}

func (d *memDenylist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ttl == nil {
		d.ttl = map[string]time.Duration{}
	}
	d.ttl[jti] = ttl
	return nil
}

func (d *memDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.ttl[jti]
	return ok, nil
}

type authEnv struct {
	DB   *gorm.DB
	Svc  *AuthService
	Pub  *events.Recorder
	Deny *memDenylist
}

func newAuthEnv(t *testing.T) *authEnv {
	t.Helper()
	gdb := testutil.InitTestDB(t)
	pub := &events.Recorder{}
	deny := &memDenylist{}
	return &authEnv{
		DB:   gdb,
		Pub:  pub,
		Deny: deny,
		Svc: &AuthService{
			Repo:      repo.New(gdb),
			Issuer:    &tokens.Issuer{Secret: []byte("test-jwt-secret"), UserTTL: 24 * time.Hour, AdminTTL: 2 * time.Hour},
			Denylist:  deny,
			Publisher: pub,
			ResetTTL:  10 * time.Minute,
		},
	}
}

func TestAuthenticate(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, env.DB, "nurse@clinic.test", "correct-horse", models.RoleUser)

	res, err := env.Svc.Authenticate(ctx, "nurse@clinic.test", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	claims, err := tokens.Parse(res.Token, env.Svc.Issuer.Secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID.String(), claims.Subject)
	assert.Equal(t, "nurse@clinic.test", claims.Email)
	assert.Equal(t, models.RoleUser, claims.Role)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.ExpiresAt, time.Minute)
}

func TestAuthenticate_AdminTokenIsShortLived(t *testing.T) {
	env := newAuthEnv(t)
	testutil.CreateUser(t, env.DB, "admin@clinic.test", "admin-pass", models.RoleAdmin)

	res, err := env.Svc.Authenticate(context.Background(), "admin@clinic.test", "admin-pass")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), res.ExpiresAt, time.Minute)
}

func TestAuthenticate_Failures(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, env.DB, "nurse@clinic.test", "correct-horse", models.RoleUser)

	res, err := env.Svc.Authenticate(ctx, "nurse@clinic.test", "wrong")
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	wrongPw := err.Error()

	_, err = env.Svc.Authenticate(ctx, "nobody@clinic.test", "correct-horse")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, wrongPw, err.Error())

	_, err = env.Svc.Authenticate(ctx, "NURSE@clinic.test", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = env.Svc.Authenticate(ctx, "", "x")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	u, err := env.Svc.Register(ctx, transport.RegisterRequest{Name: " Dr. Who ", Email: "who@clinic.test", Password: "tardis1", Phone: "555"})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Who", u.Name)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.NotEqual(t, "tardis1", u.PasswordHash)
	assert.Equal(t, []string{transport.EventUserRegistered}, env.Pub.Types(events.TopicUser))

	_, err = env.Svc.Register(ctx, transport.RegisterRequest{Name: "Again", Email: "who@clinic.test", Password: "tardis1"})
	assert.ErrorIs(t, err, ErrConflict)

	tests := []struct {
		name string
		req  transport.RegisterRequest
	}{
		{"missing name", transport.RegisterRequest{Email: "a@clinic.test", Password: "secret1"}},
		{"missing email", transport.RegisterRequest{Name: "A", Password: "secret1"}},
		{"missing password", transport.RegisterRequest{Name: "A", Email: "a@clinic.test"}},
		{"bad email", transport.RegisterRequest{Name: "A", Email: "not-an-email", Password: "secret1"}},
		{"short password", transport.RegisterRequest{Name: "A", Email: "a@clinic.test", Password: "123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func resetTokenFrom(t *testing.T, pub *events.Recorder) string {
	t.Helper()
	for _, m := range pub.Messages() {
		env, ok := m.Event.(events.Envelope)
		if ok && env.Type == transport.EventPasswordResetRequested {
			return env.Data.(transport.PasswordResetRequestedEvent).Token
		}
	}
	t.Fatal("no password reset event published")
	return ""
}

func TestRegister_LosesRaceToSameEmail(t *testing.T) {
	env := newAuthEnv(t)

	// a concurrent registration lands after the EmailTaken check
	inserted := false
	require.NoError(t, env.DB.Callback().Create().Before("gorm:create").Register("test:racing_signup", func(tx *gorm.DB) {
		if inserted || tx.Statement.Schema == nil || tx.Statement.Schema.Table != "users" {
			return
		}
		inserted = true
		tx.Session(&gorm.Session{NewDB: true}).Exec(
			"INSERT INTO users (id, name, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			uuid.New(), "Early Bird", "race@clinic.test", "x", models.RoleUser, time.Now().UTC(),
		)
	}))

	_, err := env.Svc.Register(context.Background(), transport.RegisterRequest{Name: "Late", Email: "race@clinic.test", Password: "secret1"})
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualValues(t, 1, testutil.Count(t, env.DB, &models.User{}, "email = ?", "race@clinic.test"))
	assert.Empty(t, env.Pub.Types(events.TopicUser))
}

func TestPasswordReset(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, env.DB, "nurse@clinic.test", "old-password", models.RoleUser)

	require.NoError(t, env.Svc.RequestPasswordReset(ctx, "ghost@clinic.test"))
	assert.Empty(t, env.Pub.Messages())

	require.NoError(t, env.Svc.RequestPasswordReset(ctx, "nurse@clinic.test"))
	token := resetTokenFrom(t, env.Pub)

	assert.ErrorIs(t, env.Svc.ResetPassword(ctx, "bogus", "new-password"), ErrInvalidResetToken)
	require.NoError(t, env.Svc.ResetPassword(ctx, token, "new-password"))

	_, err := env.Svc.Authenticate(ctx, "nurse@clinic.test", "new-password")
	require.NoError(t, err)
	_, err = env.Svc.Authenticate(ctx, "nurse@clinic.test", "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.ErrorIs(t, env.Svc.ResetPassword(ctx, token, "another-one"), ErrInvalidResetToken)
}

func TestPasswordReset_Expired(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, env.DB, "nurse@clinic.test", "old-password", models.RoleUser)

	require.NoError(t, env.Svc.RequestPasswordReset(ctx, "nurse@clinic.test"))
	token := resetTokenFrom(t, env.Pub)

	env.Svc.Now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	assert.ErrorIs(t, env.Svc.ResetPassword(ctx, token, "new-password"), ErrInvalidResetToken)
}

func TestLogout_RevokesUntilExpiry(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()
	testutil.CreateUser(t, env.DB, "admin@clinic.test", "admin-pass", models.RoleAdmin)

	res, err := env.Svc.Authenticate(ctx, "admin@clinic.test", "admin-pass")
	require.NoError(t, err)
	claims, err := tokens.Parse(res.Token, env.Svc.Issuer.Secret)
	require.NoError(t, err)

	require.NoError(t, env.Svc.Logout(ctx, claims))
	revoked, err := env.Deny.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.InDelta(t, (2 * time.Hour).Seconds(), env.Deny.ttl[claims.ID].Seconds(), 60)

	env.Svc.Denylist = nil
	assert.NoError(t, env.Svc.Logout(ctx, claims))
}

func TestProfile(t *testing.T) {
	env := newAuthEnv(t)
	u := testutil.CreateUser(t, env.DB, "nurse@clinic.test", "secret1", models.RoleUser)

	got, err := env.Svc.Profile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)

	_, err = env.Svc.Profile(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))

	users, err := env.Svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
