package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pharmacy_shop/internal/events"
	"github.com/Skotchmaster/pharmacy_shop/internal/models"
	"github.com/Skotchmaster/pharmacy_shop/internal/transport"
)

func TestAuthService_Register(t *testing.T) {
	e := newEnv(t)
	u := e.user(t, "alice")

	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "secret123", u.PasswordHash)
	assert.Contains(t, e.events.Types(), events.UserRegistered)
}

func TestAuthService_Register_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := map[string]transport.RegisterRequest{
		"short username":  {Username: "ab", Password: "secret123", FullName: "A", Email: "a@example.com"},
		"short password":  {Username: "abc", Password: "123", FullName: "A", Email: "a@example.com"},
		"bad email":       {Username: "abc", Password: "secret123", FullName: "A", Email: "nope"},
		"missing name":    {Username: "abc", Password: "secret123", Email: "a@example.com"},
		"confirm differs": {Username: "abc", Password: "secret123", ConfirmPassword: "other", FullName: "A", Email: "a@example.com"},
		"long phone":      {Username: "abc", Password: "secret123", FullName: "A", Email: "a@example.com", Phone: "1234567890123456"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.auth.Register(ctx, req)
			assert.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.user(t, "alice")

	_, err := e.auth.Register(ctx, transport.RegisterRequest{Username: "alice", Password: "secret123", FullName: "A", Email: "other@example.com"})
	assert.True(t, errors.Is(err, ErrConflict))

	_, err = e.auth.Register(ctx, transport.RegisterRequest{Username: "alice2", Password: "secret123", FullName: "A", Email: "ALICE@example.com"})
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "alice")

	_, err := e.auth.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = e.auth.Login(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, e.repo.DB.Model(&models.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)
	_, err = e.auth.Login(ctx, "alice", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginAuthenticateLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := e.user(t, "alice")

	res, err := e.auth.Login(ctx, "alice", "secret123")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, u.ID, res.Identity.UserID)
	assert.Contains(t, e.events.Types(), events.UserLoggedIn)

	stored, err := e.repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, stored.LastLogin.IsZero())

	id, err := e.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	assert.Equal(t, models.RoleCustomer, id.Role)
	assert.Equal(t, "User alice", id.FullName)
	assert.False(t, id.IsAdmin())

	require.NoError(t, e.auth.Logout(ctx, id.SessionID))
	require.NoError(t, e.auth.Logout(ctx, id.SessionID))

	_, err = e.auth.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Authenticate_Rejects(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.user(t, "alice")

	_, err := e.auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)

	res, err := e.auth.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	other := *e.auth
	other.Secret = []byte("another-secret")
	_, err = other.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	idle := *e.auth
	idle.Now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	_, err = idle.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// the idle check revoked the session for good
	_, err = e.auth.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Authenticate_SlidesIdleWindow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.user(t, "alice")

	start := time.Now()
	clock := start
	e.auth.Now = func() time.Time { return clock }

	res, err := e.auth.Login(ctx, "alice", "secret123")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		clock = clock.Add(20 * time.Minute)
		_, err := e.auth.Authenticate(ctx, res.Token)
		require.NoError(t, err, "step %d", i)
	}

	n, err := e.auth.PurgeSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
