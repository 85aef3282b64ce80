package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-session-secret")

func TestSignSession_RoundTrip(t *testing.T) {
	t.Parallel()

	sid := uuid.NewString()
	exp := time.Now().Add(time.Hour).UTC()

	tok, err := SignSession(sid, "42", "Admin", exp, secret)
	require.NoError(t, err)

	claims, err := SessionClaimsFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, sid, claims.ID)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "Admin", claims.Role)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestSessionClaimsFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := SignSession(uuid.NewString(), "1", "Customer", time.Now().Add(time.Hour), secret)
	require.NoError(t, err)

	_, err = SessionClaimsFromToken(tok, []byte("other"))
	require.Error(t, err)
}

func TestSessionClaimsFromToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := SignSession(uuid.NewString(), "1", "Customer", time.Now().Add(-time.Minute), secret)
	require.NoError(t, err)

	_, err = SessionClaimsFromToken(tok, secret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestSessionClaimsFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := SessionClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "x"}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(secret)
	require.NoError(t, err)

	_, err = SessionClaimsFromToken(tok, secret)
	require.Error(t, err)
}

func TestSessionClaimsFromToken_MissingSessionID(t *testing.T) {
	t.Parallel()

	tok, err := SignSession("", "1", "Customer", time.Now().Add(time.Hour), secret)
	require.NoError(t, err)

	_, err = SessionClaimsFromToken(tok, secret)
	require.Error(t, err)
}
