package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/socialnet/pkg/jwt"
)

func TestAuthService_RegisterHashesPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	view, token, err := e.auth.Register(ctx, RegisterInput{
		Username: "alice", FullName: "Alice A", Email: "alice@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "alice", view.Username)
	assert.Equal(t, "Alice A", view.FullName)
	assert.Empty(t, view.Followers)
	assert.NotNil(t, view.Followers)

	stored, err := e.repos.Users.GetByID(ctx, view.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)
	assert.True(t, checkPassword(stored.Password, "secret123"))

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), stored.Password)

	again, err := e.auth.CurrentUser(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, view.ID, again.ID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.signup(t, "alice")

	cases := []struct {
		name string
		in   RegisterInput
		kind error
		msg  string
	}{
		{"bad email", RegisterInput{Username: "bob", Email: "bob-at-example", Password: "secret123"}, ErrValidation, "Invalid email format"},
		{"username taken", RegisterInput{Username: "alice", Email: "new@example.com", Password: "secret123"}, ErrConflict, "Username is already taken"},
		{"email taken", RegisterInput{Username: "bob", Email: "alice@example.com", Password: "secret123"}, ErrConflict, "Email is already taken"},
		{"short password", RegisterInput{Username: "bob", Email: "bob@example.com", Password: "12345"}, ErrValidation, "Password must be at least 6 characters long"},
		{"empty username", RegisterInput{Username: "  ", Email: "bob@example.com", Password: "secret123"}, ErrValidation, "Invalid username"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := e.auth.Register(ctx, tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.Equal(t, tc.msg, Message(err))
		})
	}
}

func TestAuthService_FullNameDefaultsToUsername(t *testing.T) {
	e := newEnv(t)
	v := e.signup(t, "carol")
	assert.Equal(t, "carol", v.FullName)
}

func TestAuthService_Authenticate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.signup(t, "alice")

	view, token, err := e.auth.Authenticate(ctx, "alice", "secret123")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, view.ID)

	id, err := e.auth.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, id)

	_, _, wrongPw := e.auth.Authenticate(ctx, "alice", "nope-nope")
	_, _, unknown := e.auth.Authenticate(ctx, "mallory", "secret123")
	for _, err := range []error{wrongPw, unknown} {
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, "Invalid username or password", Message(err))
	}
}

func TestAuthService_VerifyTokenRejects(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")

	expired, err := jwt.GenerateToken(alice.ID, []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	forged, err := jwt.GenerateToken(alice.ID, []byte("other-secret"), time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"missing":      "",
		"malformed":    "not.a.token",
		"expired":      expired,
		"wrong secret": forged,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := e.auth.VerifyToken(token)
			assert.ErrorIs(t, err, ErrUnauthorized)
			_, err = e.auth.CurrentUser(context.Background(), token)
			assert.ErrorIs(t, err, ErrUnauthorized)
		})
	}
}
