package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mytravellog/internal/application"
	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

func newGuard() (*application.SessionGuard, *mockAuthenticator, *memTokenStore) {
	auth := &mockAuthenticator{username: "admin", password: "hunter2", token: "tok-1"}
	tokens := &memTokenStore{}
	return application.NewSessionGuard(auth, tokens), auth, tokens
}

func TestSessionGuard_LoginPersistsToken(t *testing.T) {
	guard, _, tokens := newGuard()
	ctx := context.Background()

	require.False(t, guard.IsAuthenticated(ctx))
	require.NoError(t, guard.Login(ctx, "admin", "hunter2"))

	assert.True(t, guard.IsAuthenticated(ctx))
	assert.Equal(t, "tok-1", tokens.value)

	token, err := guard.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
}

func TestSessionGuard_WrongPasswordLeavesNoToken(t *testing.T) {
	guard, _, tokens := newGuard()
	ctx := context.Background()

	err := guard.Login(ctx, "admin", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrAuthentication)
	assert.False(t, guard.IsAuthenticated(ctx))
	assert.Empty(t, tokens.value)
}

func TestSessionGuard_FailedLoginKeepsExistingSession(t *testing.T) {
	guard, auth, tokens := newGuard()
	ctx := context.Background()

	require.NoError(t, guard.Login(ctx, "admin", "hunter2"))

	auth.err = &driven.StoreError{Kind: driven.ErrAuthentication, Err: errors.New("connection refused")}
	require.Error(t, guard.Login(ctx, "admin", "hunter2"))

	assert.True(t, guard.IsAuthenticated(ctx))
	assert.Equal(t, "tok-1", tokens.value)
}

func TestSessionGuard_LogoutIsIdempotent(t *testing.T) {
	guard, _, _ := newGuard()
	ctx := context.Background()

	require.NoError(t, guard.Login(ctx, "admin", "hunter2"))
	require.NoError(t, guard.Logout(ctx))
	require.NoError(t, guard.Logout(ctx))

	assert.False(t, guard.IsAuthenticated(ctx))
}

func TestSessionGuard_ReadsThroughOnEveryCall(t *testing.T) {
	guard, _, tokens := newGuard()
	ctx := context.Background()

	// A token written by another process (e.g. the CLI) is picked up.
	require.NoError(t, tokens.Set(ctx, "from-cli"))
	assert.True(t, guard.IsAuthenticated(ctx))

	guard.Invalidate(ctx)
	assert.False(t, guard.IsAuthenticated(ctx))
}
