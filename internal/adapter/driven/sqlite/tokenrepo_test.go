package sqlite

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

func testKey(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, 32)
}

func TestTokenRepo_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "eyJhbGciOi.token"))

	val, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.token", val)
}

func TestTokenRepo_GetEmptySlot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)

	val, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestTokenRepo_SetOverwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "old"))
	require.NoError(t, repo.Set(ctx, "new"))

	val, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new", val)

	var rows int
	require.NoError(t, db.Reader.QueryRow(`SELECT COUNT(*) FROM session_token`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestTokenRepo_ClearIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "tok"))
	require.NoError(t, repo.Clear(ctx))
	require.NoError(t, repo.Clear(ctx))

	val, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestTokenRepo_EncryptsAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTokenRepo(db, testKey(7))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "secret-token"))

	var raw string
	require.NoError(t, db.Reader.QueryRow(`SELECT value FROM session_token`).Scan(&raw))
	assert.NotContains(t, raw, "secret-token")

	val, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "secret-token", val)
}

func TestTokenRepo_WrongKey(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, NewTokenRepo(db, testKey(1)).Set(ctx, "secret-token"))

	_, err := NewTokenRepo(db, testKey(2)).Get(ctx)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyInvalid)

	_, err = NewTokenRepo(db, nil).Get(ctx)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyInvalid)
}
