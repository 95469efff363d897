package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenStore = (*TokenRepo)(nil)

// TokenRepo is the SQLite implementation of the TokenStore port. The slot
// holds at most one row. When a key is configured the token is sealed with
// AES-256-GCM before write and opened after read.
type TokenRepo struct {
	db  *DB
	key []byte // 32-byte AES-256 key; nil stores the token as-is.
}

// NewTokenRepo creates a TokenRepo. key must be 32 bytes, or nil to store
// tokens unencrypted.
func NewTokenRepo(db *DB, key []byte) *TokenRepo {
	return &TokenRepo{db: db, key: key}
}

// Get returns the persisted token, or ("", nil) when the slot is empty.
func (r *TokenRepo) Get(ctx context.Context) (string, error) {
	const query = `SELECT value, encrypted FROM session_token WHERE slot = 1`

	var value string
	var encrypted bool
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&value, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get session token: %w", err)
	}

	if !encrypted {
		return value, nil
	}

	plaintext, err := r.decrypt(value)
	if err != nil {
		return "", fmt.Errorf("decrypt session token: %w", err)
	}
	return plaintext, nil
}

// Set stores token in the slot, replacing any previous value.
func (r *TokenRepo) Set(ctx context.Context, token string) error {
	value := token
	encrypted := false
	if r.key != nil {
		sealed, err := r.encrypt(token)
		if err != nil {
			return err
		}
		value = sealed
		encrypted = true
	}

	const query = `INSERT OR REPLACE INTO session_token (slot, value, encrypted, updated_at) VALUES (1, ?, ?, CURRENT_TIMESTAMP)`
	if _, err := r.db.Writer.ExecContext(ctx, query, value, encrypted); err != nil {
		return fmt.Errorf("set session token: %w", err)
	}
	return nil
}

// Clear empties the slot. Clearing an empty slot is not an error.
func (r *TokenRepo) Clear(ctx context.Context) error {
	const query = `DELETE FROM session_token WHERE slot = 1`
	if _, err := r.db.Writer.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}

// encrypt seals plaintext using AES-256-GCM and returns a base64-encoded string
// containing the nonce (12 bytes) prepended to the ciphertext.
func (r *TokenRepo) encrypt(plaintext string) (string, error) {
	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	// Seal appends the ciphertext to nonce, producing: nonce || ciphertext || tag.
	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (r *TokenRepo) decrypt(encoded string) (string, error) {
	if r.key == nil {
		return "", driven.ErrEncryptionKeyInvalid
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	gcm, err := r.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", driven.ErrEncryptionKeyInvalid, err)
	}

	return string(plaintext), nil
}

func (r *TokenRepo) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(r.key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}
	return gcm, nil
}
