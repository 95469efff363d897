package devstore

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid.
const TokenTTL = 24 * time.Hour

var (
	errBadCredentials = errors.New("invalid username or password")
	errMissingToken   = errors.New("missing authentication token")
	errInvalidToken   = errors.New("invalid token")
	errForbidden      = errors.New("admin role required")
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// issuer checks the admin credentials and issues and verifies HS256 tokens.
type issuer struct {
	username string
	password string
	secret   []byte
	now      func() time.Time
}

func (i *issuer) login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(i.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(i.password)) == 1
	if !userOK || !passOK {
		return "", errBadCredentials
	}

	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// verify validates an Authorization header value and requires the admin role.
func (i *issuer) verify(header string) error {
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return errMissingToken
	}

	token, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidToken, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return errInvalidToken
	}
	if c.Role != "admin" {
		return errForbidden
	}
	return nil
}
