package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/mytravellog/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.TokenSource = (*SessionGuard)(nil)

// SessionGuard owns the persisted session token. It is the only writer of
// the token slot; everything else reads the token through Token.
type SessionGuard struct {
	mu     sync.Mutex
	auth   driven.Authenticator
	tokens driven.TokenStore
	logger *slog.Logger
}

// NewSessionGuard creates a SessionGuard backed by the given collaborators.
func NewSessionGuard(auth driven.Authenticator, tokens driven.TokenStore) *SessionGuard {
	return &SessionGuard{
		auth:   auth,
		tokens: tokens,
		logger: slog.Default(),
	}
}

// Login exchanges credentials for a token and persists it. On failure the
// previous session state is left untouched.
func (g *SessionGuard) Login(ctx context.Context, username, password string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	token, err := g.auth.Login(ctx, username, password)
	if err != nil {
		g.logger.Warn("login failed", "username", username, "error", err)
		return err
	}

	if err := g.tokens.Set(ctx, token); err != nil {
		return fmt.Errorf("persisting session token: %w", err)
	}

	g.logger.Info("logged in", "username", username)
	return nil
}

// Logout discards the persisted token. Logging out twice is not an error.
func (g *SessionGuard) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session token: %w", err)
	}
	g.logger.Info("logged out")
	return nil
}

// IsAuthenticated reports whether a non-empty token is persisted. The token
// is not checked for expiry; the store is the authority on that.
func (g *SessionGuard) IsAuthenticated(ctx context.Context) bool {
	token, err := g.Token(ctx)
	if err != nil {
		g.logger.Warn("reading session token", "error", err)
		return false
	}
	return token != ""
}

// Token returns the persisted token, or "" when logged out.
func (g *SessionGuard) Token(ctx context.Context) (string, error) {
	return g.tokens.Get(ctx)
}

// Invalidate drops the token after the store rejected it.
func (g *SessionGuard) Invalidate(ctx context.Context) {
	if err := g.Logout(ctx); err != nil {
		g.logger.Error("invalidating session", "error", err)
		return
	}
	g.logger.Info("session invalidated after authorization failure")
}
