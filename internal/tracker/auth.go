package tracker

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/dwell/internal/storage"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*storage.User, error)
}

// TokenAuthenticator looks tokens up by their SHA-256 hash.
type TokenAuthenticator struct {
	store storage.Store
	now   func() time.Time
}

// NewTokenAuthenticator creates a TokenAuthenticator over store.
func NewTokenAuthenticator(store storage.Store) *TokenAuthenticator {
	return &TokenAuthenticator{store: store, now: time.Now}
}

// Authenticate returns ErrUnauthorized for an empty or unknown token.
func (a *TokenAuthenticator) Authenticate(ctx context.Context, token string) (*storage.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrUnauthorized
	}
	u, err := a.store.GetUserByTokenHash(ctx, HashToken(token), a.now().UTC())
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return u, nil
}

// HashToken is the hex SHA-256 of token, the only form tokens are stored in.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// GenerateToken returns 32 random bytes as hex.
func GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// CreateUser registers username and returns the user with its plaintext
// token. The token is not recoverable afterwards.
func (s *Service) CreateUser(ctx context.Context, username string) (*storage.User, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, "", invalid("username", "required")
	}
	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, "", invalid("username", "already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, "", err
	}

	token, err := GenerateToken()
	if err != nil {
		return nil, "", err
	}
	now := s.Now()
	u := &storage.User{
		Username:       username,
		TokenHash:      HashToken(token),
		TokenCreatedAt: &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}
	return u, token, nil
}

// RotateToken issues a new token for username. The old token stops working.
func (s *Service) RotateToken(ctx context.Context, username string) (string, error) {
	u, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	token, err := GenerateToken()
	if err != nil {
		return "", err
	}
	if err := s.store.SetUserToken(ctx, u.ID, HashToken(token), s.Now()); err != nil {
		return "", fmt.Errorf("rotate token: %w", err)
	}
	return token, nil
}

// ResolveUser maps a username to its id for local CLI use.
func (s *Service) ResolveUser(ctx context.Context, username string) (*storage.User, error) {
	return s.store.GetUserByUsername(ctx, username)
}
