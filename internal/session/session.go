package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vbonduro/fieldsales/internal/domain"
	"github.com/vbonduro/fieldsales/internal/form"
	"github.com/vbonduro/fieldsales/internal/kvstore"
	"github.com/vbonduro/fieldsales/internal/remote"
)

// expirySkew refreshes tokens slightly before the server would reject them.
const expirySkew = 30 * time.Second

// authAPI is the subset of remote.Client that Session requires.
type authAPI interface {
	Login(ctx context.Context, username, password string) (*domain.Tokens, error)
	RefreshAccess(ctx context.Context, refresh string) (string, error)
}

// CredentialsError is returned by Login when the backend refuses the
// username/password pair. It unwraps to the *remote.RemoteRejected.
type CredentialsError struct {
	Rejected *remote.RemoteRejected
}

func (e *CredentialsError) Error() string {
	return "incorrect username or password"
}

func (e *CredentialsError) Unwrap() error {
	return e.Rejected
}

// Session owns the bearer tokens persisted in the key/value store.
type Session struct {
	api    authAPI
	kv     kvstore.Store
	now    func() time.Time
	logger *slog.Logger
}

func New(api authAPI, kv kvstore.Store, logger *slog.Logger) *Session {
	return &Session{api: api, kv: kv, now: time.Now, logger: logger}
}

var loginSchema = form.Schema{
	Required: []string{"username", "password"},
	Labels:   map[string]string{"username": "username", "password": "password"},
}

// Login authenticates against the backend. Tokens and user data are written
// only after the backend accepted the credentials.
func (s *Session) Login(ctx context.Context, username, password string) (*domain.UserData, error) {
	p := form.NewPayload().Set("username", username).Set("password", password)
	if err := loginSchema.Validate(p); err != nil {
		return nil, err
	}

	tokens, err := s.api.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		var rej *remote.RemoteRejected
		if errors.As(err, &rej) && (rej.Status == 400 || rej.Status == 401) {
			s.logger.Info("login refused", "username", username, "status", rej.Status)
			return nil, &CredentialsError{Rejected: rej}
		}
		return nil, err
	}

	user := &domain.UserData{Username: strings.TrimSpace(username), LoginDate: s.now().UTC()}
	entries := []struct {
		key   string
		value any
	}{
		{kvstore.KeyAccessToken, tokens.Access},
		{kvstore.KeyRefreshToken, tokens.Refresh},
		{kvstore.KeyUserData, user},
	}
	for i, e := range entries {
		if err := kvstore.SetJSON(ctx, s.kv, e.key, e.value); err != nil {
			for _, written := range entries[:i] {
				if rerr := s.kv.Remove(context.WithoutCancel(ctx), written.key); rerr != nil {
					s.logger.Warn("failed to roll back session key", "key", written.key, "error", rerr)
				}
			}
			return nil, fmt.Errorf("failed to store session: %w", err)
		}
	}

	s.logger.Info("login succeeded", "username", user.Username)
	return user, nil
}

// Token returns the access token to attach to API calls, or "" when nobody is
// logged in. An expired JWT is refreshed first when a refresh token exists; if
// that fails the stored token is returned and the server decides.
func (s *Session) Token(ctx context.Context) (string, error) {
	var access string
	if _, err := kvstore.GetJSON(ctx, s.kv, kvstore.KeyAccessToken, &access); err != nil {
		return "", err
	}
	if access == "" || !s.expired(access) {
		return access, nil
	}

	var refresh string
	if _, err := kvstore.GetJSON(ctx, s.kv, kvstore.KeyRefreshToken, &refresh); err != nil || refresh == "" {
		return access, nil
	}

	fresh, err := s.api.RefreshAccess(ctx, refresh)
	if err != nil {
		s.logger.Warn("token refresh failed", "error", err)
		return access, nil
	}
	if err := kvstore.SetJSON(ctx, s.kv, kvstore.KeyAccessToken, fresh); err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	s.logger.Debug("access token refreshed")
	return fresh, nil
}

// User returns the logged-in user's data, or nil.
func (s *Session) User(ctx context.Context) (*domain.UserData, error) {
	var user domain.UserData
	ok, err := kvstore.GetJSON(ctx, s.kv, kvstore.KeyUserData, &user)
	if err != nil || !ok {
		return nil, err
	}
	return &user, nil
}

// Logout forgets the tokens. Cached collections are kept.
func (s *Session) Logout(ctx context.Context) error {
	for _, key := range []string{kvstore.KeyAccessToken, kvstore.KeyRefreshToken, kvstore.KeyUserData} {
		if err := s.kv.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// expired reports whether a JWT's exp claim has passed. Tokens that are not
// JWTs, or carry no exp, never count as expired.
func (s *Session) expired(token string) bool {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !s.now().Add(expirySkew).Before(claims.ExpiresAt.Time)
}
