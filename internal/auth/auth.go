package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yourorg/assumables-api/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrInvalidSession     = errors.New("auth: invalid session")
)

const sessionPrefix = "sess:"

// SessionStore is the subset of the Redis wrapper sessions need.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, val string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (*store.User, error)
}

// Service issues and validates opaque bearer tokens. Tokens live in
// Redis with a TTL; there is nothing to invalidate server-side beyond
// deleting the key.
type Service struct {
	Users    UserStore
	Sessions SessionStore
	TTL      time.Duration
	Log      *slog.Logger
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return time.Hour
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Login checks the password and returns a fresh session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.Users.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.Sessions.Set(ctx, sessionPrefix+token, u.Email, s.ttl()); err != nil {
		return "", err
	}
	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Del(ctx, sessionPrefix+token)
}

// Identify resolves a token to the email it was issued for.
func (s *Service) Identify(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrInvalidSession
	}
	email, err := s.Sessions.Get(ctx, sessionPrefix+token)
	if err != nil {
		return "", ErrInvalidSession
	}
	return email, nil
}

type ctxKey struct{}

func EmailFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

// Middleware rejects requests without a valid bearer token and stores
// the authenticated email on the request context.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email, err := s.Identify(r.Context(), BearerToken(r))
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, email)))
	})
}

func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
