package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/assumables-api/internal/store"
)

type memSessions struct{ m map[string]string }

func newMemSessions() *memSessions { return &memSessions{m: map[string]string{}} }

func (s *memSessions) Get(_ context.Context, key string) (string, error) {
	v, ok := s.m[key]
	if !ok {
		return "", errors.New("miss")
	}
	return v, nil
}

func (s *memSessions) Set(_ context.Context, key, val string, _ time.Duration) error {
	s.m[key] = val
	return nil
}

func (s *memSessions) Del(_ context.Context, key string) error {
	delete(s.m, key)
	return nil
}

type memUsers struct{ byEmail map[string]*store.User }

func (u *memUsers) UserByEmail(_ context.Context, email string) (*store.User, error) {
	usr, ok := u.byEmail[email]
	if !ok {
		return nil, store.ErrNotFound
	}
	return usr, nil
}

func testService(t *testing.T) *Service {
	t.Helper()
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	return &Service{
		Users: &memUsers{byEmail: map[string]*store.User{
			"amy@example.com": {ID: 1, Email: "amy@example.com", PasswordHash: hash},
		}},
		Sessions: newMemSessions(),
	}
}

func TestLoginAndIdentify(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, "amy@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	email, err := svc.Identify(ctx, token)
	if err != nil {
		t.Fatalf("identify: %v", err)
	}
	if email != "amy@example.com" {
		t.Errorf("identify: got %q", email)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Identify(ctx, token); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("after logout: got %v, want ErrInvalidSession", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, "amy@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	svc := testService(t)
	token, err := svc.Login(context.Background(), "amy@example.com", "hunter2")
	if err != nil {
		t.Fatal(err)
	}

	var gotEmail string
	h := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEmail = EmailFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/listings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authorized request: got %d", rec.Code)
	}
	if gotEmail != "amy@example.com" {
		t.Errorf("context email: got %q", gotEmail)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/listings", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request: got %d, want 401", rec.Code)
	}
}
