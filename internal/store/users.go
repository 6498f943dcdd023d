package store

import (
	"context"
	"database/sql"
	"fmt"
)

type User struct {
	ID           int64
	Email        string
	PasswordHash string
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := s.DB.QueryRowContext(ctx, `
		SELECT user_id, email, password_hash
		FROM users WHERE email = $1`, email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user lookup: %w", err)
	}
	return &u, nil
}

// EnsureUser seeds an account if the email is not taken. Existing rows
// are left untouched so a redeploy never resets a changed password.
func (s *Store) EnsureUser(ctx context.Context, email, passwordHash string) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING`, email, passwordHash)
	if err != nil {
		return fmt.Errorf("user seed: %w", err)
	}
	return nil
}
