package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

// Session is the persisted bearer token.
type Session struct {
	Server    string
	Token     string
	ExpiresAt *time.Time
	SavedAt   time.Time
}

// SaveSession stores the token and profile, replacing any previous session.
func SaveSession(ctx context.Context, db *sql.DB, s Session, profile *model.User) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO session (id, server, token, expires_at, saved_at) VALUES (1, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (id) DO UPDATE SET server = excluded.server, token = excluded.token,
		     expires_at = excluded.expires_at, saved_at = excluded.saved_at`,
		s.Server, s.Token, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM profile`); err != nil {
		return fmt.Errorf("clearing profile: %w", err)
	}
	if profile != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO profile (id, user_id, name, email, role) VALUES (1, ?, ?, ?, ?)`,
			profile.ID, profile.Name, profile.Email, profile.Role,
		)
		if err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing session: %w", err)
	}
	return nil
}

// LoadSession returns the stored session, or nil if signed out.
func LoadSession(ctx context.Context, db *sql.DB) (*Session, error) {
	s := &Session{}
	err := db.QueryRowContext(ctx,
		`SELECT server, token, expires_at, saved_at FROM session WHERE id = 1`,
	).Scan(&s.Server, &s.Token, &s.ExpiresAt, &s.SavedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return s, nil
}

// LoadProfile returns the cached user profile, or nil if none is stored.
func LoadProfile(ctx context.Context, db *sql.DB) (*model.User, error) {
	u := &model.User{}
	var email sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT user_id, name, email, role FROM profile WHERE id = 1`,
	).Scan(&u.ID, &u.Name, &email, &u.Role)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}
	u.Email = email.String
	return u, nil
}

// ClearSession removes the stored token and profile.
func ClearSession(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM profile`); err != nil {
		return fmt.Errorf("clearing profile: %w", err)
	}
	return nil
}
