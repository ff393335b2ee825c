package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/James-Git-Repo/eu-market-pulse/internal/editor"
	"github.com/James-Git-Repo/eu-market-pulse/internal/store"
)

// Service implements the editor gate's collaborator interfaces against the
// users table: credential checks, the privilege-label lookup, and (local)
// session revocation.
type Service struct {
	queries *store.Queries
}

// NewService creates an auth Service over the given database.
func NewService(db *sql.DB) *Service {
	return &Service{queries: store.New(db)}
}

// Authenticate verifies credentials and returns the established identity.
// Unknown users and wrong passwords both map to ErrInvalidCredentials so
// responses cannot be used for account enumeration; infrastructure failures
// map to ErrUnavailable.
func (s *Service) Authenticate(ctx context.Context, email, password string) (editor.Identity, error) {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for unknown user", "email", email)
			return editor.Identity{}, editor.ErrInvalidCredentials
		}
		return editor.Identity{}, fmt.Errorf("%w: %w", editor.ErrUnavailable, err)
	}

	valid, err := CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err)
		return editor.Identity{}, editor.ErrInvalidCredentials
	}
	if !valid {
		return editor.Identity{}, editor.ErrInvalidCredentials
	}

	// Re-hash when parameters have changed since the hash was created.
	if NeedsRehash(user.PasswordHash) {
		if newHash, err := HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, user.ID, newHash); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			}
		}
	}

	if err := s.queries.UpdateUserLastLogin(ctx, user.ID, time.Now()); err != nil {
		// Not fatal; the login itself succeeded.
		slog.Error("failed to update last login time", "error", err, "user_id", user.ID)
	}

	return editor.Identity{UserID: user.ID, Email: user.Email}, nil
}

// HasEditorRole resolves whether the identity carries an editing label.
// Errors propagate so the gate can fail closed.
func (s *Service) HasEditorRole(ctx context.Context, id editor.Identity) (bool, error) {
	user, err := s.queries.GetUserByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("loading user %d: %w", id.UserID, err)
	}
	return user.CanEdit(), nil
}

// Revoke tears down the remote side of a session. Sessions are server-local
// (scs rows in SQLite), so there is no remote party; the handler destroys
// the scs session itself and this hook only records the event.
func (s *Service) Revoke(_ context.Context, id editor.Identity) error {
	slog.Info("session revoked", "user_id", id.UserID)
	return nil
}
