package auth

import (
	"context"
	"fmt"

	"github.com/eink-server/eink-display-server/internal/models"
	"github.com/eink-server/eink-display-server/internal/storage"
	"github.com/eink-server/eink-display-server/pkg/crypto"
)

// EnsureAdminUser creates the initial admin account when no user with the
// given email exists yet. A fresh database would otherwise have no account
// that can log in to the management API. Returns the account and whether
// it was created by this call.
func EnsureAdminUser(ctx context.Context, store storage.Store, email, password string) (*models.User, bool, error) {
	user, err := store.GetUserByEmail(ctx, email)
	if err == nil {
		return user, false, nil
	}
	if err != storage.ErrNotFound {
		return nil, false, fmt.Errorf("lookup admin user: %w", err)
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash admin password: %w", err)
	}

	user = &models.User{
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hash,
		IsAdmin:      true,
		IsActive:     true,
	}

	if err := store.CreateUser(ctx, user); err != nil {
		if err == storage.ErrDuplicateKey {
			// Another instance seeded it first.
			existing, err := store.GetUserByEmail(ctx, email)
			if err != nil {
				return nil, false, fmt.Errorf("re-fetch admin user: %w", err)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("create admin user: %w", err)
	}

	return user, true, nil
}
