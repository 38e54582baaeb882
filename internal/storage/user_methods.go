package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
)

// ========== User Methods ==========

// CreateUser creates a new admin user
func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := s.getDB().ExecContext(ctx, `
        INSERT INTO users (id, created_at, updated_at, email, name,
            password_hash, is_admin, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.CreatedAt, user.UpdatedAt, user.Email, user.Name,
		user.PasswordHash, user.IsAdmin, user.IsActive,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetUser gets a user by id
func (s *PostgresStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUserWhere(ctx, "id = $1", id)
}

// GetUserByEmail gets a user by email
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUserWhere(ctx, "email = $1", email)
}

func (s *PostgresStore) getUserWhere(ctx context.Context, where string, arg interface{}) (*models.User, error) {
	user := &models.User{}

	err := s.getDB().QueryRowContext(ctx, `
        SELECT id, created_at, updated_at, email, name, password_hash,
               is_admin, is_active, last_login_at
        FROM users WHERE `+where, arg,
	).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Email, &user.Name,
		&user.PasswordHash, &user.IsAdmin, &user.IsActive, &user.LastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return user, nil
}

// UpdateUser updates a user
func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	user.UpdatedAt = time.Now()

	result, err := s.getDB().ExecContext(ctx, `
        UPDATE users SET updated_at = $2, email = $3, name = $4,
            password_hash = $5, is_admin = $6, is_active = $7, last_login_at = $8
        WHERE id = $1`,
		user.ID, user.UpdatedAt, user.Email, user.Name,
		user.PasswordHash, user.IsAdmin, user.IsActive, user.LastLoginAt,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
