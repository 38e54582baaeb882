package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
)

// ========== Mixup Methods ==========

// CreateMixup creates a mixup
func (s *PostgresStore) CreateMixup(ctx context.Context, mixup *models.Mixup) error {
	if mixup.ID == uuid.Nil {
		mixup.ID = uuid.New()
	}

	now := time.Now()
	mixup.CreatedAt = now
	mixup.UpdatedAt = now

	_, err := s.getDB().ExecContext(ctx, `
        INSERT INTO mixups (id, created_at, updated_at, name, screens)
        VALUES ($1, $2, $3, $4, $5)`,
		mixup.ID, mixup.CreatedAt, mixup.UpdatedAt, mixup.Name, mixup.Screens,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

// GetMixup gets a mixup by id
func (s *PostgresStore) GetMixup(ctx context.Context, id uuid.UUID) (*models.Mixup, error) {
	mixup := &models.Mixup{}

	err := s.getDB().QueryRowContext(ctx, `
        SELECT id, created_at, updated_at, name, screens
        FROM mixups WHERE id = $1`, id,
	).Scan(&mixup.ID, &mixup.CreatedAt, &mixup.UpdatedAt, &mixup.Name, &mixup.Screens)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return mixup, nil
}

// UpdateMixup updates a mixup
func (s *PostgresStore) UpdateMixup(ctx context.Context, mixup *models.Mixup) error {
	mixup.UpdatedAt = time.Now()

	result, err := s.getDB().ExecContext(ctx, `
        UPDATE mixups SET updated_at = $2, name = $3, screens = $4
        WHERE id = $1`,
		mixup.ID, mixup.UpdatedAt, mixup.Name, mixup.Screens,
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

// DeleteMixup deletes a mixup
func (s *PostgresStore) DeleteMixup(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM mixups WHERE id = $1", id)
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

// ListMixups lists mixups
func (s *PostgresStore) ListMixups(ctx context.Context, limit, offset int) ([]*models.Mixup, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM mixups").Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.getDB().QueryContext(ctx, `
        SELECT id, created_at, updated_at, name, screens
        FROM mixups
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var mixups []*models.Mixup
	for rows.Next() {
		mixup := &models.Mixup{}
		err := rows.Scan(&mixup.ID, &mixup.CreatedAt, &mixup.UpdatedAt,
			&mixup.Name, &mixup.Screens)
		if err != nil {
			return nil, 0, err
		}
		mixups = append(mixups, mixup)
	}

	return mixups, count, rows.Err()
}
