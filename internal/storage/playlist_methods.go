package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
)

// ========== Playlist Methods ==========

// CreatePlaylist creates a playlist together with its items
func (s *PostgresStore) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	if playlist.ID == uuid.Nil {
		playlist.ID = uuid.New()
	}

	now := time.Now()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	_, err := s.getDB().ExecContext(ctx, `
        INSERT INTO playlists (id, created_at, updated_at, name, description)
        VALUES ($1, $2, $3, $4, $5)`,
		playlist.ID, playlist.CreatedAt, playlist.UpdatedAt,
		playlist.Name, playlist.Description,
	)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	if len(playlist.Items) > 0 {
		return s.ReplacePlaylistItems(ctx, playlist.ID, playlist.Items)
	}

	return nil
}

// GetPlaylist gets a playlist with its ordered items
func (s *PostgresStore) GetPlaylist(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	playlist := &models.Playlist{}

	err := s.getDB().QueryRowContext(ctx, `
        SELECT id, created_at, updated_at, name, description
        FROM playlists WHERE id = $1`, id,
	).Scan(
		&playlist.ID, &playlist.CreatedAt, &playlist.UpdatedAt,
		&playlist.Name, &playlist.Description,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := s.ListPlaylistItems(ctx, id)
	if err != nil {
		return nil, err
	}
	playlist.Items = items

	return playlist, nil
}

// UpdatePlaylist updates playlist metadata and, when items are present,
// replaces the item set
func (s *PostgresStore) UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	playlist.UpdatedAt = time.Now()

	result, err := s.getDB().ExecContext(ctx, `
        UPDATE playlists SET updated_at = $2, name = $3, description = $4
        WHERE id = $1`,
		playlist.ID, playlist.UpdatedAt, playlist.Name, playlist.Description,
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

	if playlist.Items != nil {
		return s.ReplacePlaylistItems(ctx, playlist.ID, playlist.Items)
	}

	return nil
}

// DeletePlaylist deletes a playlist and its items
func (s *PostgresStore) DeletePlaylist(ctx context.Context, id uuid.UUID) error {
	if _, err := s.getDB().ExecContext(ctx,
		"DELETE FROM playlist_items WHERE playlist_id = $1", id); err != nil {
		return err
	}

	result, err := s.getDB().ExecContext(ctx, "DELETE FROM playlists WHERE id = $1", id)
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

// ListPlaylists lists playlists without items
func (s *PostgresStore) ListPlaylists(ctx context.Context, limit, offset int) ([]*models.Playlist, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM playlists").Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.getDB().QueryContext(ctx, `
        SELECT id, created_at, updated_at, name, description
        FROM playlists
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		playlist := &models.Playlist{}
		err := rows.Scan(
			&playlist.ID, &playlist.CreatedAt, &playlist.UpdatedAt,
			&playlist.Name, &playlist.Description,
		)
		if err != nil {
			return nil, 0, err
		}
		playlists = append(playlists, playlist)
	}

	return playlists, count, rows.Err()
}

// ListPlaylistItems lists the items of a playlist in rotation order
func (s *PostgresStore) ListPlaylistItems(ctx context.Context, playlistID uuid.UUID) ([]*models.PlaylistItem, error) {
	rows, err := s.getDB().QueryContext(ctx, `
        SELECT id, playlist_id, screen_id, duration, order_index
        FROM playlist_items
        WHERE playlist_id = $1
        ORDER BY order_index ASC`, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.PlaylistItem
	for rows.Next() {
		item := &models.PlaylistItem{}
		err := rows.Scan(
			&item.ID, &item.PlaylistID, &item.ScreenID,
			&item.Duration, &item.OrderIndex,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// ReplacePlaylistItems swaps the full item set of a playlist
func (s *PostgresStore) ReplacePlaylistItems(ctx context.Context, playlistID uuid.UUID, items []*models.PlaylistItem) error {
	if _, err := s.getDB().ExecContext(ctx,
		"DELETE FROM playlist_items WHERE playlist_id = $1", playlistID); err != nil {
		return err
	}

	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.PlaylistID = playlistID

		_, err := s.getDB().ExecContext(ctx, `
            INSERT INTO playlist_items (id, playlist_id, screen_id, duration, order_index)
            VALUES ($1, $2, $3, $4, $5)`,
			item.ID, item.PlaylistID, item.ScreenID, item.Duration, item.OrderIndex,
		)
		if err != nil {
			if strings.Contains(err.Error(), "duplicate key") {
				return ErrDuplicateKey
			}
			return err
		}
	}

	return nil
}
