package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
)

// ========== Device Methods ==========

const deviceColumns = `
        id, created_at, updated_at, friendly_id, mac_address, name, api_key,
        screen_width, screen_height, orientation, display_type, grayscale,
        display_mode, screen, playlist_id, mixup_id, current_playlist_index,
        refresh_schedule, timezone, battery_voltage, rssi, firmware_version,
        last_refresh_rate, last_seen_at`

// CreateDevice creates a new device
func (s *PostgresStore) CreateDevice(ctx context.Context, device *models.Device) error {
	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}

	now := time.Now()
	device.CreatedAt = now
	device.UpdatedAt = now

	query := `
        INSERT INTO devices (
            id, created_at, updated_at, friendly_id, mac_address, name, api_key,
            screen_width, screen_height, orientation, display_type, grayscale,
            display_mode, screen, playlist_id, mixup_id, current_playlist_index,
            refresh_schedule, timezone, battery_voltage, rssi, firmware_version,
            last_refresh_rate, last_seen_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
            $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24
        )`

	_, err := s.getDB().ExecContext(ctx, query,
		device.ID, device.CreatedAt, device.UpdatedAt, device.FriendlyID,
		device.MacAddress, device.Name, device.APIKey,
		device.ScreenWidth, device.ScreenHeight, device.Orientation,
		device.DisplayType, device.Grayscale,
		device.DisplayMode, device.Screen, device.PlaylistID, device.MixupID,
		device.CurrentPlaylistIndex, device.RefreshSchedule, device.Timezone,
		device.BatteryVoltage, device.RSSI, device.FirmwareVersion,
		device.LastRefreshRate, device.LastSeenAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateKey
		}
		return err
	}

	return nil
}

func (s *PostgresStore) scanDevice(row interface{ Scan(...interface{}) error }) (*models.Device, error) {
	device := &models.Device{}
	var schedule models.RefreshSchedule
	var hasSchedule bool

	var scheduleRaw sql.NullString
	err := row.Scan(
		&device.ID, &device.CreatedAt, &device.UpdatedAt, &device.FriendlyID,
		&device.MacAddress, &device.Name, &device.APIKey,
		&device.ScreenWidth, &device.ScreenHeight, &device.Orientation,
		&device.DisplayType, &device.Grayscale,
		&device.DisplayMode, &device.Screen, &device.PlaylistID, &device.MixupID,
		&device.CurrentPlaylistIndex, &scheduleRaw, &device.Timezone,
		&device.BatteryVoltage, &device.RSSI, &device.FirmwareVersion,
		&device.LastRefreshRate, &device.LastSeenAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if scheduleRaw.Valid && scheduleRaw.String != "" {
		if err := schedule.Scan(scheduleRaw.String); err == nil {
			hasSchedule = true
		}
	}
	if hasSchedule {
		device.RefreshSchedule = &schedule
	}

	return device, nil
}

// GetDevice gets a device by id
func (s *PostgresStore) GetDevice(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	query := `SELECT` + deviceColumns + ` FROM devices WHERE id = $1`
	return s.scanDevice(s.getDB().QueryRowContext(ctx, query, id))
}

// GetDeviceByAPIKey gets a device by its access token
func (s *PostgresStore) GetDeviceByAPIKey(ctx context.Context, apiKey string) (*models.Device, error) {
	query := `SELECT` + deviceColumns + ` FROM devices WHERE api_key = $1`
	return s.scanDevice(s.getDB().QueryRowContext(ctx, query, apiKey))
}

// UpdateDevice updates a device
func (s *PostgresStore) UpdateDevice(ctx context.Context, device *models.Device) error {
	device.UpdatedAt = time.Now()

	query := `
        UPDATE devices SET
            updated_at = $2, friendly_id = $3, mac_address = $4, name = $5,
            screen_width = $6, screen_height = $7, orientation = $8,
            display_type = $9, grayscale = $10, display_mode = $11,
            screen = $12, playlist_id = $13, mixup_id = $14,
            current_playlist_index = $15, refresh_schedule = $16, timezone = $17
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		device.ID, device.UpdatedAt, device.FriendlyID, device.MacAddress,
		device.Name, device.ScreenWidth, device.ScreenHeight, device.Orientation,
		device.DisplayType, device.Grayscale, device.DisplayMode,
		device.Screen, device.PlaylistID, device.MixupID,
		device.CurrentPlaylistIndex, device.RefreshSchedule, device.Timezone,
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

// UpdateDeviceStatus persists the device-reported status fields from a poll.
func (s *PostgresStore) UpdateDeviceStatus(ctx context.Context, id uuid.UUID, status *models.PollHeaders, refreshRate int) error {
	now := time.Now()

	query := `
        UPDATE devices SET
            updated_at = $2, battery_voltage = $3, rssi = $4,
            firmware_version = COALESCE(NULLIF($5, ''), firmware_version),
            last_refresh_rate = $6, last_seen_at = $7
        WHERE id = $1`

	result, err := s.getDB().ExecContext(ctx, query,
		id, now, status.BatteryVoltage, status.RSSI,
		status.FirmwareVersion, refreshRate, now,
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

// UpdateDevicePlaylistIndex advances the device rotation index. The update
// is a single statement so concurrent polls cannot interleave a stale value.
func (s *PostgresStore) UpdateDevicePlaylistIndex(ctx context.Context, id uuid.UUID, index int) error {
	result, err := s.getDB().ExecContext(ctx,
		`UPDATE devices SET current_playlist_index = $2, updated_at = $3 WHERE id = $1`,
		id, index, time.Now(),
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

// DeleteDevice deletes a device
func (s *PostgresStore) DeleteDevice(ctx context.Context, id uuid.UUID) error {
	result, err := s.getDB().ExecContext(ctx, "DELETE FROM devices WHERE id = $1", id)
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

// ListDevices lists devices
func (s *PostgresStore) ListDevices(ctx context.Context, limit, offset int) ([]*models.Device, int64, error) {
	var count int64
	err := s.getDB().QueryRowContext(ctx, "SELECT COUNT(*) FROM devices").Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	query := `SELECT` + deviceColumns + `
        FROM devices
        ORDER BY created_at DESC
        LIMIT $1 OFFSET $2`

	rows, err := s.getDB().QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var devices []*models.Device
	for rows.Next() {
		device, err := s.scanDevice(rows)
		if err != nil {
			return nil, 0, err
		}
		devices = append(devices, device)
	}

	return devices, count, rows.Err()
}
