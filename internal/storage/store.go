package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidData  = errors.New("invalid data")
)

// Store defines the storage interface
type Store interface {
	// Transaction support
	BeginTx(ctx context.Context) (Store, error)
	Commit() error
	Rollback() error

	// Device methods
	CreateDevice(ctx context.Context, device *models.Device) error
	GetDevice(ctx context.Context, id uuid.UUID) (*models.Device, error)
	GetDeviceByAPIKey(ctx context.Context, apiKey string) (*models.Device, error)
	UpdateDevice(ctx context.Context, device *models.Device) error
	UpdateDeviceStatus(ctx context.Context, id uuid.UUID, status *models.PollHeaders, refreshRate int) error
	UpdateDevicePlaylistIndex(ctx context.Context, id uuid.UUID, index int) error
	DeleteDevice(ctx context.Context, id uuid.UUID) error
	ListDevices(ctx context.Context, limit, offset int) ([]*models.Device, int64, error)

	// Playlist methods (read path for the display protocol, CRUD for admin)
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylist(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error
	DeletePlaylist(ctx context.Context, id uuid.UUID) error
	ListPlaylists(ctx context.Context, limit, offset int) ([]*models.Playlist, int64, error)
	ListPlaylistItems(ctx context.Context, playlistID uuid.UUID) ([]*models.PlaylistItem, error)
	ReplacePlaylistItems(ctx context.Context, playlistID uuid.UUID, items []*models.PlaylistItem) error

	// Mixup methods
	CreateMixup(ctx context.Context, mixup *models.Mixup) error
	GetMixup(ctx context.Context, id uuid.UUID) (*models.Mixup, error)
	UpdateMixup(ctx context.Context, mixup *models.Mixup) error
	DeleteMixup(ctx context.Context, id uuid.UUID) error
	ListMixups(ctx context.Context, limit, offset int) ([]*models.Mixup, int64, error)

	// User methods (admin API)
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error

	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error

	// Close the store
	Close() error
}
