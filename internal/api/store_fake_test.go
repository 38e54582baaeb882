package api

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
	"github.com/eink-server/eink-display-server/internal/storage"
)

// fakeStore is an in-memory Store for handler tests. Lookups serve the
// configured fixtures; writes are recorded but otherwise no-ops.
type fakeStore struct {
	device        *models.Device
	playlistItems []*models.PlaylistItem
	mixup         *models.Mixup
	user          *models.User

	pingErr       error
	createUserErr error

	mu             sync.Mutex
	createdDevices []*models.Device
	createdUsers   []*models.User
	statusUpdates  int
	indexUpdates   []int
}

var _ storage.Store = (*fakeStore)(nil)

func (f *fakeStore) BeginTx(ctx context.Context) (storage.Store, error) { return f, nil }
func (f *fakeStore) Commit() error                                      { return nil }
func (f *fakeStore) Rollback() error                                    { return nil }

func (f *fakeStore) CreateDevice(ctx context.Context, device *models.Device) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdDevices = append(f.createdDevices, device)
	return nil
}

func (f *fakeStore) GetDevice(ctx context.Context, id uuid.UUID) (*models.Device, error) {
	if f.device != nil && f.device.ID == id {
		return f.device, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) GetDeviceByAPIKey(ctx context.Context, apiKey string) (*models.Device, error) {
	if f.device != nil && f.device.APIKey == apiKey {
		return f.device, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) UpdateDevice(ctx context.Context, device *models.Device) error { return nil }

func (f *fakeStore) UpdateDeviceStatus(ctx context.Context, id uuid.UUID, status *models.PollHeaders, refreshRate int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusUpdates++
	return nil
}

func (f *fakeStore) UpdateDevicePlaylistIndex(ctx context.Context, id uuid.UUID, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexUpdates = append(f.indexUpdates, index)
	return nil
}

func (f *fakeStore) statusUpdateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusUpdates
}

func (f *fakeStore) DeleteDevice(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeStore) ListDevices(ctx context.Context, limit, offset int) ([]*models.Device, int64, error) {
	if f.device == nil {
		return nil, 0, nil
	}
	return []*models.Device{f.device}, 1, nil
}

func (f *fakeStore) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error { return nil }

func (f *fakeStore) GetPlaylist(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeStore) UpdatePlaylist(ctx context.Context, playlist *models.Playlist) error { return nil }
func (f *fakeStore) DeletePlaylist(ctx context.Context, id uuid.UUID) error              { return nil }

func (f *fakeStore) ListPlaylists(ctx context.Context, limit, offset int) ([]*models.Playlist, int64, error) {
	return nil, 0, nil
}

func (f *fakeStore) ListPlaylistItems(ctx context.Context, playlistID uuid.UUID) ([]*models.PlaylistItem, error) {
	return f.playlistItems, nil
}

func (f *fakeStore) ReplacePlaylistItems(ctx context.Context, playlistID uuid.UUID, items []*models.PlaylistItem) error {
	return nil
}

func (f *fakeStore) CreateMixup(ctx context.Context, mixup *models.Mixup) error { return nil }

func (f *fakeStore) GetMixup(ctx context.Context, id uuid.UUID) (*models.Mixup, error) {
	if f.mixup != nil && f.mixup.ID == id {
		return f.mixup, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) UpdateMixup(ctx context.Context, mixup *models.Mixup) error { return nil }
func (f *fakeStore) DeleteMixup(ctx context.Context, id uuid.UUID) error        { return nil }

func (f *fakeStore) ListMixups(ctx context.Context, limit, offset int) ([]*models.Mixup, int64, error) {
	return nil, 0, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, user *models.User) error {
	if f.createUserErr != nil {
		return f.createUserErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createdUsers = append(f.createdUsers, user)
	return nil
}

func (f *fakeStore) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.user != nil && f.user.Email == email {
		return f.user, nil
	}
	return nil, storage.ErrNotFound
}

func (f *fakeStore) UpdateUser(ctx context.Context, user *models.User) error { return nil }

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }
func (f *fakeStore) Close() error                   { return nil }
