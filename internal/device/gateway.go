// Package device implements the registry gateway between the display
// protocol and the device store.
package device

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eink-server/eink-display-server/internal/config"
	"github.com/eink-server/eink-display-server/internal/integration"
	"github.com/eink-server/eink-display-server/internal/models"
	"github.com/eink-server/eink-display-server/internal/storage"
	"github.com/eink-server/eink-display-server/pkg/crypto"
)

// Gateway loads and mutates device records for the polling endpoint.
type Gateway struct {
	store     storage.Store
	display   *config.DisplayConfig
	publisher *integration.Publisher
}

// NewGateway creates a device gateway. publisher may be nil.
func NewGateway(store storage.Store, display *config.DisplayConfig, publisher *integration.Publisher) *Gateway {
	return &Gateway{store: store, display: display, publisher: publisher}
}

// FindOrCreate looks up a device by its access token, registering a new
// record with default display settings on first contact. It returns nil
// (not an error) when the store fails: the caller degrades to the default
// screen rather than failing the poll.
func (g *Gateway) FindOrCreate(ctx context.Context, headers *models.PollHeaders) *models.Device {
	dev, err := g.store.GetDeviceByAPIKey(ctx, headers.APIKey)
	if err == nil {
		g.publisher.PublishDeviceEvent(&models.DeviceEvent{
			Type:       models.EventTypePoll,
			FriendlyID: dev.FriendlyID,
			Screen:     dev.Screen,
			Timestamp:  time.Now(),
		})
		return dev
	}
	if !errors.Is(err, storage.ErrNotFound) {
		log.Error().Err(err).Msg("Device lookup failed")
		return nil
	}

	dev, err = g.register(ctx, headers)
	if err != nil {
		log.Error().Err(err).Msg("Device registration failed")
		return nil
	}

	log.Info().
		Str("friendly_id", dev.FriendlyID).
		Str("mac", dev.MacAddress).
		Msg("Registered new device")

	return dev
}

func (g *Gateway) register(ctx context.Context, headers *models.PollHeaders) (*models.Device, error) {
	friendlyID, err := crypto.GenerateFriendlyID()
	if err != nil {
		return nil, fmt.Errorf("generate friendly id: %w", err)
	}

	width, height := headers.Width, headers.Height
	if width <= 0 {
		width = g.display.DefaultWidth
	}
	if height <= 0 {
		height = g.display.DefaultHeight
	}

	dev := &models.Device{
		FriendlyID:      friendlyID,
		MacAddress:      headers.MacAddress,
		Name:            "Device " + friendlyID,
		APIKey:          headers.APIKey,
		ScreenWidth:     width,
		ScreenHeight:    height,
		Orientation:     models.OrientationLandscape,
		DisplayType:     models.DisplayTypeBW,
		Grayscale:       2,
		DisplayMode:     models.DisplayModeStatic,
		Screen:          g.display.DefaultScreen,
		Timezone:        g.display.DefaultTimezone,
		FirmwareVersion: headers.FirmwareVersion,
	}

	if err := g.store.CreateDevice(ctx, dev); err != nil {
		// A concurrent first poll may have won the insert.
		if errors.Is(err, storage.ErrDuplicateKey) {
			return g.store.GetDeviceByAPIKey(ctx, headers.APIKey)
		}
		return nil, err
	}

	return dev, nil
}

// UpdateStatus persists the device-reported status fields in the
// background. It returns immediately; failures are logged, never
// surfaced, and never retried.
func (g *Gateway) UpdateStatus(dev *models.Device, headers *models.PollHeaders, refreshRate int) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("Panic in device status update")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := g.store.UpdateDeviceStatus(ctx, dev.ID, headers, refreshRate); err != nil {
			log.Warn().Err(err).
				Str("friendly_id", dev.FriendlyID).
				Msg("Failed to update device status")
		}

		g.publisher.PublishDeviceEvent(&models.DeviceEvent{
			Type:        models.EventTypeStatus,
			FriendlyID:  dev.FriendlyID,
			RefreshRate: refreshRate,
			Timestamp:   time.Now(),
		})
	}()
}

// AdvancePlaylistIndex records the selected rotation slot. Best-effort:
// the index is advisory and the next poll recomputes the slot from the
// clock anyway.
func (g *Gateway) AdvancePlaylistIndex(ctx context.Context, dev *models.Device, index int) {
	if dev.CurrentPlaylistIndex == index {
		return
	}
	if err := g.store.UpdateDevicePlaylistIndex(ctx, dev.ID, index); err != nil {
		log.Warn().Err(err).
			Str("friendly_id", dev.FriendlyID).
			Msg("Failed to advance playlist index")
		return
	}
	dev.CurrentPlaylistIndex = index
}
