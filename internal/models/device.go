package models

import (
	"time"

	"github.com/google/uuid"
)

// DisplayMode determines how the next screen for a device is chosen.
type DisplayMode string

const (
	DisplayModeStatic   DisplayMode = "static"
	DisplayModePlaylist DisplayMode = "playlist"
	DisplayModeMixup    DisplayMode = "mixup"
)

// DisplayType is the panel color capability.
type DisplayType string

const (
	DisplayTypeBW    DisplayType = "bw"
	DisplayTypeColor DisplayType = "color"
)

// Orientation of the physical panel. Portrait swaps width and height when
// building image URLs.
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
)

// Device represents a polling e-ink display device
type Device struct {
	BaseModel

	// Identifiers
	FriendlyID string `json:"friendlyId" db:"friendly_id"`
	MacAddress string `json:"macAddress" db:"mac_address"`
	Name       string `json:"name" db:"name"`

	// Access token presented by the device on every poll
	APIKey string `json:"-" db:"api_key"`

	// Display geometry and capability
	ScreenWidth  int         `json:"screenWidth" db:"screen_width"`
	ScreenHeight int         `json:"screenHeight" db:"screen_height"`
	Orientation  Orientation `json:"orientation" db:"orientation"`
	DisplayType  DisplayType `json:"displayType" db:"display_type"`
	Grayscale    int         `json:"grayscale" db:"grayscale"`

	// Display mode and mode-specific references
	DisplayMode DisplayMode `json:"displayMode" db:"display_mode"`
	Screen      string      `json:"screen" db:"screen"`
	PlaylistID  *uuid.UUID  `json:"playlistId,omitempty" db:"playlist_id"`
	MixupID     *uuid.UUID  `json:"mixupId,omitempty" db:"mixup_id"`

	CurrentPlaylistIndex int `json:"currentPlaylistIndex" db:"current_playlist_index"`

	// Refresh scheduling
	RefreshSchedule *RefreshSchedule `json:"refreshSchedule,omitempty" db:"refresh_schedule"`
	Timezone        string           `json:"timezone" db:"timezone"`

	// Device-reported status
	BatteryVoltage  *float64   `json:"batteryVoltage,omitempty" db:"battery_voltage"`
	RSSI            *int       `json:"rssi,omitempty" db:"rssi"`
	FirmwareVersion string     `json:"firmwareVersion" db:"firmware_version"`
	LastRefreshRate int        `json:"lastRefreshRate" db:"last_refresh_rate"`
	LastSeenAt      *time.Time `json:"lastSeenAt,omitempty" db:"last_seen_at"`
}

// GrayscaleLevels returns the panel's gray level count, normalized to one
// of 2, 4 or 16. Anything else falls back to 2 (black/white).
func (d *Device) GrayscaleLevels() int {
	switch d.Grayscale {
	case 2, 4, 16:
		return d.Grayscale
	}
	return 2
}

// Dimensions returns the render dimensions honoring the panel orientation.
func (d *Device) Dimensions(defaultWidth, defaultHeight int) (int, int) {
	w, h := d.ScreenWidth, d.ScreenHeight
	if w <= 0 {
		w = defaultWidth
	}
	if h <= 0 {
		h = defaultHeight
	}
	if d.Orientation == OrientationPortrait {
		return h, w
	}
	return w, h
}

// Location resolves the device timezone, falling back to UTC.
func (d *Device) Location() *time.Location {
	if d.Timezone != "" {
		if loc, err := time.LoadLocation(d.Timezone); err == nil {
			return loc
		}
	}
	return time.UTC
}
