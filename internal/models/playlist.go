package models

import "github.com/google/uuid"

// Playlist is an ordered, time-rotated sequence of screens for one device.
type Playlist struct {
	BaseModel

	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`

	// Items ordered by OrderIndex. Populated on reads that ask for them.
	Items []*PlaylistItem `json:"items,omitempty"`
}

// PlaylistItem is one slot of a playlist. OrderIndex values are unique
// within a playlist and define rotation order; Duration is the slot length
// in seconds and doubles as the device refresh rate while the slot is live.
type PlaylistItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	PlaylistID uuid.UUID `json:"playlistId" db:"playlist_id"`
	ScreenID   string    `json:"screenId" db:"screen_id"`
	Duration   int       `json:"duration" db:"duration"`
	OrderIndex int       `json:"orderIndex" db:"order_index"`
}
