// Package playlist selects the active item of a device playlist for a
// given instant.
package playlist

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
	"github.com/eink-server/eink-display-server/internal/storage"
)

// Selector resolves the active playlist item for "now".
type Selector struct {
	store storage.Store
}

// NewSelector creates a playlist selector backed by the given store.
func NewSelector(store storage.Store) *Selector {
	return &Selector{store: store}
}

// Active loads the playlist's items and returns the one whose time slot
// contains now in the given timezone. An empty playlist returns nil with
// no error; the caller falls back to the device's static screen.
func (s *Selector) Active(ctx context.Context, playlistID uuid.UUID, timezone string, now time.Time) (*models.PlaylistItem, error) {
	items, err := s.store.ListPlaylistItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	return ActiveItem(items, now.In(loc)), nil
}

// ActiveItem selects the item whose slot contains the local instant.
// Items rotate by elapsed-time-since-local-midnight modulo the playlist
// cycle length, so the selection is a pure function of the clock: every
// item is visited exactly once per full rotation, and a backwards clock
// jump simply reselects by the same formula. Ties on order_index resolve
// to the lowest one. Returns nil for an empty item set.
func ActiveItem(items []*models.PlaylistItem, local time.Time) *models.PlaylistItem {
	if len(items) == 0 {
		return nil
	}

	ordered := make([]*models.PlaylistItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})

	cycle := 0
	for _, item := range ordered {
		cycle += slotSeconds(item)
	}

	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	elapsed := int(local.Sub(midnight).Seconds()) % cycle

	for _, item := range ordered {
		elapsed -= slotSeconds(item)
		if elapsed < 0 {
			return item
		}
	}

	// Unreachable given the modulo above, but never return nil for a
	// non-empty playlist.
	return ordered[0]
}

// slotSeconds clamps non-positive durations so a misconfigured item cannot
// stall the rotation.
func slotSeconds(item *models.PlaylistItem) int {
	if item.Duration <= 0 {
		return 60
	}
	return item.Duration
}
