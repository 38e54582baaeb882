package playlist

import (
	"testing"
	"time"

	"github.com/eink-server/eink-display-server/internal/models"
)

func item(screen string, duration, order int) *models.PlaylistItem {
	return &models.PlaylistItem{ScreenID: screen, Duration: duration, OrderIndex: order}
}

// localAt returns a UTC instant at the given seconds past midnight.
func localAt(seconds int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(seconds) * time.Second)
}

func TestActiveItemEmpty(t *testing.T) {
	if got := ActiveItem(nil, localAt(0)); got != nil {
		t.Errorf("empty playlist should return nil, got %+v", got)
	}
}

func TestActiveItemSingle(t *testing.T) {
	items := []*models.PlaylistItem{item("only", 300, 0)}
	for _, sec := range []int{0, 299, 300, 86399} {
		got := ActiveItem(items, localAt(sec))
		if got == nil || got.ScreenID != "only" {
			t.Errorf("at %ds: got %+v, want the single item", sec, got)
		}
	}
}

func TestActiveItemRotation(t *testing.T) {
	// 60s + 120s + 60s cycle; declaration order deliberately shuffled so
	// selection follows order_index, not slice order.
	items := []*models.PlaylistItem{
		item("third", 60, 2),
		item("first", 60, 0),
		item("second", 120, 1),
	}

	tests := []struct {
		seconds int
		want    string
	}{
		{0, "first"},
		{59, "first"},
		{60, "second"},
		{179, "second"},
		{180, "third"},
		{239, "third"},
		{240, "first"}, // cycle wraps
		{300, "second"},
	}

	for _, tt := range tests {
		got := ActiveItem(items, localAt(tt.seconds))
		if got == nil || got.ScreenID != tt.want {
			t.Errorf("at %ds: got %+v, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestActiveItemVisitsEveryItemOncePerCycle(t *testing.T) {
	items := []*models.PlaylistItem{
		item("a", 60, 0),
		item("b", 90, 1),
		item("c", 30, 2),
	}

	seen := map[string]int{}
	// Sample every second of one full cycle.
	for sec := 0; sec < 180; sec++ {
		got := ActiveItem(items, localAt(sec))
		if got == nil {
			t.Fatalf("nil item at %ds", sec)
		}
		seen[got.ScreenID]++
	}

	if len(seen) != 3 {
		t.Fatalf("expected 3 distinct items in one cycle, saw %v", seen)
	}
	if seen["a"] != 60 || seen["b"] != 90 || seen["c"] != 30 {
		t.Errorf("slot lengths wrong: %v", seen)
	}
}

func TestActiveItemOrderIndexTie(t *testing.T) {
	// Equal order_index values resolve to the first declared, stably.
	items := []*models.PlaylistItem{
		item("kept", 60, 1),
		item("shadowed", 60, 1),
	}

	got := ActiveItem(items, localAt(0))
	if got == nil || got.ScreenID != "kept" {
		t.Errorf("tie should keep declaration order, got %+v", got)
	}
}

func TestActiveItemClampsBadDuration(t *testing.T) {
	// A zero duration becomes a 60s slot instead of dividing by zero.
	items := []*models.PlaylistItem{
		item("zero", 0, 0),
		item("next", 60, 1),
	}

	if got := ActiveItem(items, localAt(30)); got == nil || got.ScreenID != "zero" {
		t.Errorf("at 30s: got %+v, want the clamped first slot", got)
	}
	if got := ActiveItem(items, localAt(90)); got == nil || got.ScreenID != "next" {
		t.Errorf("at 90s: got %+v, want the second slot", got)
	}
}

func TestActiveItemDeterministic(t *testing.T) {
	items := []*models.PlaylistItem{
		item("a", 60, 0),
		item("b", 60, 1),
	}

	local := localAt(4242)
	first := ActiveItem(items, local)
	for i := 0; i < 10; i++ {
		if got := ActiveItem(items, local); got.ScreenID != first.ScreenID {
			t.Fatalf("selection not deterministic: %q then %q", first.ScreenID, got.ScreenID)
		}
	}
}
