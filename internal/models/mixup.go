package models

// Mixup selects among a fixed set of screens by id. The display route only
// needs it as a source of an image reference; rotation is deterministic by
// hour of day so a device never sees a random flicker between polls.
type Mixup struct {
	BaseModel

	Name    string     `json:"name" db:"name"`
	Screens StringList `json:"screens" db:"screens"`
}

// ScreenAt returns the screen for the given hour-of-day, rotating through
// the configured list. Empty mixups return the empty string.
func (m *Mixup) ScreenAt(hour int) string {
	if len(m.Screens) == 0 {
		return ""
	}
	if hour < 0 {
		hour = 0
	}
	return m.Screens[hour%len(m.Screens)]
}
