package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// TimeWindow is one entry of a device refresh schedule. Start and End are
// local clock times in "HH:MM" form; the interval is closed-open
// [Start, End). A window with End before Start wraps past midnight.
// An empty Days list means the window applies every day.
type TimeWindow struct {
	Start string         `json:"start"`
	End   string         `json:"end"`
	Days  []time.Weekday `json:"days,omitempty"`
	Rate  int            `json:"rate"`
}

// RefreshSchedule is an ordered list of time windows scoped to the device
// timezone. Order is significant: the first matching window wins.
type RefreshSchedule struct {
	Windows []TimeWindow `json:"windows"`
}

// Value implements driver.Valuer interface
func (s RefreshSchedule) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner interface
func (s *RefreshSchedule) Scan(value interface{}) error {
	if value == nil {
		*s = RefreshSchedule{}
		return nil
	}

	switch data := value.(type) {
	case []byte:
		return json.Unmarshal(data, s)
	case string:
		return json.Unmarshal([]byte(data), s)
	default:
		*s = RefreshSchedule{}
		return nil
	}
}
