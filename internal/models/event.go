package models

import "time"

// EventType classifies device events published to the event bus.
type EventType string

const (
	EventTypePoll   EventType = "poll"
	EventTypeStatus EventType = "status"
)

// DeviceEvent is the payload published on device activity. Consumers are
// external; failures to publish never affect the device response.
type DeviceEvent struct {
	Type        EventType `json:"type"`
	FriendlyID  string    `json:"friendlyId"`
	Screen      string    `json:"screen,omitempty"`
	RefreshRate int       `json:"refreshRate,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Metadata    Variables `json:"metadata,omitempty"`
}
