package models

// PollHeaders is the structured form of the headers a device sends on
// every poll. Only APIKey is required; the remaining fields are
// device-reported metadata passed through without validation.
type PollHeaders struct {
	APIKey     string `json:"apiKey"`
	MacAddress string `json:"macAddress"`

	// HostURL is derived from the request origin and used to build
	// absolute image URLs in the display response.
	HostURL string `json:"hostUrl"`

	BatteryVoltage  *float64 `json:"batteryVoltage,omitempty"`
	RSSI            *int     `json:"rssi,omitempty"`
	FirmwareVersion string   `json:"firmwareVersion,omitempty"`
	Width           int      `json:"width,omitempty"`
	Height          int      `json:"height,omitempty"`
	RefreshRate     int      `json:"refreshRate,omitempty"`
	UserAgent       string   `json:"userAgent,omitempty"`
}
