package api

import (
	"net/http"
	"strconv"

	"github.com/eink-server/eink-display-server/internal/models"
)

// ParseDeviceHeaders extracts device identity and reported metadata from a
// poll request. Only Access-Token matters for control flow; everything
// else is passed through opaquely.
func ParseDeviceHeaders(r *http.Request, hostOverride string) *models.PollHeaders {
	h := &models.PollHeaders{
		APIKey:          r.Header.Get("Access-Token"),
		MacAddress:      r.Header.Get("ID"),
		FirmwareVersion: r.Header.Get("FW-Version"),
		UserAgent:       r.Header.Get("User-Agent"),
		HostURL:         hostURL(r, hostOverride),
	}

	if v, err := strconv.ParseFloat(r.Header.Get("Battery-Voltage"), 64); err == nil {
		h.BatteryVoltage = &v
	}
	if v, err := strconv.Atoi(r.Header.Get("RSSI")); err == nil {
		h.RSSI = &v
	}
	if v, err := strconv.Atoi(r.Header.Get("Width")); err == nil && v > 0 {
		h.Width = v
	}
	if v, err := strconv.Atoi(r.Header.Get("Height")); err == nil && v > 0 {
		h.Height = v
	}
	if v, err := strconv.Atoi(r.Header.Get("Refresh-Rate")); err == nil && v > 0 {
		h.RefreshRate = v
	}

	return h
}

// hostURL derives the absolute origin used for image URLs. A configured
// override wins; otherwise forwarding headers, then the request itself.
func hostURL(r *http.Request, override string) string {
	if override != "" {
		return override
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}

	return scheme + "://" + host
}
