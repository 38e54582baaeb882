package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/eink-server/eink-display-server/internal/models"
	"github.com/eink-server/eink-display-server/internal/schedule"
	"github.com/eink-server/eink-display-server/pkg/crypto"
)

// DisplayResponse is the per-poll protocol payload the device firmware
// expects. Firmware fields are present but static; OTA updates are not
// driven by this server.
type DisplayResponse struct {
	Status         int     `json:"status"`
	ImageURL       string  `json:"image_url"`
	Filename       string  `json:"filename"`
	RefreshRate    int     `json:"refresh_rate"`
	UpdateFirmware bool    `json:"update_firmware"`
	FirmwareURL    *string `json:"firmware_url"`
	ResetFirmware  bool    `json:"reset_firmware"`
	Error          string  `json:"error,omitempty"`
}

// HandleDisplay serves one poll of the device display protocol: it picks
// the screen to show, computes the next poll interval, and answers with an
// absolute image URL. The device must always receive a renderable
// response, so every failure path degrades to a default or fallback image.
func (s *RESTServer) HandleDisplay(w http.ResponseWriter, r *http.Request) {
	headers := ParseDeviceHeaders(r, s.config.Display.HostURL)

	if headers.APIKey == "" {
		s.respondJSON(w, http.StatusUnauthorized, map[string]interface{}{
			"status": 401,
			"error":  "Access-Token header is required",
		})
		return
	}

	basePngURL := headers.HostURL + "/api/png"
	baseBmpURL := headers.HostURL + "/api/bitmap"
	uniqueID := s.pollID()

	defaults := &s.config.Display

	// Degraded mode: store missing or unreachable. Serve the default
	// screen at the default rate rather than failing the poll.
	if s.store == nil || s.store.Ping(r.Context()) != nil {
		log.Warn().Msg("Store not available, serving default screen")
		imageURL := fmt.Sprintf("%s/%s.png?width=%d&height=%d",
			basePngURL, defaults.DefaultScreen, defaults.DefaultWidth, defaults.DefaultHeight)
		s.respondJSON(w, http.StatusOK, &DisplayResponse{
			ImageURL:    imageURL,
			Filename:    fmt.Sprintf("%s_%s.png", defaults.DefaultScreen, uniqueID),
			RefreshRate: defaults.DefaultRefreshRate,
		})
		return
	}

	dev := s.gateway.FindOrCreate(r.Context(), headers)
	if dev == nil {
		log.Error().Msg("Error fetching/creating device")
		s.respondJSON(w, http.StatusOK, s.errorResponse("Device not found", baseBmpURL, uniqueID))
		return
	}

	screenToDisplay := dev.Screen
	if screenToDisplay == "" {
		screenToDisplay = defaults.DefaultScreen
	}

	width, height := dev.Dimensions(defaults.DefaultWidth, defaults.DefaultHeight)
	grayscale := dev.GrayscaleLevels()
	isColor := dev.DisplayType == models.DisplayTypeColor
	timezone := dev.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	buildImageURL := func(screen string) string {
		if isColor {
			return fmt.Sprintf("%s/%s.png?width=%d&height=%d", basePngURL, screen, width, height)
		}
		return fmt.Sprintf("%s/%s.bmp?width=%d&height=%d&grayscale=%d",
			baseBmpURL, screen, width, height, grayscale)
	}

	refreshRate := defaults.DefaultRefreshRate
	var imageURL string
	now := time.Now()

	switch dev.DisplayMode {
	case models.DisplayModePlaylist:
		if dev.PlaylistID != nil {
			item, err := s.selector.Active(r.Context(), *dev.PlaylistID, timezone, now)
			if err != nil {
				log.Warn().Err(err).Str("friendly_id", dev.FriendlyID).Msg("Playlist lookup failed")
			}
			if item != nil {
				screenToDisplay = item.ScreenID
				refreshRate = item.Duration
				s.gateway.AdvancePlaylistIndex(r.Context(), dev, item.OrderIndex)
			} else {
				// Empty playlist: show the static screen and retry soon.
				log.Info().Str("friendly_id", dev.FriendlyID).
					Msg("No active playlist item found, using fallback")
				refreshRate = 60
			}
		}
		imageURL = buildImageURL(screenToDisplay)

	case models.DisplayModeMixup:
		if dev.MixupID != nil {
			imageURL = fmt.Sprintf("%s/mixup/%s.bmp?width=%d&height=%d&grayscale=%d&tz=%s",
				baseBmpURL, dev.MixupID, width, height, grayscale, url.QueryEscape(timezone))
			if isColor {
				imageURL += "&format=png"
			}
			log.Info().
				Str("friendly_id", dev.FriendlyID).
				Str("mixup_id", dev.MixupID.String()).
				Msg("Using mixup display mode")
		} else {
			imageURL = buildImageURL(screenToDisplay)
		}
		refreshRate = schedule.CalculateRefreshRate(dev.RefreshSchedule, defaults.DefaultRefreshRate, timezone, now)

	default:
		refreshRate = schedule.CalculateRefreshRate(dev.RefreshSchedule, defaults.DefaultRefreshRate, timezone, now)
		imageURL = buildImageURL(screenToDisplay)
	}

	// Background work: render ahead of the device fetch and persist the
	// reported status. Neither blocks or fails the response.
	if dev.DisplayMode != models.DisplayModeMixup {
		s.engine.Precache(screenToDisplay, width, height)
	}
	s.gateway.UpdateStatus(dev, headers, refreshRate)

	ext := "bmp"
	if isColor {
		ext = "png"
	}

	log.Info().
		Str("friendly_id", dev.FriendlyID).
		Str("screen", screenToDisplay).
		Int("refresh_rate", refreshRate).
		Str("display_mode", string(dev.DisplayMode)).
		Msg("Display request successful")

	s.respondJSON(w, http.StatusOK, &DisplayResponse{
		ImageURL:    imageURL,
		Filename:    fmt.Sprintf("%s_%s.%s", screenToDisplay, uniqueID, ext),
		RefreshRate: refreshRate,
	})
}

// errorResponse builds the error-shaped protocol payload. The firmware
// still expects a well-formed body with a fetchable image, so the payload
// points at the not-found bitmap rather than carrying a bare error.
func (s *RESTServer) errorResponse(message, baseBmpURL, uniqueID string) *DisplayResponse {
	defaults := &s.config.Display
	return &DisplayResponse{
		Status: 500,
		Error:  message,
		ImageURL: fmt.Sprintf("%s/not-found.bmp?width=%d&height=%d&grayscale=2",
			baseBmpURL, defaults.DefaultWidth, defaults.DefaultHeight),
		Filename:    fmt.Sprintf("not-found_%s.bmp", uniqueID),
		RefreshRate: defaults.DefaultRefreshRate,
	}
}

// pollID builds a short unique token so per-poll filenames defeat the
// device's client-side cache.
func (s *RESTServer) pollID() string {
	token, err := crypto.RandomToken(5)
	if err != nil {
		token = "00000"
	}
	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	if len(ts) > 3 {
		ts = ts[len(ts)-3:]
	}
	return token + ts
}
