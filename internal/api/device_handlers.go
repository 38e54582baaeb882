package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
	"github.com/eink-server/eink-display-server/internal/storage"
	"github.com/eink-server/eink-display-server/pkg/crypto"
)

// ========== Device handlers ==========

func listParams(r *http.Request) (int, int) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// HandleCreateDevice provisions a device before its first poll. The
// generated access token is returned once in the response; the device
// presents it in the Access-Token header and is matched by it on every
// poll.
func (s *RESTServer) HandleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name" validate:"required,max=100"`
		MacAddress   string `json:"macAddress" validate:"max=64"`
		ScreenWidth  int    `json:"screenWidth" validate:"min=0,max=4096"`
		ScreenHeight int    `json:"screenHeight" validate:"min=0,max=4096"`
		Orientation  string `json:"orientation" validate:"oneof=landscape portrait"`
		DisplayType  string `json:"displayType" validate:"oneof=bw color"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	apiKey, err := crypto.GenerateAPIKey()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to generate access token")
		return
	}

	friendlyID, err := crypto.GenerateFriendlyID()
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to generate friendly id")
		return
	}

	defaults := &s.config.Display

	width, height := req.ScreenWidth, req.ScreenHeight
	if width <= 0 {
		width = defaults.DefaultWidth
	}
	if height <= 0 {
		height = defaults.DefaultHeight
	}

	orientation := models.OrientationLandscape
	if req.Orientation != "" {
		orientation = models.Orientation(req.Orientation)
	}
	displayType := models.DisplayTypeBW
	if req.DisplayType != "" {
		displayType = models.DisplayType(req.DisplayType)
	}

	device := &models.Device{
		FriendlyID:   friendlyID,
		MacAddress:   req.MacAddress,
		Name:         req.Name,
		APIKey:       apiKey,
		ScreenWidth:  width,
		ScreenHeight: height,
		Orientation:  orientation,
		DisplayType:  displayType,
		Grayscale:    2,
		DisplayMode:  models.DisplayModeStatic,
		Screen:       defaults.DefaultScreen,
		Timezone:     defaults.DefaultTimezone,
	}

	if err := s.store.CreateDevice(r.Context(), device); err != nil {
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "device already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]interface{}{
		"device":  device,
		"api_key": apiKey,
	})
}

// HandleListDevices lists registered devices
func (s *RESTServer) HandleListDevices(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	devices, total, err := s.store.ListDevices(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"devices": devices,
		"total":   total,
	})
}

// HandleGetDevice gets a device
func (s *RESTServer) HandleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}

	device, err := s.store.GetDevice(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "device not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, device)
}

// HandleUpdateDevice updates device display settings
func (s *RESTServer) HandleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}

	device, err := s.store.GetDevice(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "device not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req struct {
		Name            string                  `json:"name"`
		ScreenWidth     int                     `json:"screenWidth" validate:"min=0,max=4096"`
		ScreenHeight    int                     `json:"screenHeight" validate:"min=0,max=4096"`
		Orientation     string                  `json:"orientation" validate:"oneof=landscape portrait"`
		DisplayType     string                  `json:"displayType" validate:"oneof=bw color"`
		Grayscale       int                     `json:"grayscale"`
		DisplayMode     string                  `json:"displayMode" validate:"oneof=static playlist mixup"`
		Screen          string                  `json:"screen"`
		PlaylistID      *uuid.UUID              `json:"playlistId"`
		MixupID         *uuid.UUID              `json:"mixupId"`
		RefreshSchedule *models.RefreshSchedule `json:"refreshSchedule"`
		Timezone        string                  `json:"timezone"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name != "" {
		device.Name = req.Name
	}
	if req.ScreenWidth > 0 {
		device.ScreenWidth = req.ScreenWidth
	}
	if req.ScreenHeight > 0 {
		device.ScreenHeight = req.ScreenHeight
	}
	if req.Orientation != "" {
		device.Orientation = models.Orientation(req.Orientation)
	}
	if req.DisplayType != "" {
		device.DisplayType = models.DisplayType(req.DisplayType)
	}
	switch req.Grayscale {
	case 0:
	case 2, 4, 16:
		device.Grayscale = req.Grayscale
	default:
		s.respondError(w, http.StatusBadRequest, "grayscale must be one of 2, 4, 16")
		return
	}
	if req.DisplayMode != "" {
		device.DisplayMode = models.DisplayMode(req.DisplayMode)
	}
	if req.Screen != "" {
		device.Screen = req.Screen
	}
	if req.PlaylistID != nil {
		device.PlaylistID = req.PlaylistID
	}
	if req.MixupID != nil {
		device.MixupID = req.MixupID
	}
	if req.RefreshSchedule != nil {
		device.RefreshSchedule = req.RefreshSchedule
	}
	if req.Timezone != "" {
		device.Timezone = req.Timezone
	}

	if err := s.store.UpdateDevice(r.Context(), device); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, device)
}

// HandleDeleteDevice deletes a device
func (s *RESTServer) HandleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}

	if err := s.store.DeleteDevice(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "device not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
