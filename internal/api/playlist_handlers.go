package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
	"github.com/eink-server/eink-display-server/internal/storage"
)

// ========== Playlist handlers ==========

type playlistItemRequest struct {
	ScreenID   string `json:"screenId" validate:"required"`
	Duration   int    `json:"duration" validate:"min=1,max=86400"`
	OrderIndex int    `json:"orderIndex" validate:"min=0"`
}

type playlistRequest struct {
	Name        string                `json:"name" validate:"required,max=100"`
	Description string                `json:"description" validate:"max=500"`
	Items       []playlistItemRequest `json:"items"`
}

func (req *playlistRequest) items(playlistID uuid.UUID) []*models.PlaylistItem {
	items := make([]*models.PlaylistItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, &models.PlaylistItem{
			ID:         uuid.New(),
			PlaylistID: playlistID,
			ScreenID:   it.ScreenID,
			Duration:   it.Duration,
			OrderIndex: it.OrderIndex,
		})
	}
	return items
}

// HandleListPlaylists lists playlists
func (s *RESTServer) HandleListPlaylists(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	playlists, total, err := s.store.ListPlaylists(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"playlists": playlists,
		"total":     total,
	})
}

// HandleCreatePlaylist creates a playlist with its items
func (s *RESTServer) HandleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, it := range req.Items {
		if err := s.validator.Validate(it); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	playlist := &models.Playlist{
		Name:        req.Name,
		Description: req.Description,
	}
	playlist.ID = uuid.New()
	playlist.Items = req.items(playlist.ID)

	if err := s.store.CreatePlaylist(r.Context(), playlist); err != nil {
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "playlist already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, playlist)
}

// HandleGetPlaylist gets a playlist with its items
func (s *RESTServer) HandleGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	playlist, err := s.store.GetPlaylist(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "playlist not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, playlist)
}

// HandleUpdatePlaylist updates a playlist and replaces its items
func (s *RESTServer) HandleUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	playlist, err := s.store.GetPlaylist(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "playlist not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, it := range req.Items {
		if err := s.validator.Validate(it); err != nil {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	playlist.Name = req.Name
	playlist.Description = req.Description
	playlist.Items = req.items(playlist.ID)

	if err := s.store.UpdatePlaylist(r.Context(), playlist); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, playlist)
}

// HandleDeletePlaylist deletes a playlist
func (s *RESTServer) HandleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid playlist id")
		return
	}

	if err := s.store.DeletePlaylist(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "playlist not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
