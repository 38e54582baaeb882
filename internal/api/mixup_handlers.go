package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eink-server/eink-display-server/internal/models"
	"github.com/eink-server/eink-display-server/internal/storage"
)

// ========== Mixup handlers ==========

type mixupRequest struct {
	Name    string   `json:"name" validate:"required,max=100"`
	Screens []string `json:"screens" validate:"required,min=1"`
}

// HandleListMixups lists mixups
func (s *RESTServer) HandleListMixups(w http.ResponseWriter, r *http.Request) {
	limit, offset := listParams(r)

	mixups, total, err := s.store.ListMixups(r.Context(), limit, offset)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"mixups": mixups,
		"total":  total,
	})
}

// HandleCreateMixup creates a mixup
func (s *RESTServer) HandleCreateMixup(w http.ResponseWriter, r *http.Request) {
	var req mixupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	mixup := &models.Mixup{
		Name:    req.Name,
		Screens: models.StringList(req.Screens),
	}
	mixup.ID = uuid.New()

	if err := s.store.CreateMixup(r.Context(), mixup); err != nil {
		if err == storage.ErrDuplicateKey {
			s.respondError(w, http.StatusConflict, "mixup already exists")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusCreated, mixup)
}

// HandleGetMixup gets a mixup
func (s *RESTServer) HandleGetMixup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid mixup id")
		return
	}

	mixup, err := s.store.GetMixup(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "mixup not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, mixup)
}

// HandleUpdateMixup updates a mixup
func (s *RESTServer) HandleUpdateMixup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid mixup id")
		return
	}

	mixup, err := s.store.GetMixup(r.Context(), id)
	if err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "mixup not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req mixupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validator.Validate(req); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	mixup.Name = req.Name
	mixup.Screens = models.StringList(req.Screens)

	if err := s.store.UpdateMixup(r.Context(), mixup); err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, mixup)
}

// HandleDeleteMixup deletes a mixup
func (s *RESTServer) HandleDeleteMixup(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid mixup id")
		return
	}

	if err := s.store.DeleteMixup(r.Context(), id); err != nil {
		if err == storage.ErrNotFound {
			s.respondError(w, http.StatusNotFound, "mixup not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
