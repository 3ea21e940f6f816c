package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lorelight/lorelight-go/internal/services/hue"
	"github.com/lorelight/lorelight-go/internal/services/pubsub"
)

type lightConfigRequest struct {
	Name   string  `json:"name"`
	Config *string `json:"config"`
}

func (s *Server) handleListLightConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.deps.LightConfigs.FindByUserID(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list light configs")
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

func (s *Server) handleCreateLightConfig(w http.ResponseWriter, r *http.Request) {
	var req lightConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" || req.Config == nil {
		writeError(w, http.StatusBadRequest, "name and config are required")
		return
	}

	record := &models.LightConfig{
		UserID: userID(r),
		Name:   req.Name,
		Config: *req.Config,
	}
	if _, err := record.ParseConfig(); err != nil {
		writeError(w, http.StatusBadRequest, "config is not valid JSON")
		return
	}
	if err := s.deps.LightConfigs.Create(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create light config")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (s *Server) loadOwnLightConfig(w http.ResponseWriter, r *http.Request, id string) *models.LightConfig {
	record, err := s.deps.LightConfigs.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load light config")
		return nil
	}
	if record == nil || record.UserID != userID(r) {
		writeError(w, http.StatusNotFound, "light config not found")
		return nil
	}
	return record
}

func (s *Server) handleGetLightConfig(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnLightConfig(w, r, chi.URLParam(r, "configID"))
	if record == nil {
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleUpdateLightConfig(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnLightConfig(w, r, chi.URLParam(r, "configID"))
	if record == nil {
		return
	}

	var req lightConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != "" {
		record.Name = req.Name
	}
	if req.Config != nil {
		record.Config = *req.Config
		if _, err := record.ParseConfig(); err != nil {
			writeError(w, http.StatusBadRequest, "config is not valid JSON")
			return
		}
	}

	if err := s.deps.LightConfigs.Update(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update light config")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteLightConfig(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnLightConfig(w, r, chi.URLParam(r, "configID"))
	if record == nil {
		return
	}
	if err := s.deps.LightConfigs.Delete(r.Context(), record.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete light config")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleApplyLightConfig marks a preset active and pushes it to the bridge.
// A disconnected bridge does not fail the request; the preset still becomes
// the standalone gradient source.
func (s *Server) handleApplyLightConfig(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnLightConfig(w, r, chi.URLParam(r, "configID"))
	if record == nil {
		return
	}

	updated, err := s.deps.LightConfigs.SetActive(r.Context(), record.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to apply light config")
		return
	}
	if updated == nil {
		writeError(w, http.StatusNotFound, "light config not found")
		return
	}

	cfg, err := updated.ParseConfig()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "stored config is corrupt")
		return
	}

	if err := s.deps.Hue.ApplyLightConfig(r.Context(), cfg); err != nil {
		if !errors.Is(err, hue.ErrNotConnected) {
			s.deps.Metrics.LightApplyFailures.Inc()
		}
		log.Printf("Failed to push light config %s to bridge: %v", updated.ID, err)
	}

	s.deps.Ambience.SetStandalone(cfg)
	if s.deps.PubSub != nil {
		s.deps.PubSub.PublishAll(pubsub.TopicLightConfigChanged, updated)
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleClearLightConfig(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.LightConfigs.ClearActive(r.Context(), userID(r)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear light config")
		return
	}

	s.deps.Ambience.SetStandalone(nil)
	if s.deps.PubSub != nil {
		s.deps.PubSub.PublishAll(pubsub.TopicLightConfigChanged, nil)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}
