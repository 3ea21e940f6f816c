package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lorelight/lorelight-go/internal/services/scene"
)

type sceneRequest struct {
	CampaignID  string  `json:"campaignId"`
	Name        string  `json:"name"`
	SceneType   *string `json:"sceneType"`
	AudioConfig *string `json:"audioConfig"`
	LightConfig *string `json:"lightConfig"`
}

func (s *Server) handleListScenes(w http.ResponseWriter, r *http.Request) {
	campaign := s.loadOwnCampaign(w, r, chi.URLParam(r, "campaignID"))
	if campaign == nil {
		return
	}
	scenes, err := s.deps.Scenes.FindByCampaignID(r.Context(), campaign.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list scenes")
		return
	}
	writeJSON(w, http.StatusOK, scenes)
}

func (s *Server) handleCreateScene(w http.ResponseWriter, r *http.Request) {
	var req sceneRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CampaignID == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "campaignId and name are required")
		return
	}
	if s.loadOwnCampaign(w, r, req.CampaignID) == nil {
		return
	}

	record := &models.Scene{
		CampaignID:  req.CampaignID,
		Name:        req.Name,
		AudioConfig: req.AudioConfig,
		LightConfig: req.LightConfig,
	}
	if req.SceneType != nil {
		record.SceneType = *req.SceneType
	}
	if err := s.deps.Scenes.Create(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create scene")
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

// loadOwnScene fetches a scene and verifies campaign ownership.
func (s *Server) loadOwnScene(w http.ResponseWriter, r *http.Request, id string) *models.Scene {
	record, err := s.deps.Scenes.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load scene")
		return nil
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "scene not found")
		return nil
	}
	if s.loadOwnCampaign(w, r, record.CampaignID) == nil {
		return nil
	}
	return record
}

func (s *Server) handleGetScene(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnScene(w, r, chi.URLParam(r, "sceneID"))
	if record == nil {
		return
	}
	_ = s.deps.Scenes.TouchLastViewed(r.Context(), record.ID)
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleUpdateScene(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnScene(w, r, chi.URLParam(r, "sceneID"))
	if record == nil {
		return
	}

	var req sceneRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name != "" {
		record.Name = req.Name
	}
	if req.SceneType != nil {
		record.SceneType = *req.SceneType
	}
	if req.AudioConfig != nil {
		record.AudioConfig = req.AudioConfig
	}
	if req.LightConfig != nil {
		record.LightConfig = req.LightConfig
	}

	if err := s.deps.Scenes.Update(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update scene")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteScene(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnScene(w, r, chi.URLParam(r, "sceneID"))
	if record == nil {
		return
	}
	if err := s.deps.Scenes.Delete(r.Context(), record.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete scene")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleActivateScene(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnScene(w, r, chi.URLParam(r, "sceneID"))
	if record == nil {
		return
	}

	updated, err := s.deps.Orchestrator.ActivateScene(r.Context(), record.ID)
	if err != nil {
		if errors.Is(err, scene.ErrSceneNotFound) {
			writeError(w, http.StatusNotFound, "scene not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to activate scene")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeactivateScene(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnScene(w, r, chi.URLParam(r, "sceneID"))
	if record == nil {
		return
	}

	updated, err := s.deps.Orchestrator.DeactivateScene(r.Context(), record.ID)
	if err != nil {
		if errors.Is(err, scene.ErrSceneNotFound) {
			writeError(w, http.StatusNotFound, "scene not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to deactivate scene")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleFavoriteScene(w http.ResponseWriter, r *http.Request) {
	record := s.loadOwnScene(w, r, chi.URLParam(r, "sceneID"))
	if record == nil {
		return
	}

	record.IsFavorite = !record.IsFavorite
	if err := s.deps.Scenes.Update(r.Context(), record); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update scene")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleReorderScenes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SceneIDs []string `json:"sceneIds"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.SceneIDs) == 0 {
		writeError(w, http.StatusBadRequest, "sceneIds is required")
		return
	}

	// Every submitted scene must belong to the caller before any index moves.
	for _, id := range req.SceneIDs {
		if s.loadOwnScene(w, r, id) == nil {
			return
		}
	}

	if err := s.deps.Scenes.Reorder(r.Context(), req.SceneIDs); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reorder scenes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"reordered": true})
}
