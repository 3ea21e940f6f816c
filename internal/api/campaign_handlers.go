package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorelight/lorelight-go/internal/database/models"
)

type campaignRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (s *Server) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.deps.Campaigns.FindByUserID(r.Context(), userID(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list campaigns")
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	draft := models.Campaign{
		UserID:      userID(r),
		Name:        req.Name,
		Description: req.Description,
	}
	created, err := s.deps.CampaignStore.Create(r.Context(), draft,
		func(ctx context.Context, draft models.Campaign) (models.Campaign, error) {
			record := draft
			if err := s.deps.Campaigns.Create(ctx, &record); err != nil {
				return models.Campaign{}, err
			}
			return record, nil
		})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create campaign: "+s.deps.CampaignStore.LastError())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// loadOwnCampaign fetches a campaign and verifies the requester owns it.
// Writes the error response and returns nil when the caller should stop.
func (s *Server) loadOwnCampaign(w http.ResponseWriter, r *http.Request, id string) *models.Campaign {
	campaign, err := s.deps.Campaigns.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load campaign")
		return nil
	}
	if campaign == nil || campaign.UserID != userID(r) {
		writeError(w, http.StatusNotFound, "campaign not found")
		return nil
	}
	return campaign
}

func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	campaign := s.loadOwnCampaign(w, r, chi.URLParam(r, "campaignID"))
	if campaign == nil {
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (s *Server) handleUpdateCampaign(w http.ResponseWriter, r *http.Request) {
	campaign := s.loadOwnCampaign(w, r, chi.URLParam(r, "campaignID"))
	if campaign == nil {
		return
	}

	var req campaignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	patch := func(c models.Campaign) models.Campaign {
		if req.Name != "" {
			c.Name = req.Name
		}
		if req.Description != nil {
			c.Description = req.Description
		}
		return c
	}

	// Seed the mirror with the loaded record so the patch has a snapshot to
	// roll back to if the write fails.
	s.deps.CampaignStore.Insert(*campaign)
	updated, err := s.deps.CampaignStore.Update(r.Context(), campaign.ID, patch,
		func(ctx context.Context) (models.Campaign, error) {
			record := patch(*campaign)
			if err := s.deps.Campaigns.Update(ctx, &record); err != nil {
				return models.Campaign{}, err
			}
			return record, nil
		})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update campaign: "+s.deps.CampaignStore.LastError())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCampaign(w http.ResponseWriter, r *http.Request) {
	campaign := s.loadOwnCampaign(w, r, chi.URLParam(r, "campaignID"))
	if campaign == nil {
		return
	}
	s.deps.CampaignStore.Insert(*campaign)
	err := s.deps.CampaignStore.Delete(r.Context(), campaign.ID, func(ctx context.Context) error {
		return s.deps.Campaigns.Delete(ctx, campaign.ID)
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete campaign: "+s.deps.CampaignStore.LastError())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
