package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lorelight/lorelight-go/internal/store"
)

type sessionRequest struct {
	CampaignID  string     `json:"campaignId"`
	Title       string     `json:"title"`
	Date        *time.Time `json:"date"`
	Description *string    `json:"description"`
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	campaign := s.loadOwnCampaign(w, r, chi.URLParam(r, "campaignID"))
	if campaign == nil {
		return
	}
	sessions, err := s.deps.Sessions.FindByCampaignID(r.Context(), campaign.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CampaignID == "" || req.Title == "" {
		writeError(w, http.StatusBadRequest, "campaignId and title are required")
		return
	}
	if s.loadOwnCampaign(w, r, req.CampaignID) == nil {
		return
	}

	session := &models.Session{
		CampaignID:  req.CampaignID,
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
	}
	if err := s.deps.Sessions.Create(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// loadOwnSession fetches a session and verifies campaign ownership.
func (s *Server) loadOwnSession(w http.ResponseWriter, r *http.Request, id string) *models.Session {
	session, err := s.deps.Sessions.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return nil
	}
	if session == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return nil
	}
	if s.loadOwnCampaign(w, r, session.CampaignID) == nil {
		return nil
	}
	return session
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session := s.loadOwnSession(w, r, chi.URLParam(r, "sessionID"))
	if session == nil {
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	session := s.loadOwnSession(w, r, chi.URLParam(r, "sessionID"))
	if session == nil {
		return
	}

	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title != "" {
		session.Title = req.Title
	}
	if req.Date != nil {
		session.Date = req.Date
	}
	if req.Description != nil {
		session.Description = req.Description
	}

	if err := s.deps.Sessions.Update(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update session")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	session := s.loadOwnSession(w, r, chi.URLParam(r, "sessionID"))
	if session == nil {
		return
	}
	if err := s.deps.Sessions.Delete(r.Context(), session.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleActivateSession(w http.ResponseWriter, r *http.Request) {
	session := s.loadOwnSession(w, r, chi.URLParam(r, "sessionID"))
	if session == nil {
		return
	}

	// Seed the mirror with the campaign's sessions so displaced siblings are
	// present to demote.
	if siblings, err := s.deps.Sessions.FindByCampaignID(r.Context(), session.CampaignID); err == nil {
		for _, sibling := range siblings {
			s.deps.SessionStore.Insert(sibling)
		}
	}

	// The store demotes displaced siblings to planning in the same locked
	// update that records the activation, mirroring the repository transaction.
	updated, err := s.deps.SessionStore.SetActive(r.Context(), func(ctx context.Context) (*models.Session, error) {
		return s.deps.Sessions.SetActive(ctx, session.ID)
	})
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to activate session: "+s.deps.SessionStore.LastError())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
