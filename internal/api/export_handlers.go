package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	importservice "github.com/lorelight/lorelight-go/internal/services/import"
)

// handleExportCampaign streams a campaign snapshot. Optional boolean query
// parameters sessions, scenes, and lightConfigs narrow the export; all
// default to true.
func (s *Server) handleExportCampaign(w http.ResponseWriter, r *http.Request) {
	campaign := s.loadOwnCampaign(w, r, chi.URLParam(r, "campaignID"))
	if campaign == nil {
		return
	}

	includeFlag := func(name string) bool {
		value, err := strconv.ParseBool(r.URL.Query().Get(name))
		return err != nil || value
	}

	exported, _, err := s.deps.Export.ExportCampaign(r.Context(), campaign.ID,
		includeFlag("sessions"), includeFlag("scenes"), includeFlag("lightConfigs"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}
	if exported == nil {
		writeError(w, http.StatusNotFound, "campaign not found")
		return
	}
	writeJSON(w, http.StatusOK, exported)
}

type importRequest struct {
	Snapshot         string  `json:"snapshot"`
	Mode             string  `json:"mode"`
	TargetCampaignID *string `json:"targetCampaignId"`
	CampaignName     *string `json:"campaignName"`
	PresetStrategy   string  `json:"presetStrategy"`
}

type importResponse struct {
	CampaignID          string   `json:"campaignId"`
	SessionsCreated     int      `json:"sessionsCreated"`
	ScenesCreated       int      `json:"scenesCreated"`
	BlocksCreated       int      `json:"blocksCreated"`
	NPCsCreated         int      `json:"npcsCreated"`
	LightConfigsCreated int      `json:"lightConfigsCreated"`
	Warnings            []string `json:"warnings"`
}

func (s *Server) handleImportCampaign(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Snapshot == "" {
		writeError(w, http.StatusBadRequest, "snapshot is required")
		return
	}

	options := importservice.ImportOptions{
		Mode:                   importservice.ImportMode(req.Mode),
		TargetCampaignID:       req.TargetCampaignID,
		CampaignName:           req.CampaignName,
		PresetConflictStrategy: importservice.PresetConflictStrategy(req.PresetStrategy),
	}
	if options.Mode == "" {
		options.Mode = importservice.ImportModeCreate
	}

	campaignID, stats, warnings, err := s.deps.Import.ImportCampaign(r.Context(), userID(r), req.Snapshot, options)
	if err != nil {
		writeError(w, http.StatusBadRequest, "import failed: invalid snapshot")
		return
	}
	if campaignID == "" {
		writeError(w, http.StatusNotFound, "target campaign not found")
		return
	}

	if warnings == nil {
		warnings = []string{}
	}
	writeJSON(w, http.StatusCreated, importResponse{
		CampaignID:          campaignID,
		SessionsCreated:     stats.SessionsCreated,
		ScenesCreated:       stats.ScenesCreated,
		BlocksCreated:       stats.BlocksCreated,
		NPCsCreated:         stats.NPCsCreated,
		LightConfigsCreated: stats.LightConfigsCreated,
		Warnings:            warnings,
	})
}
