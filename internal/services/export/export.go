// Package export provides campaign export functionality.
package export

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lorelight/lorelight-go/internal/database/repositories"
)

// ExportedCampaign represents a full campaign export.
type ExportedCampaign struct {
	Version      string                `json:"version"`
	Metadata     *ExportMetadata       `json:"metadata,omitempty"`
	Campaign     *ExportCampaignInfo   `json:"campaign,omitempty"`
	Sessions     []ExportedSession     `json:"sessions"`
	Scenes       []ExportedScene       `json:"scenes"`
	LightConfigs []ExportedLightConfig `json:"lightConfigs"`
}

// ExportMetadata contains export metadata.
type ExportMetadata struct {
	ExportedAt       string  `json:"exportedAt"`
	LorelightVersion string  `json:"lorelightVersion"`
	Description      *string `json:"description,omitempty"`
}

// ExportCampaignInfo contains campaign information.
type ExportCampaignInfo struct {
	OriginalID  string  `json:"originalId"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// ExportedSession represents an exported session.
type ExportedSession struct {
	RefID       string  `json:"refId"`
	Title       string  `json:"title"`
	Date        *string `json:"date,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ExportedScene represents an exported scene with its prep content.
type ExportedScene struct {
	RefID       string          `json:"refId"`
	Name        string          `json:"name"`
	SceneType   string          `json:"sceneType"`
	AudioConfig *string         `json:"audioConfig,omitempty"`
	LightConfig *string         `json:"lightConfig,omitempty"`
	OrderIndex  int             `json:"orderIndex"`
	IsFavorite  bool            `json:"isFavorite"`
	Blocks      []ExportedBlock `json:"blocks"`
	NPCs        []ExportedNPC   `json:"npcs"`
}

// ExportedBlock represents an exported scene content block.
type ExportedBlock struct {
	BlockType  string  `json:"blockType"`
	Content    string  `json:"content"`
	OrderIndex int     `json:"orderIndex"`
	Tags       *string `json:"tags,omitempty"`
}

// ExportedNPC represents an exported scene NPC reference.
type ExportedNPC struct {
	Name       string  `json:"name"`
	Role       *string `json:"role,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	OrderIndex int     `json:"orderIndex"`
}

// ExportedLightConfig represents an exported lighting preset.
type ExportedLightConfig struct {
	RefID  string `json:"refId"`
	Name   string `json:"name"`
	Config string `json:"config"`
}

// ExportStats contains statistics about an export.
type ExportStats struct {
	SessionsCount     int
	ScenesCount       int
	BlocksCount       int
	NPCsCount         int
	LightConfigsCount int
}

// Service handles campaign export operations.
type Service struct {
	campaignRepo *repositories.CampaignRepository
	sessionRepo  *repositories.SessionRepository
	sceneRepo    *repositories.SceneRepository
	blockRepo    *repositories.SceneBlockRepository
	lightRepo    *repositories.LightConfigRepository
	version      string
}

// NewService creates a new export service. The version string is recorded in
// export metadata.
func NewService(
	campaignRepo *repositories.CampaignRepository,
	sessionRepo *repositories.SessionRepository,
	sceneRepo *repositories.SceneRepository,
	blockRepo *repositories.SceneBlockRepository,
	lightRepo *repositories.LightConfigRepository,
	version string,
) *Service {
	return &Service{
		campaignRepo: campaignRepo,
		sessionRepo:  sessionRepo,
		sceneRepo:    sceneRepo,
		blockRepo:    blockRepo,
		lightRepo:    lightRepo,
		version:      version,
	}
}

// ExportCampaign exports a campaign to a portable snapshot. Returns nil
// without error when the campaign does not exist. Audio configs are exported
// verbatim; the file IDs they reference belong to the exporting user's
// library and are tolerated as dangling on the importing side.
func (s *Service) ExportCampaign(ctx context.Context, campaignID string, includeSessions, includeScenes, includeLightConfigs bool) (*ExportedCampaign, *ExportStats, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}
	if campaign == nil {
		return nil, nil, nil
	}

	exported := &ExportedCampaign{
		Version: "1.0",
		Metadata: &ExportMetadata{
			ExportedAt:       time.Now().UTC().Format(time.RFC3339),
			LorelightVersion: s.version,
		},
		Campaign: &ExportCampaignInfo{
			OriginalID:  campaign.ID,
			Name:        campaign.Name,
			Description: campaign.Description,
		},
	}

	stats := &ExportStats{}

	if includeSessions {
		sessions, err := s.sessionRepo.FindByCampaignID(ctx, campaignID)
		if err != nil {
			return nil, nil, err
		}
		for _, session := range sessions {
			exportedSession := ExportedSession{
				RefID:       session.ID,
				Title:       session.Title,
				Description: session.Description,
				Status:      session.Status,
			}
			if session.Date != nil {
				date := session.Date.UTC().Format(time.RFC3339)
				exportedSession.Date = &date
			}
			exported.Sessions = append(exported.Sessions, exportedSession)
			stats.SessionsCount++
		}
	}

	if includeScenes {
		scenes, err := s.sceneRepo.FindByCampaignID(ctx, campaignID)
		if err != nil {
			return nil, nil, err
		}
		for _, scene := range scenes {
			exportedScene := ExportedScene{
				RefID:       scene.ID,
				Name:        scene.Name,
				SceneType:   scene.SceneType,
				AudioConfig: scene.AudioConfig,
				LightConfig: scene.LightConfig,
				OrderIndex:  scene.OrderIndex,
				IsFavorite:  scene.IsFavorite,
			}

			blocks, err := s.blockRepo.FindBlocksBySceneID(ctx, scene.ID)
			if err != nil {
				return nil, nil, err
			}
			for _, block := range blocks {
				exportedScene.Blocks = append(exportedScene.Blocks, ExportedBlock{
					BlockType:  block.BlockType,
					Content:    block.Content,
					OrderIndex: block.OrderIndex,
					Tags:       block.Tags,
				})
				stats.BlocksCount++
			}

			npcs, err := s.blockRepo.FindNPCsBySceneID(ctx, scene.ID)
			if err != nil {
				return nil, nil, err
			}
			for _, npc := range npcs {
				exportedScene.NPCs = append(exportedScene.NPCs, ExportedNPC{
					Name:       npc.Name,
					Role:       npc.Role,
					Notes:      npc.Notes,
					OrderIndex: npc.OrderIndex,
				})
				stats.NPCsCount++
			}

			exported.Scenes = append(exported.Scenes, exportedScene)
			stats.ScenesCount++
		}
	}

	if includeLightConfigs {
		configs, err := s.lightRepo.FindByUserID(ctx, campaign.UserID)
		if err != nil {
			return nil, nil, err
		}
		for _, config := range configs {
			exported.LightConfigs = append(exported.LightConfigs, ExportedLightConfig{
				RefID:  config.ID,
				Name:   config.Name,
				Config: config.Config,
			})
			stats.LightConfigsCount++
		}
	}

	return exported, stats, nil
}

// ToJSON converts an exported campaign to JSON string.
func (e *ExportedCampaign) ToJSON() (string, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ParseExportedCampaign parses JSON into an ExportedCampaign.
func ParseExportedCampaign(jsonContent string) (*ExportedCampaign, error) {
	var exported ExportedCampaign
	if err := json.Unmarshal([]byte(jsonContent), &exported); err != nil {
		return nil, err
	}
	return &exported, nil
}

// GetCampaignName returns the campaign name from the exported data.
func (e *ExportedCampaign) GetCampaignName() string {
	if e.Campaign != nil {
		return e.Campaign.Name
	}
	return ""
}

// GetCampaignDescription returns the campaign description from the exported data.
func (e *ExportedCampaign) GetCampaignDescription() *string {
	if e.Campaign != nil {
		return e.Campaign.Description
	}
	return nil
}
