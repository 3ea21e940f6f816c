// Package importservice provides campaign import functionality.
package importservice

import (
	"context"
	"strconv"
	"time"

	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lorelight/lorelight-go/internal/database/repositories"
	"github.com/lorelight/lorelight-go/internal/services/export"
)

// ImportMode determines how to handle the import.
type ImportMode string

const (
	ImportModeCreate ImportMode = "CREATE"
	ImportModeMerge  ImportMode = "MERGE"
)

// PresetConflictStrategy determines how to handle lighting preset conflicts.
type PresetConflictStrategy string

const (
	PresetConflictSkip   PresetConflictStrategy = "SKIP"
	PresetConflictRename PresetConflictStrategy = "RENAME"
)

// ImportStats contains statistics about an import.
type ImportStats struct {
	SessionsCreated     int
	ScenesCreated       int
	BlocksCreated       int
	NPCsCreated         int
	LightConfigsCreated int
}

// ImportOptions configures the import behavior.
type ImportOptions struct {
	Mode                   ImportMode
	TargetCampaignID       *string
	CampaignName           *string
	PresetConflictStrategy PresetConflictStrategy
}

// Service handles campaign import operations.
type Service struct {
	campaignRepo *repositories.CampaignRepository
	sessionRepo  *repositories.SessionRepository
	sceneRepo    *repositories.SceneRepository
	blockRepo    *repositories.SceneBlockRepository
	lightRepo    *repositories.LightConfigRepository
}

// NewService creates a new import service.
func NewService(
	campaignRepo *repositories.CampaignRepository,
	sessionRepo *repositories.SessionRepository,
	sceneRepo *repositories.SceneRepository,
	blockRepo *repositories.SceneBlockRepository,
	lightRepo *repositories.LightConfigRepository,
) *Service {
	return &Service{
		campaignRepo: campaignRepo,
		sessionRepo:  sessionRepo,
		sceneRepo:    sceneRepo,
		blockRepo:    blockRepo,
		lightRepo:    lightRepo,
	}
}

// ImportCampaign imports a campaign snapshot for the given user. Every
// record is created with a fresh ID; refIds from the snapshot never survive
// the import. Returns the campaign ID, stats, and non-fatal warnings.
func (s *Service) ImportCampaign(ctx context.Context, userID, jsonContent string, options ImportOptions) (string, *ImportStats, []string, error) {
	exported, err := export.ParseExportedCampaign(jsonContent)
	if err != nil {
		return "", nil, nil, err
	}

	stats := &ImportStats{}
	var warnings []string

	// Determine the target campaign
	var campaignID string

	switch options.Mode {
	case ImportModeMerge:
		if options.TargetCampaignID == nil {
			return "", nil, nil, nil // No target campaign specified
		}
		existing, err := s.campaignRepo.FindByID(ctx, *options.TargetCampaignID)
		if err != nil {
			return "", nil, nil, err
		}
		if existing == nil || existing.UserID != userID {
			return "", nil, nil, nil // Campaign not found
		}
		campaignID = existing.ID

	default:
		campaignName := exported.GetCampaignName()
		if options.CampaignName != nil {
			campaignName = *options.CampaignName
		}
		if campaignName == "" {
			campaignName = "Imported Campaign"
		}

		campaign := &models.Campaign{
			UserID:      userID,
			Name:        campaignName,
			Description: exported.GetCampaignDescription(),
		}
		if err := s.campaignRepo.Create(ctx, campaign); err != nil {
			return "", nil, nil, err
		}
		campaignID = campaign.ID
	}

	// Import sessions
	for _, session := range exported.Sessions {
		newSession := &models.Session{
			CampaignID:  campaignID,
			Title:       session.Title,
			Description: session.Description,
			Status:      session.Status,
		}
		if session.Date != nil {
			if date, err := time.Parse(time.RFC3339, *session.Date); err == nil {
				newSession.Date = &date
			} else {
				warnings = append(warnings, "Ignoring unparseable date on session '"+session.Title+"'")
			}
		}
		if err := s.sessionRepo.Create(ctx, newSession); err != nil {
			return "", nil, nil, err
		}
		stats.SessionsCreated++
	}

	// Import scenes with their blocks and NPCs
	for _, scene := range exported.Scenes {
		newScene := &models.Scene{
			CampaignID:  campaignID,
			Name:        scene.Name,
			SceneType:   scene.SceneType,
			AudioConfig: scene.AudioConfig,
			LightConfig: scene.LightConfig,
			OrderIndex:  scene.OrderIndex,
			IsFavorite:  scene.IsFavorite,
		}
		if err := s.sceneRepo.Create(ctx, newScene); err != nil {
			return "", nil, nil, err
		}
		stats.ScenesCreated++

		for _, block := range scene.Blocks {
			newBlock := &models.SceneBlock{
				SceneID:    newScene.ID,
				BlockType:  block.BlockType,
				Content:    block.Content,
				OrderIndex: block.OrderIndex,
				Tags:       block.Tags,
			}
			if err := s.blockRepo.CreateBlock(ctx, newBlock); err != nil {
				return "", nil, nil, err
			}
			stats.BlocksCreated++
		}

		for _, npc := range scene.NPCs {
			newNPC := &models.SceneNPC{
				SceneID:    newScene.ID,
				Name:       npc.Name,
				Role:       npc.Role,
				Notes:      npc.Notes,
				OrderIndex: npc.OrderIndex,
			}
			if err := s.blockRepo.CreateNPC(ctx, newNPC); err != nil {
				return "", nil, nil, err
			}
			stats.NPCsCreated++
		}
	}

	// Import lighting presets, resolving name conflicts per strategy
	if len(exported.LightConfigs) > 0 {
		existing, err := s.lightRepo.FindByUserID(ctx, userID)
		if err != nil {
			return "", nil, nil, err
		}
		existingNames := make(map[string]bool)
		for _, config := range existing {
			existingNames[config.Name] = true
		}

		for _, config := range exported.LightConfigs {
			name := config.Name
			if existingNames[name] {
				switch options.PresetConflictStrategy {
				case PresetConflictRename:
					base := name
					for i := 2; existingNames[name]; i++ {
						name = base + " (" + strconv.Itoa(i) + ")"
					}
				default:
					warnings = append(warnings, "Skipped existing lighting preset: "+name)
					continue
				}
			}

			newConfig := &models.LightConfig{
				UserID: userID,
				Name:   name,
				Config: config.Config,
			}
			if err := s.lightRepo.Create(ctx, newConfig); err != nil {
				return "", nil, nil, err
			}
			existingNames[name] = true
			stats.LightConfigsCreated++
		}
	}

	return campaignID, stats, warnings, nil
}
