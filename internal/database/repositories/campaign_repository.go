// Package repositories provides data access layer implementations.
package repositories

import (
	"context"

	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
)

// CampaignRepository handles campaign data access.
type CampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates a new CampaignRepository.
func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// FindByUserID returns all campaigns owned by a user.
func (r *CampaignRepository) FindByUserID(ctx context.Context, userID string) ([]models.Campaign, error) {
	var campaigns []models.Campaign
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&campaigns)
	return campaigns, result.Error
}

// FindByID returns a campaign by ID.
func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	result := r.db.WithContext(ctx).First(&campaign, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &campaign, nil
}

// Create creates a new campaign.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(campaign).Error
}

// Update updates an existing campaign.
func (r *CampaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	return r.db.WithContext(ctx).Save(campaign).Error
}

// Delete deletes a campaign and its children in a transaction.
func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var sceneIDs []string
		if err := tx.Model(&models.Scene{}).
			Where("campaign_id = ?", id).
			Pluck("id", &sceneIDs).Error; err != nil {
			return err
		}
		if len(sceneIDs) > 0 {
			if err := tx.Delete(&models.SceneBlock{}, "scene_id IN ?", sceneIDs).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.SceneNPC{}, "scene_id IN ?", sceneIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Scene{}, "campaign_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Session{}, "campaign_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Campaign{}, "id = ?", id).Error
	})
}

// CountSessions returns the number of sessions in a campaign.
func (r *CampaignRepository) CountSessions(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("campaign_id = ?", campaignID).
		Count(&count)
	return count, result.Error
}

// CountScenes returns the number of scenes in a campaign.
func (r *CampaignRepository) CountScenes(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Scene{}).
		Where("campaign_id = ?", campaignID).
		Count(&count)
	return count, result.Error
}
