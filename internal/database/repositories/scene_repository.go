package repositories

import (
	"context"
	"time"

	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
)

// SceneRepository handles scene data access.
type SceneRepository struct {
	db *gorm.DB
}

// NewSceneRepository creates a new SceneRepository.
func NewSceneRepository(db *gorm.DB) *SceneRepository {
	return &SceneRepository{db: db}
}

// FindByCampaignID returns all scenes in a campaign ordered for display.
func (r *SceneRepository) FindByCampaignID(ctx context.Context, campaignID string) ([]models.Scene, error) {
	var scenes []models.Scene
	result := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("order_index ASC, created_at ASC").
		Find(&scenes)
	return scenes, result.Error
}

// FindByID returns a scene by ID.
func (r *SceneRepository) FindByID(ctx context.Context, id string) (*models.Scene, error) {
	var scene models.Scene
	result := r.db.WithContext(ctx).First(&scene, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &scene, nil
}

// FindActiveByCampaignID returns the active scene in a campaign, if any.
func (r *SceneRepository) FindActiveByCampaignID(ctx context.Context, campaignID string) (*models.Scene, error) {
	var scene models.Scene
	result := r.db.WithContext(ctx).
		First(&scene, "campaign_id = ? AND is_active = ?", campaignID, true)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &scene, nil
}

// Create creates a new scene.
func (r *SceneRepository) Create(ctx context.Context, scene *models.Scene) error {
	if scene.ID == "" {
		scene.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(scene).Error
}

// Update updates an existing scene.
func (r *SceneRepository) Update(ctx context.Context, scene *models.Scene) error {
	return r.db.WithContext(ctx).Save(scene).Error
}

// Delete deletes a scene and its attached blocks and NPCs in a transaction.
func (r *SceneRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.SceneBlock{}, "scene_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.SceneNPC{}, "scene_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Scene{}, "id = ?", id).Error
	})
}

// SetActive flags one scene active and all of its campaign siblings inactive
// in a single transaction, so a crash can never leave two active scenes.
// Returns the updated scene.
func (r *SceneRepository) SetActive(ctx context.Context, id string) (*models.Scene, error) {
	var scene models.Scene
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&scene, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Scene{}).
			Where("campaign_id = ? AND id != ?", scene.CampaignID, id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		now := time.Now()
		scene.IsActive = true
		scene.LastViewedAt = &now
		return tx.Save(&scene).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &scene, nil
}

// SetInactive clears a scene's active flag.
func (r *SceneRepository) SetInactive(ctx context.Context, id string) (*models.Scene, error) {
	var scene models.Scene
	result := r.db.WithContext(ctx).First(&scene, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	scene.IsActive = false
	if err := r.db.WithContext(ctx).Save(&scene).Error; err != nil {
		return nil, err
	}
	return &scene, nil
}

// Reorder updates the order_index of the given scenes in a transaction.
// IDs are applied in slice order.
func (r *SceneRepository) Reorder(ctx context.Context, sceneIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range sceneIDs {
			if err := tx.Model(&models.Scene{}).
				Where("id = ?", id).
				Update("order_index", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// TouchLastViewed records that a scene was opened.
func (r *SceneRepository) TouchLastViewed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&models.Scene{}).
		Where("id = ?", id).
		Update("last_viewed_at", time.Now()).Error
}

// CountActiveByCampaignID returns how many scenes in a campaign are active.
func (r *SceneRepository) CountActiveByCampaignID(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Scene{}).
		Where("campaign_id = ? AND is_active = ?", campaignID, true).
		Count(&count)
	return count, result.Error
}
