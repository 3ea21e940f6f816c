package repositories

import (
	"context"

	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
)

// LightConfigRepository handles saved lighting preset data access.
type LightConfigRepository struct {
	db *gorm.DB
}

// NewLightConfigRepository creates a new LightConfigRepository.
func NewLightConfigRepository(db *gorm.DB) *LightConfigRepository {
	return &LightConfigRepository{db: db}
}

// FindByUserID returns all presets owned by a user.
func (r *LightConfigRepository) FindByUserID(ctx context.Context, userID string) ([]models.LightConfig, error) {
	var configs []models.LightConfig
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&configs)
	return configs, result.Error
}

// FindByID returns a preset by ID.
func (r *LightConfigRepository) FindByID(ctx context.Context, id string) (*models.LightConfig, error) {
	var config models.LightConfig
	result := r.db.WithContext(ctx).First(&config, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &config, nil
}

// FindActiveByUserID returns the user's standalone active preset, if any.
func (r *LightConfigRepository) FindActiveByUserID(ctx context.Context, userID string) (*models.LightConfig, error) {
	var config models.LightConfig
	result := r.db.WithContext(ctx).
		First(&config, "user_id = ? AND is_active = ?", userID, true)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &config, nil
}

// Create creates a new preset.
func (r *LightConfigRepository) Create(ctx context.Context, config *models.LightConfig) error {
	if config.ID == "" {
		config.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(config).Error
}

// Update updates an existing preset.
func (r *LightConfigRepository) Update(ctx context.Context, config *models.LightConfig) error {
	return r.db.WithContext(ctx).Save(config).Error
}

// Delete deletes a preset by ID.
func (r *LightConfigRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.LightConfig{}, "id = ?", id).Error
}

// SetActive flags one preset active and clears the flag on the user's other
// presets in a single transaction. Returns the updated preset.
func (r *LightConfigRepository) SetActive(ctx context.Context, id string) (*models.LightConfig, error) {
	var config models.LightConfig
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&config, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.LightConfig{}).
			Where("user_id = ? AND id != ?", config.UserID, id).
			Update("is_active", false).Error; err != nil {
			return err
		}
		config.IsActive = true
		return tx.Save(&config).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &config, nil
}

// ClearActive clears the active flag on all of a user's presets.
func (r *LightConfigRepository) ClearActive(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Model(&models.LightConfig{}).
		Where("user_id = ?", userID).
		Update("is_active", false).Error
}
