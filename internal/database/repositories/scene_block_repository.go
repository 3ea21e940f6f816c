package repositories

import (
	"context"

	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
)

// SceneBlockRepository handles scene content block and NPC data access.
type SceneBlockRepository struct {
	db *gorm.DB
}

// NewSceneBlockRepository creates a new SceneBlockRepository.
func NewSceneBlockRepository(db *gorm.DB) *SceneBlockRepository {
	return &SceneBlockRepository{db: db}
}

// FindBlocksBySceneID returns a scene's content blocks in order.
func (r *SceneBlockRepository) FindBlocksBySceneID(ctx context.Context, sceneID string) ([]models.SceneBlock, error) {
	var blocks []models.SceneBlock
	result := r.db.WithContext(ctx).
		Where("scene_id = ?", sceneID).
		Order("order_index ASC").
		Find(&blocks)
	return blocks, result.Error
}

// FindBlockByID returns a content block by ID, or nil when not found.
func (r *SceneBlockRepository) FindBlockByID(ctx context.Context, id string) (*models.SceneBlock, error) {
	var block models.SceneBlock
	result := r.db.WithContext(ctx).First(&block, "id = ?", id)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &block, nil
}

// CreateBlock creates a new content block.
func (r *SceneBlockRepository) CreateBlock(ctx context.Context, block *models.SceneBlock) error {
	if block.ID == "" {
		block.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(block).Error
}

// UpdateBlock updates an existing content block.
func (r *SceneBlockRepository) UpdateBlock(ctx context.Context, block *models.SceneBlock) error {
	return r.db.WithContext(ctx).Save(block).Error
}

// DeleteBlock deletes a content block by ID.
func (r *SceneBlockRepository) DeleteBlock(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.SceneBlock{}, "id = ?", id).Error
}

// ReorderBlocks updates the order_index of the given blocks in a transaction.
func (r *SceneBlockRepository) ReorderBlocks(ctx context.Context, blockIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range blockIDs {
			if err := tx.Model(&models.SceneBlock{}).
				Where("id = ?", id).
				Update("order_index", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindNPCsBySceneID returns a scene's NPC references in order.
func (r *SceneBlockRepository) FindNPCsBySceneID(ctx context.Context, sceneID string) ([]models.SceneNPC, error) {
	var npcs []models.SceneNPC
	result := r.db.WithContext(ctx).
		Where("scene_id = ?", sceneID).
		Order("order_index ASC").
		Find(&npcs)
	return npcs, result.Error
}

// FindNPCByID returns an NPC reference by ID, or nil when not found.
func (r *SceneBlockRepository) FindNPCByID(ctx context.Context, id string) (*models.SceneNPC, error) {
	var npc models.SceneNPC
	result := r.db.WithContext(ctx).First(&npc, "id = ?", id)
	if result.Error == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if result.Error != nil {
		return nil, result.Error
	}
	return &npc, nil
}

// CreateNPC creates a new NPC reference.
func (r *SceneBlockRepository) CreateNPC(ctx context.Context, npc *models.SceneNPC) error {
	if npc.ID == "" {
		npc.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(npc).Error
}

// UpdateNPC updates an existing NPC reference.
func (r *SceneBlockRepository) UpdateNPC(ctx context.Context, npc *models.SceneNPC) error {
	return r.db.WithContext(ctx).Save(npc).Error
}

// DeleteNPC deletes an NPC reference by ID.
func (r *SceneBlockRepository) DeleteNPC(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.SceneNPC{}, "id = ?", id).Error
}
