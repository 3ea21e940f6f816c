package repositories

import (
	"context"

	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
)

// SessionRepository handles session data access.
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// FindByCampaignID returns all sessions in a campaign, newest first.
func (r *SessionRepository) FindByCampaignID(ctx context.Context, campaignID string) ([]models.Session, error) {
	var sessions []models.Session
	result := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("date DESC, created_at DESC").
		Find(&sessions)
	return sessions, result.Error
}

// FindByID returns a session by ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	result := r.db.WithContext(ctx).First(&session, "id = ?", id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}
	return &session, nil
}

// Create creates a new session.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = cuid.New()
	}
	return r.db.WithContext(ctx).Create(session).Error
}

// Update updates an existing session.
func (r *SessionRepository) Update(ctx context.Context, session *models.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// Delete deletes a session by ID.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", id).Error
}

// SetActive flags one session active and demotes any active campaign sibling
// back to "planning" in a single transaction. Returns the updated session.
func (r *SessionRepository) SetActive(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Session{}).
			Where("campaign_id = ? AND id != ? AND status = ?",
				session.CampaignID, id, models.SessionStatusActive).
			Update("status", models.SessionStatusPlanning).Error; err != nil {
			return err
		}
		status := models.SessionStatusActive
		session.Status = &status
		return tx.Save(&session).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// CountActiveByCampaignID returns how many sessions in a campaign are active.
func (r *SessionRepository) CountActiveByCampaignID(ctx context.Context, campaignID string) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("campaign_id = ? AND status = ?", campaignID, models.SessionStatusActive).
		Count(&count)
	return count, result.Error
}
