// Package testutil provides shared test utilities for integration tests.
package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lucsky/cuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lorelight/lorelight-go/internal/database/repositories"
)

// TestDB holds the test database and repositories.
type TestDB struct {
	DB           *gorm.DB
	UserRepo     *repositories.UserRepository
	CampaignRepo *repositories.CampaignRepository
	SessionRepo  *repositories.SessionRepository
	SceneRepo    *repositories.SceneRepository
	AudioRepo    *repositories.AudioRepository
	LightRepo    *repositories.LightConfigRepository
	BlockRepo    *repositories.SceneBlockRepository
	SettingRepo  *repositories.SettingRepository
}

// SetupTestDB creates an in-memory SQLite database for testing.
// It returns a TestDB with all repositories initialized and a cleanup function.
func SetupTestDB(t *testing.T) (*TestDB, func()) {
	t.Helper()

	// Create in-memory SQLite database
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	// Auto-migrate all models
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	// Create repositories
	testDB := &TestDB{
		DB:           db,
		UserRepo:     repositories.NewUserRepository(db),
		CampaignRepo: repositories.NewCampaignRepository(db),
		SessionRepo:  repositories.NewSessionRepository(db),
		SceneRepo:    repositories.NewSceneRepository(db),
		AudioRepo:    repositories.NewAudioRepository(db),
		LightRepo:    repositories.NewLightConfigRepository(db),
		BlockRepo:    repositories.NewSceneBlockRepository(db),
		SettingRepo:  repositories.NewSettingRepository(db),
	}

	// Cleanup function - close the database connection
	cleanup := func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	}

	return testDB, cleanup
}

// UniqueCampaignName generates a unique campaign name for testing.
// This ensures tests don't conflict with each other.
func UniqueCampaignName(prefix string) string {
	return prefix + "-" + cuid.New()
}

// UniqueSceneName generates a unique scene name for testing.
func UniqueSceneName(prefix string) string {
	return prefix + "-" + cuid.New()[:8]
}
