package export

import (
	"context"
	"testing"

	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lorelight/lorelight-go/internal/services/testutil"
)

func setupService(t *testing.T) (*Service, *testutil.TestDB, func()) {
	t.Helper()
	tdb, cleanup := testutil.SetupTestDB(t)
	svc := NewService(tdb.CampaignRepo, tdb.SessionRepo, tdb.SceneRepo, tdb.BlockRepo, tdb.LightRepo, "test")
	return svc, tdb, cleanup
}

func seedCampaign(t *testing.T, tdb *testutil.TestDB) *models.Campaign {
	t.Helper()
	ctx := context.Background()

	user := &models.User{Email: testutil.UniqueCampaignName("gm") + "@example.com"}
	if err := tdb.UserRepo.Create(ctx, user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	campaign := &models.Campaign{UserID: user.ID, Name: "Curse of Strahd"}
	if err := tdb.CampaignRepo.Create(ctx, campaign); err != nil {
		t.Fatalf("Failed to create campaign: %v", err)
	}

	session := &models.Session{CampaignID: campaign.ID, Title: "Session Zero"}
	if err := tdb.SessionRepo.Create(ctx, session); err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	audioConfig := `{"audioId":"track-1","volume":0.8}`
	scene := &models.Scene{
		CampaignID:  campaign.ID,
		Name:        "Death House",
		SceneType:   "combat",
		AudioConfig: &audioConfig,
		IsFavorite:  true,
	}
	if err := tdb.SceneRepo.Create(ctx, scene); err != nil {
		t.Fatalf("Failed to create scene: %v", err)
	}

	block := &models.SceneBlock{SceneID: scene.ID, BlockType: "text", Content: "Read-aloud intro"}
	if err := tdb.BlockRepo.CreateBlock(ctx, block); err != nil {
		t.Fatalf("Failed to create block: %v", err)
	}
	npc := &models.SceneNPC{SceneID: scene.ID, Name: "Rose Durst"}
	if err := tdb.BlockRepo.CreateNPC(ctx, npc); err != nil {
		t.Fatalf("Failed to create npc: %v", err)
	}

	preset := &models.LightConfig{UserID: user.ID, Name: "Dungeon Gloom", Config: `{"groups":{}}`}
	if err := tdb.LightRepo.Create(ctx, preset); err != nil {
		t.Fatalf("Failed to create light config: %v", err)
	}

	return campaign
}

func TestExportCampaign_NotFound(t *testing.T) {
	svc, _, cleanup := setupService(t)
	defer cleanup()

	exported, stats, err := svc.ExportCampaign(context.Background(), "nope", true, true, true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if exported != nil || stats != nil {
		t.Error("Expected nil result for missing campaign")
	}
}

func TestExportCampaign_FullSnapshot(t *testing.T) {
	svc, tdb, cleanup := setupService(t)
	defer cleanup()
	campaign := seedCampaign(t, tdb)

	exported, stats, err := svc.ExportCampaign(context.Background(), campaign.ID, true, true, true)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if exported == nil {
		t.Fatal("Expected exported campaign")
	}

	if exported.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", exported.Version)
	}
	if exported.Metadata == nil || exported.Metadata.LorelightVersion != "test" {
		t.Error("Expected metadata with app version")
	}
	if exported.GetCampaignName() != "Curse of Strahd" {
		t.Errorf("Unexpected campaign name: %s", exported.GetCampaignName())
	}

	if stats.SessionsCount != 1 || len(exported.Sessions) != 1 {
		t.Errorf("Expected 1 session, got %d", stats.SessionsCount)
	}
	if stats.ScenesCount != 1 || len(exported.Scenes) != 1 {
		t.Fatalf("Expected 1 scene, got %d", stats.ScenesCount)
	}
	scene := exported.Scenes[0]
	if scene.SceneType != "combat" || !scene.IsFavorite {
		t.Error("Scene attributes not exported")
	}
	if scene.AudioConfig == nil {
		t.Error("Expected audio config to be exported verbatim")
	}
	if stats.BlocksCount != 1 || len(scene.Blocks) != 1 {
		t.Errorf("Expected 1 block, got %d", stats.BlocksCount)
	}
	if stats.NPCsCount != 1 || len(scene.NPCs) != 1 {
		t.Errorf("Expected 1 npc, got %d", stats.NPCsCount)
	}
	if stats.LightConfigsCount != 1 || len(exported.LightConfigs) != 1 {
		t.Errorf("Expected 1 light config, got %d", stats.LightConfigsCount)
	}
}

func TestExportCampaign_RespectsIncludeFlags(t *testing.T) {
	svc, tdb, cleanup := setupService(t)
	defer cleanup()
	campaign := seedCampaign(t, tdb)

	exported, stats, err := svc.ExportCampaign(context.Background(), campaign.ID, false, false, false)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(exported.Sessions) != 0 || len(exported.Scenes) != 0 || len(exported.LightConfigs) != 0 {
		t.Error("Expected empty export with all include flags off")
	}
	if stats.SessionsCount != 0 || stats.ScenesCount != 0 {
		t.Error("Expected zero stats")
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	svc, tdb, cleanup := setupService(t)
	defer cleanup()
	campaign := seedCampaign(t, tdb)

	exported, _, err := svc.ExportCampaign(context.Background(), campaign.ID, true, true, true)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	jsonContent, err := exported.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	parsed, err := ParseExportedCampaign(jsonContent)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if parsed.GetCampaignName() != exported.GetCampaignName() {
		t.Error("Campaign name lost in round trip")
	}
	if len(parsed.Scenes) != len(exported.Scenes) {
		t.Error("Scenes lost in round trip")
	}
}
