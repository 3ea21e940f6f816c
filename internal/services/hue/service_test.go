package hue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lorelight/lorelight-go/internal/database/repositories"
	"github.com/lorelight/lorelight-go/pkg/hueapi"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSettingRepo(t *testing.T) *repositories.SettingRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&models.Setting{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return repositories.NewSettingRepository(db)
}

func TestServiceApplyLightConfig_NotConnected(t *testing.T) {
	service := NewService(nil, "", nil)

	cfg := &hueapi.LightConfig{
		Lights: map[string]hueapi.LightState{"1": {On: hueapi.Bool(true)}},
	}
	err := service.ApplyLightConfig(context.Background(), cfg)
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected ErrNotConnected, got %v", err)
	}
}

func TestServiceApplyLightConfig_EmptyConfigWithoutBridge(t *testing.T) {
	service := NewService(nil, "", nil)

	if err := service.ApplyLightConfig(context.Background(), nil); err != nil {
		t.Errorf("Expected nil error for nil config, got %v", err)
	}
	if err := service.ApplyLightConfig(context.Background(), &hueapi.LightConfig{}); err != nil {
		t.Errorf("Expected nil error for empty config, got %v", err)
	}
}

func TestServicePair_PersistsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]hueapi.APIResponse{
			{Success: map[string]interface{}{"username": "paireduser"}},
		})
	}))
	defer server.Close()

	settingRepo := setupSettingRepo(t)
	service := NewService(server.Client(), "", settingRepo)

	var statusUpdates []Status
	service.SetStatusCallback(func(s Status) {
		statusUpdates = append(statusUpdates, s)
	})

	bridgeHost := strings.TrimPrefix(server.URL, "http://")
	result, err := service.Pair(context.Background(), bridgeHost)
	if err != nil {
		t.Fatalf("Pair failed: %v", err)
	}
	if !result.Success || result.Username != "paireduser" {
		t.Errorf("Unexpected pair result: %+v", result)
	}
	if !service.IsConnected() {
		t.Error("Expected service to be connected after pairing")
	}

	saved, err := settingRepo.FindByKey(context.Background(), SettingBridgeUsername)
	if err != nil || saved == nil || saved.Value != "paireduser" {
		t.Errorf("Expected persisted username, got %+v (err %v)", saved, err)
	}

	if len(statusUpdates) != 1 || !statusUpdates[0].Connected {
		t.Errorf("Expected one connected status update, got %+v", statusUpdates)
	}
}

func TestServiceRestore(t *testing.T) {
	settingRepo := setupSettingRepo(t)
	ctx := context.Background()
	if _, err := settingRepo.Upsert(ctx, SettingBridgeIP, "192.168.1.50"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if _, err := settingRepo.Upsert(ctx, SettingBridgeUsername, "saveduser"); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	service := NewService(nil, "", settingRepo)
	if err := service.Restore(ctx); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if !service.IsConnected() {
		t.Error("Expected service to reconnect from persisted credentials")
	}

	status := service.GetStatus()
	if status.BridgeIP != "192.168.1.50" || status.Username != "saveduser" {
		t.Errorf("Unexpected status: %+v", status)
	}
}

func TestServiceRestore_NoCredentials(t *testing.T) {
	service := NewService(nil, "", setupSettingRepo(t))
	if err := service.Restore(context.Background()); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if service.IsConnected() {
		t.Error("Expected service to stay disconnected without credentials")
	}
}

func TestServiceDisconnect(t *testing.T) {
	settingRepo := setupSettingRepo(t)
	ctx := context.Background()
	service := NewService(nil, "", settingRepo)
	if err := service.Connect(ctx, "192.168.1.50", "user"); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if err := service.Disconnect(ctx); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if service.IsConnected() {
		t.Error("Expected service to be disconnected")
	}

	saved, _ := settingRepo.FindByKey(ctx, SettingBridgeIP)
	if saved != nil {
		t.Error("Expected persisted bridge IP to be cleared")
	}
}
