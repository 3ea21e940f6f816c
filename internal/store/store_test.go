package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/lorelight/lorelight-go/internal/database/models"
)

var errRemote = errors.New("remote call failed")

func strPtr(s string) *string { return &s }

func TestCreate_Success(t *testing.T) {
	s := NewCampaignStore()
	ctx := context.Background()

	created, err := s.Create(ctx, models.Campaign{Name: "Curse of Strahd"},
		func(ctx context.Context, draft models.Campaign) (models.Campaign, error) {
			draft.ID = "server-id-1"
			return draft, nil
		})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID != "server-id-1" {
		t.Errorf("Expected server ID, got %s", created.ID)
	}

	// The temp entry is gone; only the server record remains.
	if s.Len() != 1 {
		t.Errorf("Expected 1 entity, got %d", s.Len())
	}
	if _, ok := s.Get("server-id-1"); !ok {
		t.Error("Expected server record in store")
	}
	for _, c := range s.List() {
		if IsTempID(c.ID) {
			t.Errorf("Temp entry survived: %s", c.ID)
		}
	}
}

func TestCreate_FailureRemovesTempEntry(t *testing.T) {
	s := NewCampaignStore()
	ctx := context.Background()

	var sawTemp bool
	_, err := s.Create(ctx, models.Campaign{Name: "Doomed"},
		func(ctx context.Context, draft models.Campaign) (models.Campaign, error) {
			// The optimistic entry is visible while the remote call runs.
			sawTemp = s.Len() == 1
			return models.Campaign{}, errRemote
		})
	if !errors.Is(err, errRemote) {
		t.Fatalf("Expected remote error, got %v", err)
	}
	if !sawTemp {
		t.Error("Expected temp entry visible during remote call")
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store after rollback, got %d entities", s.Len())
	}
	if s.LastError() != errRemote.Error() {
		t.Errorf("Expected last error recorded, got %q", s.LastError())
	}
}

func TestUpdate_Success(t *testing.T) {
	s := NewCampaignStore()
	ctx := context.Background()
	s.Insert(models.Campaign{ID: "c1", Name: "Old Name"})

	updated, err := s.Update(ctx, "c1",
		func(c models.Campaign) models.Campaign { c.Name = "New Name"; return c },
		func(ctx context.Context) (models.Campaign, error) {
			// Server echoes the update with a computed field.
			return models.Campaign{ID: "c1", Name: "New Name", UpdatedAt: time.Now()}, nil
		})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "New Name" {
		t.Errorf("Unexpected name: %s", updated.Name)
	}
	got, _ := s.Get("c1")
	if got.UpdatedAt.IsZero() {
		t.Error("Expected server-computed field captured")
	}
}

func TestUpdate_FailureRestoresSnapshot(t *testing.T) {
	s := NewCampaignStore()
	ctx := context.Background()
	original := models.Campaign{
		ID:          "c1",
		Name:        "Original",
		Description: strPtr("the one true state"),
		CreatedAt:   time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Insert(original)

	var sawPatch bool
	_, err := s.Update(ctx, "c1",
		func(c models.Campaign) models.Campaign { c.Name = "Patched"; return c },
		func(ctx context.Context) (models.Campaign, error) {
			got, _ := s.Get("c1")
			sawPatch = got.Name == "Patched"
			return models.Campaign{}, errRemote
		})
	if !errors.Is(err, errRemote) {
		t.Fatalf("Expected remote error, got %v", err)
	}
	if !sawPatch {
		t.Error("Expected optimistic patch visible during remote call")
	}

	got, ok := s.Get("c1")
	if !ok {
		t.Fatal("Entity missing after rollback")
	}
	if !reflect.DeepEqual(got, original) {
		t.Errorf("Rollback mismatch:\n got %+v\nwant %+v", got, original)
	}
}

func TestUpdate_MissingEntity(t *testing.T) {
	s := NewCampaignStore()
	_, err := s.Update(context.Background(), "nope",
		func(c models.Campaign) models.Campaign { return c },
		func(ctx context.Context) (models.Campaign, error) {
			t.Error("Remote should not be called for a missing entity")
			return models.Campaign{}, nil
		})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDelete_FailureReinsertsSnapshot(t *testing.T) {
	s := NewCampaignStore()
	ctx := context.Background()
	s.Insert(models.Campaign{ID: "c1", Name: "Keeper"})

	var goneDuringCall bool
	err := s.Delete(ctx, "c1", func(ctx context.Context) error {
		_, ok := s.Get("c1")
		goneDuringCall = !ok
		return errRemote
	})
	if !errors.Is(err, errRemote) {
		t.Fatalf("Expected remote error, got %v", err)
	}
	if !goneDuringCall {
		t.Error("Expected optimistic removal visible during remote call")
	}
	if _, ok := s.Get("c1"); !ok {
		t.Error("Expected snapshot reinserted after failed delete")
	}
}

func TestDelete_Success(t *testing.T) {
	s := NewCampaignStore()
	ctx := context.Background()
	s.Insert(models.Campaign{ID: "c1"})

	if err := s.Delete(ctx, "c1", func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d", s.Len())
	}
}

func TestLastError_ClearedOnSuccess(t *testing.T) {
	s := NewCampaignStore()
	ctx := context.Background()
	s.Insert(models.Campaign{ID: "c1", Name: "A"})

	_, _ = s.Update(ctx, "c1",
		func(c models.Campaign) models.Campaign { return c },
		func(ctx context.Context) (models.Campaign, error) { return models.Campaign{}, errRemote })
	if s.LastError() == "" {
		t.Fatal("Expected last error set after failure")
	}

	_, err := s.Update(ctx, "c1",
		func(c models.Campaign) models.Campaign { return c },
		func(ctx context.Context) (models.Campaign, error) {
			return models.Campaign{ID: "c1", Name: "A"}, nil
		})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if s.LastError() != "" {
		t.Errorf("Expected last error cleared, got %q", s.LastError())
	}
}

func TestSceneStore_SetActiveExclusive(t *testing.T) {
	s := NewSceneStore()
	ctx := context.Background()
	s.Replace([]models.Scene{
		{ID: "s1", CampaignID: "camp-1", IsActive: true},
		{ID: "s2", CampaignID: "camp-1"},
		{ID: "s3", CampaignID: "camp-2", IsActive: true},
	})

	updated, err := s.SetActive(ctx, func(ctx context.Context) (*models.Scene, error) {
		return &models.Scene{ID: "s2", CampaignID: "camp-1", IsActive: true}, nil
	})
	if err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	if !updated.IsActive {
		t.Error("Expected target active")
	}

	active := s.ActiveInCampaign("camp-1")
	if len(active) != 1 || active[0] != "s2" {
		t.Errorf("Expected exactly s2 active in camp-1, got %v", active)
	}
	// Other campaigns are untouched.
	if other := s.ActiveInCampaign("camp-2"); len(other) != 1 || other[0] != "s3" {
		t.Errorf("Expected s3 still active in camp-2, got %v", other)
	}
}

func TestSceneStore_SetActiveRemoteFailure(t *testing.T) {
	s := NewSceneStore()
	ctx := context.Background()
	s.Replace([]models.Scene{{ID: "s1", CampaignID: "camp-1", IsActive: true}})

	_, err := s.SetActive(ctx, func(ctx context.Context) (*models.Scene, error) {
		return nil, errRemote
	})
	if !errors.Is(err, errRemote) {
		t.Fatalf("Expected remote error, got %v", err)
	}
	// Local state untouched: activation is not optimistic.
	if active := s.ActiveInCampaign("camp-1"); len(active) != 1 || active[0] != "s1" {
		t.Errorf("Expected s1 still active, got %v", active)
	}
}

func TestSessionStore_SetActiveDemotesSiblings(t *testing.T) {
	s := NewSessionStore()
	ctx := context.Background()
	active := models.SessionStatusActive
	s.Replace([]models.Session{
		{ID: "sess1", CampaignID: "camp-1", Status: &active},
		{ID: "sess2", CampaignID: "camp-1"},
	})

	activated := models.SessionStatusActive
	_, err := s.SetActive(ctx, func(ctx context.Context) (*models.Session, error) {
		return &models.Session{ID: "sess2", CampaignID: "camp-1", Status: &activated}, nil
	})
	if err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}

	sess1, _ := s.Get("sess1")
	if sess1.Status == nil || *sess1.Status != models.SessionStatusPlanning {
		t.Errorf("Expected sess1 demoted to planning, got %v", sess1.Status)
	}
	sess2, _ := s.Get("sess2")
	if sess2.Status == nil || *sess2.Status != models.SessionStatusActive {
		t.Errorf("Expected sess2 active, got %v", sess2.Status)
	}
}

func TestSceneStore_MarkInactive(t *testing.T) {
	s := NewSceneStore()
	s.Insert(models.Scene{ID: "s1", CampaignID: "camp-1", IsActive: true})

	s.MarkInactive("s1")
	scene, _ := s.Get("s1")
	if scene.IsActive {
		t.Error("Expected scene inactive")
	}

	// Unknown IDs are a no-op.
	s.MarkInactive("missing")
}
