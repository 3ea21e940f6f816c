package store

import (
	"context"

	"github.com/lorelight/lorelight-go/internal/database/models"
)

// CampaignStore holds campaigns.
type CampaignStore struct {
	*Store[models.Campaign]
}

// NewCampaignStore creates an empty campaign store.
func NewCampaignStore() *CampaignStore {
	return &CampaignStore{Store: New(
		func(c models.Campaign) string { return c.ID },
		func(c models.Campaign, id string) models.Campaign { c.ID = id; return c },
	)}
}

// AudioFileStore holds audio library entries.
type AudioFileStore struct {
	*Store[models.AudioFile]
}

// NewAudioFileStore creates an empty audio file store.
func NewAudioFileStore() *AudioFileStore {
	return &AudioFileStore{Store: New(
		func(f models.AudioFile) string { return f.ID },
		func(f models.AudioFile, id string) models.AudioFile { f.ID = id; return f },
	)}
}

// SceneStore holds scenes and enforces the exclusive-active rule in memory.
type SceneStore struct {
	*Store[models.Scene]
}

// NewSceneStore creates an empty scene store.
func NewSceneStore() *SceneStore {
	return &SceneStore{Store: New(
		func(sc models.Scene) string { return sc.ID },
		func(sc models.Scene, id string) models.Scene { sc.ID = id; return sc },
	)}
}

// SetActive calls the remote activation and then, in one locked update,
// deactivates every campaign sibling and stores the server's record for the
// target. Readers never observe two active scenes in the same campaign.
func (s *SceneStore) SetActive(ctx context.Context, remote func(context.Context) (*models.Scene, error)) (*models.Scene, error) {
	updated, err := remote(ctx)
	if err != nil {
		s.setError(err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	for key, scene := range s.items {
		if key == updated.ID || scene.CampaignID != updated.CampaignID {
			continue
		}
		if scene.IsActive {
			scene.IsActive = false
			s.items[key] = scene
		}
	}
	s.items[updated.ID] = *updated
	s.lastErr = ""
	s.mu.Unlock()

	return updated, nil
}

// MarkInactive mirrors a server-side deactivation into the store.
func (s *SceneStore) MarkInactive(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	scene, ok := s.items[id]
	if !ok {
		return
	}
	scene.IsActive = false
	s.items[id] = scene
}

// ActiveInCampaign returns the IDs of active scenes in a campaign. Used by
// tests and consistency checks; under the exclusive-active rule the result
// has at most one element.
func (s *SceneStore) ActiveInCampaign(campaignID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for id, scene := range s.items {
		if scene.CampaignID == campaignID && scene.IsActive {
			ids = append(ids, id)
		}
	}
	return ids
}

// SessionStore holds sessions and enforces the exclusive-active rule in
// memory, demoting displaced sessions to planning.
type SessionStore struct {
	*Store[models.Session]
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{Store: New(
		func(sess models.Session) string { return sess.ID },
		func(sess models.Session, id string) models.Session { sess.ID = id; return sess },
	)}
}

// SetActive calls the remote activation and then, in one locked update,
// demotes active campaign siblings to planning and stores the server's
// record for the target.
func (s *SessionStore) SetActive(ctx context.Context, remote func(context.Context) (*models.Session, error)) (*models.Session, error) {
	updated, err := remote(ctx)
	if err != nil {
		s.setError(err)
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	for key, session := range s.items {
		if key == updated.ID || session.CampaignID != updated.CampaignID {
			continue
		}
		if session.Status != nil && *session.Status == models.SessionStatusActive {
			planning := models.SessionStatusPlanning
			session.Status = &planning
			s.items[key] = session
		}
	}
	s.items[updated.ID] = *updated
	s.lastErr = ""
	s.mu.Unlock()

	return updated, nil
}
