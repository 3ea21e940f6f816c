package hue

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/lorelight/lorelight-go/internal/database/repositories"
	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

// Service manages the bridge connection lifecycle: discovery, pairing,
// credential persistence, and config application. Most play sessions run with
// no bridge on the network at all, so every caller treats an unconnected
// service as a normal condition rather than an error.
type Service struct {
	mu           sync.RWMutex
	client       *Client
	httpClient   *http.Client
	discoveryURL string
	settingRepo  *repositories.SettingRepository

	// Callback for status updates (optional)
	statusCallback func(Status)
}

// NewService creates a new hue service. settingRepo may be nil in tests.
func NewService(httpClient *http.Client, discoveryURL string, settingRepo *repositories.SettingRepository) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Service{
		httpClient:   httpClient,
		discoveryURL: discoveryURL,
		settingRepo:  settingRepo,
	}
}

// SetStatusCallback sets the callback invoked on connection changes.
func (s *Service) SetStatusCallback(callback func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCallback = callback
}

// Restore loads persisted bridge credentials and reconnects, if any exist.
func (s *Service) Restore(ctx context.Context) error {
	if s.settingRepo == nil {
		return nil
	}

	ip, err := s.settingRepo.FindByKey(ctx, SettingBridgeIP)
	if err != nil {
		return err
	}
	username, err := s.settingRepo.FindByKey(ctx, SettingBridgeUsername)
	if err != nil {
		return err
	}
	if ip == nil || username == nil || ip.Value == "" || username.Value == "" {
		return nil
	}

	s.connect(ip.Value, username.Value)
	log.Printf("Restored Hue bridge connection: %s", ip.Value)
	return nil
}

// Discover proxies the public bridge discovery endpoint.
func (s *Service) Discover(ctx context.Context) ([]DiscoveredBridge, error) {
	return Discover(ctx, s.httpClient, s.discoveryURL)
}

// Pair attempts to create an application user on the bridge. A successful
// pairing is persisted and connects the service. ErrLinkButtonNotPressed is
// passed through so the caller can prompt for a retry.
func (s *Service) Pair(ctx context.Context, bridgeIP string) (*PairResult, error) {
	username, err := CreateUser(ctx, s.httpClient, bridgeIP)
	if err != nil {
		return nil, err
	}

	if s.settingRepo != nil {
		if _, err := s.settingRepo.Upsert(ctx, SettingBridgeIP, bridgeIP); err != nil {
			return nil, err
		}
		if _, err := s.settingRepo.Upsert(ctx, SettingBridgeUsername, username); err != nil {
			return nil, err
		}
	}

	s.connect(bridgeIP, username)
	log.Printf("Paired with Hue bridge at %s", bridgeIP)
	return &PairResult{Success: true, Username: username}, nil
}

// Connect attaches the service to an already-paired bridge.
func (s *Service) Connect(ctx context.Context, bridgeIP, username string) error {
	if s.settingRepo != nil {
		if _, err := s.settingRepo.Upsert(ctx, SettingBridgeIP, bridgeIP); err != nil {
			return err
		}
		if _, err := s.settingRepo.Upsert(ctx, SettingBridgeUsername, username); err != nil {
			return err
		}
	}
	s.connect(bridgeIP, username)
	return nil
}

// Disconnect forgets the bridge and clears persisted credentials.
func (s *Service) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	s.client = nil
	callback := s.statusCallback
	s.mu.Unlock()

	if s.settingRepo != nil {
		if err := s.settingRepo.Delete(ctx, SettingBridgeIP); err != nil {
			return err
		}
		if err := s.settingRepo.Delete(ctx, SettingBridgeUsername); err != nil {
			return err
		}
	}

	if callback != nil {
		callback(Status{Connected: false})
	}
	return nil
}

// IsConnected reports whether a bridge is attached.
func (s *Service) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

// GetStatus returns the current connection status.
func (s *Service) GetStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return Status{Connected: false}
	}
	return Status{Connected: true, BridgeIP: s.client.bridgeIP, Username: s.client.username}
}

// ApplyLightConfig pushes a config to the bridge. Returns ErrNotConnected when
// no bridge is attached; partial per-light failures come back joined.
func (s *Service) ApplyLightConfig(ctx context.Context, cfg *hueapi.LightConfig) error {
	if cfg.IsEmpty() {
		return nil
	}

	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil {
		return ErrNotConnected
	}
	return client.ApplyConfig(ctx, cfg)
}

// SetLightState pushes a single light state to the bridge.
func (s *Service) SetLightState(ctx context.Context, lightID string, state hueapi.LightState) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil {
		return ErrNotConnected
	}
	return client.SetLightState(ctx, lightID, state)
}

// SetGroupState pushes a single group action to the bridge.
func (s *Service) SetGroupState(ctx context.Context, groupID string, state hueapi.LightState) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil {
		return ErrNotConnected
	}
	return client.SetGroupState(ctx, groupID, state)
}

func (s *Service) connect(bridgeIP, username string) {
	s.mu.Lock()
	s.client = NewClient(s.httpClient, bridgeIP, username)
	callback := s.statusCallback
	status := Status{Connected: true, BridgeIP: bridgeIP, Username: username}
	s.mu.Unlock()

	if callback != nil {
		callback(status)
	}
}
