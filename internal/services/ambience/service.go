package ambience

import (
	"sync"

	"github.com/lorelight/lorelight-go/internal/services/pubsub"
	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

// Service holds the inputs to the gradient derivation and recomputes it
// whenever either changes, publishing the result for connected clients.
type Service struct {
	mu         sync.RWMutex
	ps         *pubsub.PubSub
	sceneCfg   *hueapi.LightConfig
	standalone *hueapi.LightConfig
	current    GradientPair
}

// NewService creates an ambience service. ps may be nil in tests.
func NewService(ps *pubsub.PubSub) *Service {
	return &Service{
		ps:      ps,
		current: GradientPair{From: DefaultFrom, To: DefaultTo},
	}
}

// SetActiveScene records the active scene's light config and recomputes.
// A nil config clears the scene input (scene without lighting).
func (s *Service) SetActiveScene(cfg *hueapi.LightConfig) {
	s.mu.Lock()
	s.sceneCfg = cfg
	s.mu.Unlock()
	s.recompute()
}

// ClearActiveScene drops the scene input, falling back to the standalone
// config or defaults.
func (s *Service) ClearActiveScene() {
	s.SetActiveScene(nil)
}

// SetStandalone records the standalone active preset and recomputes.
func (s *Service) SetStandalone(cfg *hueapi.LightConfig) {
	s.mu.Lock()
	s.standalone = cfg
	s.mu.Unlock()
	s.recompute()
}

// Current returns the most recently derived gradient.
func (s *Service) Current() GradientPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Service) recompute() {
	s.mu.Lock()
	next := DeriveGradient(s.sceneCfg, s.standalone)
	changed := next != s.current
	s.current = next
	ps := s.ps
	s.mu.Unlock()

	if changed && ps != nil {
		ps.PublishAll(pubsub.TopicGradientUpdated, next)
	}
}
