// Package scene coordinates the side effects of making a scene live: audio
// transport, Hue lighting, the single-active-scene invariant, and the
// derived ambience gradient.
package scene

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/lorelight/lorelight-go/internal/database/models"
	"github.com/lorelight/lorelight-go/internal/database/repositories"
	"github.com/lorelight/lorelight-go/internal/metrics"
	"github.com/lorelight/lorelight-go/internal/services/ambience"
	"github.com/lorelight/lorelight-go/internal/services/hue"
	"github.com/lorelight/lorelight-go/internal/services/playback"
	"github.com/lorelight/lorelight-go/internal/services/pubsub"
	"github.com/lorelight/lorelight-go/internal/store"
	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

// ErrSceneNotFound is returned when an activation targets a missing scene.
var ErrSceneNotFound = errors.New("scene not found")

// Deps are the collaborators the orchestrator drives.
type Deps struct {
	SceneRepo  *repositories.SceneRepository
	AudioRepo  *repositories.AudioRepository
	Playback   *playback.Service
	Hue        *hue.Service
	Ambience   *ambience.Service
	SceneStore *store.SceneStore
	PubSub     *pubsub.PubSub
	Metrics    *metrics.Metrics

	// WarnThreshold is the advisory activation duration budget.
	WarnThreshold time.Duration
	// SeekSettleDelay is how long to wait before seeking to a configured
	// start offset, giving the client time to load track metadata.
	SeekSettleDelay time.Duration
}

// Orchestrator runs scene activation and deactivation.
type Orchestrator struct {
	deps Deps
}

// NewOrchestrator creates an orchestrator. Wire it into the playback service
// via SetSceneDeactivator so pausing scene audio deactivates the scene.
func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// ActivateScene makes a scene live. Audio and lighting start concurrently;
// lighting failures are logged and never block audio or the activation
// itself. The single-active invariant is committed in one transaction after
// both effects settle.
func (o *Orchestrator) ActivateScene(ctx context.Context, sceneID string) (*models.Scene, error) {
	start := time.Now()

	scene, err := o.deps.SceneRepo.FindByID(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if scene == nil {
		return nil, ErrSceneNotFound
	}

	lightConfig, err := scene.ParseLightConfig()
	if err != nil {
		log.Printf("Malformed light config for scene %s: %v", scene.ID, err)
		lightConfig = nil
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		o.activateAudio(ctx, scene)
	}()
	go func() {
		defer wg.Done()
		if err := o.activateLights(ctx, lightConfig); err != nil {
			o.deps.Metrics.LightApplyFailures.Inc()
			log.Printf("Light activation for scene %s failed: %v", scene.ID, err)
		}
	}()
	wg.Wait()

	updated, err := o.deps.SceneStore.SetActive(ctx, func(ctx context.Context) (*models.Scene, error) {
		return o.deps.SceneRepo.SetActive(ctx, sceneID)
	})
	if err != nil {
		o.deps.Metrics.SceneFailures.Inc()
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSceneNotFound
		}
		return nil, err
	}

	elapsed := time.Since(start)
	o.deps.Metrics.ActivationDuration.Observe(elapsed.Seconds())
	o.deps.Metrics.SceneActivations.Inc()
	if o.deps.WarnThreshold > 0 && elapsed > o.deps.WarnThreshold {
		log.Printf("Scene activation for %q took %s (budget %s)", scene.Name, elapsed, o.deps.WarnThreshold)
	}

	o.deps.Ambience.SetActiveScene(lightConfig)
	o.publish(pubsub.TopicSceneActivated, updated)
	return updated, nil
}

// DeactivateScene takes a scene out of the live state, stopping its audio if
// the transport is still attributed to it.
func (o *Orchestrator) DeactivateScene(ctx context.Context, sceneID string) (*models.Scene, error) {
	return o.deactivate(ctx, sceneID, true)
}

// DeactivateSceneKeepAudio deactivates without touching the transport. The
// playback service calls this when a pause or stop already handled the audio
// side, which is what breaks the pause/deactivate recursion.
func (o *Orchestrator) DeactivateSceneKeepAudio(ctx context.Context, sceneID string) error {
	_, err := o.deactivate(ctx, sceneID, false)
	return err
}

func (o *Orchestrator) deactivate(ctx context.Context, sceneID string, stopAudio bool) (*models.Scene, error) {
	if stopAudio {
		o.deps.Playback.StopSceneAudio(sceneID)
	}

	updated, err := o.deps.SceneRepo.SetInactive(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrSceneNotFound
	}

	o.deps.SceneStore.MarkInactive(sceneID)
	o.deps.Ambience.ClearActiveScene()
	o.publish(pubsub.TopicSceneDeactivated, updated)
	return updated, nil
}

// activateAudio starts scene audio. A scene without audio config is a no-op;
// a missing audio file is logged and skipped, never fatal.
func (o *Orchestrator) activateAudio(ctx context.Context, scene *models.Scene) {
	cfg, err := scene.ParseAudioConfig()
	if err != nil {
		log.Printf("Malformed audio config for scene %s: %v", scene.ID, err)
		return
	}
	if cfg == nil {
		return
	}

	file, err := o.deps.AudioRepo.FindFileByID(ctx, cfg.AudioID)
	if err != nil {
		log.Printf("Loading audio file %s for scene %s: %v", cfg.AudioID, scene.ID, err)
		return
	}
	if file == nil {
		log.Printf("Audio file %s for scene %s not found", cfg.AudioID, scene.ID)
		return
	}

	o.deps.Playback.LoadTrack(file.ID, file.FileURL, file.Name, &playback.SourceContext{
		Type:       playback.SourceScene,
		ID:         scene.ID,
		Name:       scene.Name,
		CampaignID: scene.CampaignID,
	})
	o.deps.Playback.SetVolume(cfg.Volume)
	o.deps.Playback.SetLoop(cfg.Loop)
	o.deps.Playback.Play()

	if cfg.StartTime > 0 {
		// The client needs a moment to load metadata before it can seek.
		startTime := cfg.StartTime
		time.AfterFunc(o.deps.SeekSettleDelay, func() {
			o.deps.Playback.Seek(startTime)
		})
	}
}

// activateLights pushes the scene's light config to the bridge. An absent
// bridge is normal (most sessions run without Hue hardware) and not an error.
func (o *Orchestrator) activateLights(ctx context.Context, cfg *hueapi.LightConfig) error {
	if cfg.IsEmpty() {
		return nil
	}

	err := o.deps.Hue.ApplyLightConfig(ctx, cfg)
	if errors.Is(err, hue.ErrNotConnected) {
		log.Printf("Hue bridge not connected, skipping light activation")
		return nil
	}
	return err
}

func (o *Orchestrator) publish(topic pubsub.Topic, scene *models.Scene) {
	if o.deps.PubSub == nil {
		return
	}
	o.deps.PubSub.Publish(topic, scene.CampaignID, scene)
}
