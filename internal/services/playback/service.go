// Package playback manages the single shared audio transport.
package playback

import (
	"context"
	"log"
	"sync"
	"time"
)

// Source context types describing who requested playback.
const (
	SourceLibrary  = "library"
	SourcePlaylist = "playlist"
	SourceScene    = "scene"
)

// SourceContext tags the loaded track with its origin so later transport
// actions can be attributed (pausing scene audio deactivates the scene).
type SourceContext struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	CampaignID string `json:"campaignId,omitempty"`
}

// Player is the transport the service drives. The browser owns the actual
// audio element; commands are forwarded to it over the event stream.
type Player interface {
	Load(trackID, url string)
	Play()
	Pause()
	Stop()
	Seek(position float64)
	SetVolume(volume float64)
	SetMuted(muted bool)
	SetLoop(loop bool)
}

// SceneDeactivator deactivates a scene without touching its audio. The
// playback service already owns the audio side of the transition, so the
// implementation must not call back into Stop.
type SceneDeactivator interface {
	DeactivateSceneKeepAudio(ctx context.Context, sceneID string) error
}

// State is the current transport state.
type State struct {
	TrackID   string
	TrackURL  string
	TrackName string
	IsPlaying bool
	Position  float64
	Duration  float64
	Volume    float64
	Muted     bool
	Loop      bool
	Source    *SourceContext
}

// Status is the wire-format state pushed to subscribers.
type Status struct {
	TrackID     string         `json:"trackId"`
	TrackURL    string         `json:"trackUrl"`
	TrackName   string         `json:"trackName"`
	IsPlaying   bool           `json:"isPlaying"`
	Position    float64        `json:"position"`
	Duration    float64        `json:"duration"`
	Volume      float64        `json:"volume"`
	Muted       bool           `json:"muted"`
	Loop        bool           `json:"loop"`
	Source      *SourceContext `json:"source,omitempty"`
	LastUpdated string         `json:"lastUpdated"`
}

// Service manages audio playback state and the scene coupling rules.
type Service struct {
	mu sync.RWMutex

	player      Player
	state       State
	lastUpdated time.Time

	deactivator SceneDeactivator

	// Callback for playback status updates (optional)
	onUpdate func(status *Status)
	// Callback for user-facing notifications (optional)
	onNotify func(message string)
}

// NewService creates a new playback service driving the given player.
func NewService(player Player) *Service {
	return &Service{
		player:      player,
		state:       State{Volume: 1.0},
		lastUpdated: time.Now(),
	}
}

// SetUpdateCallback sets the callback for playback status updates.
func (s *Service) SetUpdateCallback(callback func(status *Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = callback
}

// SetNotifyCallback sets the callback for user-facing playback notifications.
func (s *Service) SetNotifyCallback(callback func(message string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onNotify = callback
}

// SetSceneDeactivator wires the scene coupling. Must be called during startup
// before any scene audio plays.
func (s *Service) SetSceneDeactivator(deactivator SceneDeactivator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivator = deactivator
}

// GetState returns a copy of the current transport state.
func (s *Service) GetState() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := s.state
	if s.state.Source != nil {
		sourceCopy := *s.state.Source
		state.Source = &sourceCopy
	}
	return state
}

// GetFormattedStatus returns the wire-format transport status.
func (s *Service) GetFormattedStatus() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusLocked()
}

func (s *Service) statusLocked() *Status {
	status := &Status{
		TrackID:     s.state.TrackID,
		TrackURL:    s.state.TrackURL,
		TrackName:   s.state.TrackName,
		IsPlaying:   s.state.IsPlaying,
		Position:    s.state.Position,
		Duration:    s.state.Duration,
		Volume:      s.state.Volume,
		Muted:       s.state.Muted,
		Loop:        s.state.Loop,
		LastUpdated: s.lastUpdated.Format(time.RFC3339),
	}
	if s.state.Source != nil {
		sourceCopy := *s.state.Source
		status.Source = &sourceCopy
	}
	return status
}

// LoadTrack loads a track into the transport. Loading the same trackID+url
// pair again is a no-op, which debounces redundant reloads. If something was
// already playing, playback auto-resumes on the new track.
func (s *Service) LoadTrack(trackID, url, name string, source *SourceContext) {
	s.mu.Lock()
	if s.state.TrackID == trackID && s.state.TrackURL == url {
		s.mu.Unlock()
		return
	}

	wasPlaying := s.state.IsPlaying

	s.state.TrackID = trackID
	s.state.TrackURL = url
	s.state.TrackName = name
	s.state.Position = 0
	s.state.Duration = 0
	s.state.Source = source
	s.player.Load(trackID, url)

	if wasPlaying {
		s.player.Play()
		s.state.IsPlaying = true
	} else {
		s.state.IsPlaying = false
	}
	s.touchLocked()
	s.mu.Unlock()

	s.emitUpdate()
}

// Play starts or resumes playback.
func (s *Service) Play() {
	s.mu.Lock()
	s.player.Play()
	s.state.IsPlaying = true
	s.touchLocked()
	s.mu.Unlock()

	s.emitUpdate()
}

// Pause pauses playback. If the current track was loaded by a scene, that
// scene is deactivated in the background so scene state tracks the audio.
func (s *Service) Pause() {
	s.transportHalt(false, false)
}

// Stop stops playback and resets the position. Scene coupling applies as
// with Pause.
func (s *Service) Stop() {
	s.transportHalt(true, false)
}

// TogglePlay flips between playing and paused.
func (s *Service) TogglePlay() {
	s.mu.RLock()
	playing := s.state.IsPlaying
	s.mu.RUnlock()

	if playing {
		s.Pause()
	} else {
		s.Play()
	}
}

// StopSceneAudio stops playback if the current track was loaded by the given
// scene, without re-triggering scene deactivation. Returns whether playback
// was stopped. Callers that are already deactivating the scene use this to
// avoid the pause/deactivate cycle.
func (s *Service) StopSceneAudio(sceneID string) bool {
	s.mu.RLock()
	source := s.state.Source
	matches := source != nil && source.Type == SourceScene && source.ID == sceneID
	s.mu.RUnlock()

	if !matches {
		return false
	}
	s.transportHalt(true, true)
	return true
}

// transportHalt pauses or stops the player. skipSceneSync breaks the
// pause -> deactivate -> stop recursion when the halt originates from a
// scene deactivation.
func (s *Service) transportHalt(stop, skipSceneSync bool) {
	s.mu.Lock()
	if stop {
		s.player.Stop()
		s.state.Position = 0
	} else {
		s.player.Pause()
	}
	s.state.IsPlaying = false
	source := s.state.Source
	deactivator := s.deactivator
	s.touchLocked()
	s.mu.Unlock()

	s.emitUpdate()

	if skipSceneSync || source == nil || source.Type != SourceScene {
		return
	}
	if deactivator == nil {
		return
	}

	// Fire and forget: the transport action must not wait on storage.
	sceneID := source.ID
	go func() {
		if err := deactivator.DeactivateSceneKeepAudio(context.Background(), sceneID); err != nil {
			log.Printf("Failed to deactivate scene %s after pause: %v", sceneID, err)
		}
	}()
}

// SetVolume sets the playback volume, clamped to [0, 1].
func (s *Service) SetVolume(volume float64) {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}

	s.mu.Lock()
	s.state.Volume = volume
	s.player.SetVolume(volume)
	s.touchLocked()
	s.mu.Unlock()

	s.emitUpdate()
}

// ToggleMute flips the mute flag.
func (s *Service) ToggleMute() {
	s.mu.Lock()
	s.state.Muted = !s.state.Muted
	s.player.SetMuted(s.state.Muted)
	s.touchLocked()
	s.mu.Unlock()

	s.emitUpdate()
}

// ToggleLoop flips the loop flag.
func (s *Service) ToggleLoop() {
	s.mu.Lock()
	s.state.Loop = !s.state.Loop
	s.player.SetLoop(s.state.Loop)
	s.touchLocked()
	s.mu.Unlock()

	s.emitUpdate()
}

// SetLoop sets the loop flag to an explicit value.
func (s *Service) SetLoop(loop bool) {
	s.mu.Lock()
	changed := s.state.Loop != loop
	s.state.Loop = loop
	if changed {
		s.player.SetLoop(loop)
		s.touchLocked()
	}
	s.mu.Unlock()

	if changed {
		s.emitUpdate()
	}
}

// Seek moves the playhead. Negative positions clamp to 0; positions past a
// known duration clamp to the end.
func (s *Service) Seek(position float64) {
	if position < 0 {
		position = 0
	}

	s.mu.Lock()
	if s.state.Duration > 0 && position > s.state.Duration {
		position = s.state.Duration
	}
	s.state.Position = position
	s.player.Seek(position)
	s.touchLocked()
	s.mu.Unlock()

	s.emitUpdate()
}

// ReportProgress records the position and duration reported by the playing
// client. The client is the source of truth for the playhead.
func (s *Service) ReportProgress(position, duration float64) {
	s.mu.Lock()
	s.state.Position = position
	if duration > 0 {
		s.state.Duration = duration
	}
	s.touchLocked()
	s.mu.Unlock()

	s.emitUpdate()
}

// ReportEnded records that the client finished the track. Looping tracks
// restart client-side, so this only fires for non-looping playback.
func (s *Service) ReportEnded() {
	s.mu.Lock()
	s.state.IsPlaying = false
	s.state.Position = 0
	source := s.state.Source
	deactivator := s.deactivator
	s.touchLocked()
	s.mu.Unlock()

	s.emitUpdate()

	if source == nil || source.Type != SourceScene || deactivator == nil {
		return
	}
	sceneID := source.ID
	go func() {
		if err := deactivator.DeactivateSceneKeepAudio(context.Background(), sceneID); err != nil {
			log.Printf("Failed to deactivate scene %s after track end: %v", sceneID, err)
		}
	}()
}

// ReportError handles a playback error from the client. Unsupported media
// surfaces as a user notification; everything else is logged only.
func (s *Service) ReportError(code, message string) {
	s.mu.RLock()
	trackName := s.state.TrackName
	notify := s.onNotify
	s.mu.RUnlock()

	if code == "NotSupportedError" {
		log.Printf("Unsupported audio format for %q: %s", trackName, message)
		if notify != nil {
			notify("This audio format is not supported by your browser: " + trackName)
		}
		return
	}
	log.Printf("Playback error (%s) for %q: %s", code, trackName, message)
}

func (s *Service) touchLocked() {
	s.lastUpdated = time.Now()
}

// emitUpdate emits a playback status update.
func (s *Service) emitUpdate() {
	s.mu.RLock()
	callback := s.onUpdate
	status := s.statusLocked()
	s.mu.RUnlock()

	if callback != nil {
		callback(status)
	}
}
