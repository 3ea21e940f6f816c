package playback

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakePlayer records transport commands for assertions.
type fakePlayer struct {
	mu         sync.Mutex
	loads      []string
	plays      int
	pauses     int
	stops      int
	seeks      []float64
	volumes    []float64
	muteCalls  []bool
	loopCalls  []bool
}

func (p *fakePlayer) Load(trackID, url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loads = append(p.loads, trackID)
}

func (p *fakePlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
}

func (p *fakePlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pauses++
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *fakePlayer) Seek(position float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seeks = append(p.seeks, position)
}

func (p *fakePlayer) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volumes = append(p.volumes, volume)
}

func (p *fakePlayer) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muteCalls = append(p.muteCalls, muted)
}

func (p *fakePlayer) SetLoop(loop bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loopCalls = append(p.loopCalls, loop)
}

func (p *fakePlayer) loadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.loads)
}

// fakeDeactivator signals deactivated scene IDs on a channel so tests can
// wait for the background coupling.
type fakeDeactivator struct {
	calls chan string
}

func newFakeDeactivator() *fakeDeactivator {
	return &fakeDeactivator{calls: make(chan string, 10)}
}

func (d *fakeDeactivator) DeactivateSceneKeepAudio(ctx context.Context, sceneID string) error {
	d.calls <- sceneID
	return nil
}

func (d *fakeDeactivator) waitForCall(t *testing.T) string {
	t.Helper()
	select {
	case id := <-d.calls:
		return id
	case <-time.After(time.Second):
		t.Fatal("Expected a scene deactivation call")
		return ""
	}
}

func (d *fakeDeactivator) expectNoCall(t *testing.T) {
	t.Helper()
	select {
	case id := <-d.calls:
		t.Errorf("Unexpected scene deactivation for %s", id)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestLoadTrack_Idempotent(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)

	service.LoadTrack("track-1", "https://cdn.example.com/a.mp3", "Tavern Theme", nil)
	service.Play()
	service.Seek(30)

	before := service.GetState()

	// Same trackID+url pair: the reload is debounced entirely.
	service.LoadTrack("track-1", "https://cdn.example.com/a.mp3", "Tavern Theme", nil)

	after := service.GetState()
	if player.loadCount() != 1 {
		t.Errorf("Expected 1 load call, got %d", player.loadCount())
	}
	if after.Position != before.Position || after.IsPlaying != before.IsPlaying {
		t.Errorf("Expected state unchanged: before %+v, after %+v", before, after)
	}
}

func TestLoadTrack_AutoResumesWhenPlaying(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)

	service.LoadTrack("track-1", "url-1", "First", nil)
	service.Play()

	service.LoadTrack("track-2", "url-2", "Second", nil)

	state := service.GetState()
	if !state.IsPlaying {
		t.Error("Expected playback to auto-resume on the new track")
	}
	if state.Position != 0 {
		t.Errorf("Expected position reset, got %f", state.Position)
	}
	if player.loadCount() != 2 {
		t.Errorf("Expected 2 load calls, got %d", player.loadCount())
	}
}

func TestLoadTrack_StaysPausedWhenNotPlaying(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)

	service.LoadTrack("track-1", "url-1", "First", nil)
	service.LoadTrack("track-2", "url-2", "Second", nil)

	if service.GetState().IsPlaying {
		t.Error("Expected playback to stay paused")
	}
}

func TestPause_DeactivatesSceneSource(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)
	deactivator := newFakeDeactivator()
	service.SetSceneDeactivator(deactivator)

	service.LoadTrack("track-1", "url-1", "Battle Theme", &SourceContext{
		Type: SourceScene, ID: "scene-1", Name: "Ambush", CampaignID: "campaign-1",
	})
	service.Play()
	service.Pause()

	if got := deactivator.waitForCall(t); got != "scene-1" {
		t.Errorf("Expected scene-1 deactivated, got %s", got)
	}
}

func TestPause_SceneCouplingRequiresMatchingSource(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)
	deactivator := newFakeDeactivator()
	service.SetSceneDeactivator(deactivator)

	service.LoadTrack("track-1", "url-1", "Battle Theme", &SourceContext{
		Type: SourceScene, ID: "scene-1", Name: "Ambush",
	})
	service.Play()

	// Loading a library track replaces the source context, so a later pause
	// must not deactivate the original scene.
	service.LoadTrack("track-2", "url-2", "Lo-fi", &SourceContext{
		Type: SourceLibrary, ID: "track-2", Name: "Lo-fi",
	})
	service.Pause()

	deactivator.expectNoCall(t)
}

func TestStopSceneAudio(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)
	deactivator := newFakeDeactivator()
	service.SetSceneDeactivator(deactivator)

	service.LoadTrack("track-1", "url-1", "Battle Theme", &SourceContext{
		Type: SourceScene, ID: "scene-1", Name: "Ambush",
	})
	service.Play()

	if !service.StopSceneAudio("scene-1") {
		t.Error("Expected StopSceneAudio to stop matching scene audio")
	}
	if service.GetState().IsPlaying {
		t.Error("Expected playback stopped")
	}
	// The caller is already deactivating; no coupling round-trip.
	deactivator.expectNoCall(t)
}

func TestStopSceneAudio_IgnoresOtherScenes(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)

	service.LoadTrack("track-1", "url-1", "Battle Theme", &SourceContext{
		Type: SourceScene, ID: "scene-1", Name: "Ambush",
	})
	service.Play()

	if service.StopSceneAudio("scene-2") {
		t.Error("Expected no stop for a different scene")
	}
	if !service.GetState().IsPlaying {
		t.Error("Expected playback to continue")
	}
}

func TestSetVolume_Clamps(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)

	service.SetVolume(1.5)
	if got := service.GetState().Volume; got != 1.0 {
		t.Errorf("Expected volume clamped to 1.0, got %f", got)
	}

	service.SetVolume(-0.2)
	if got := service.GetState().Volume; got != 0.0 {
		t.Errorf("Expected volume clamped to 0.0, got %f", got)
	}
}

func TestSeek_Clamps(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)

	service.LoadTrack("track-1", "url-1", "First", nil)
	service.ReportProgress(10, 120)

	service.Seek(-5)
	if got := service.GetState().Position; got != 0 {
		t.Errorf("Expected position 0, got %f", got)
	}

	service.Seek(500)
	if got := service.GetState().Position; got != 120 {
		t.Errorf("Expected position clamped to duration, got %f", got)
	}
}

func TestToggleMuteAndLoop(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)

	service.ToggleMute()
	if !service.GetState().Muted {
		t.Error("Expected muted after toggle")
	}
	service.ToggleMute()
	if service.GetState().Muted {
		t.Error("Expected unmuted after second toggle")
	}

	service.ToggleLoop()
	if !service.GetState().Loop {
		t.Error("Expected loop after toggle")
	}
	service.SetLoop(true)
	player.mu.Lock()
	loopCalls := len(player.loopCalls)
	player.mu.Unlock()
	if loopCalls != 1 {
		t.Errorf("Expected no player call for unchanged loop flag, got %d calls", loopCalls)
	}
}

func TestTogglePlay(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)
	service.LoadTrack("track-1", "url-1", "First", nil)

	service.TogglePlay()
	if !service.GetState().IsPlaying {
		t.Error("Expected playing after first toggle")
	}
	service.TogglePlay()
	if service.GetState().IsPlaying {
		t.Error("Expected paused after second toggle")
	}
}

func TestReportError_NotSupportedNotifies(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)

	var notifications []string
	service.SetNotifyCallback(func(message string) {
		notifications = append(notifications, message)
	})

	service.LoadTrack("track-1", "url-1", "Weird Codec", nil)
	service.ReportError("NotSupportedError", "media decode failed")

	if len(notifications) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifications))
	}

	// Other error codes are logged only.
	service.ReportError("AbortError", "fetch aborted")
	if len(notifications) != 1 {
		t.Errorf("Expected no extra notification, got %d", len(notifications))
	}
}

func TestReportEnded_DeactivatesSceneSource(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)
	deactivator := newFakeDeactivator()
	service.SetSceneDeactivator(deactivator)

	service.LoadTrack("track-1", "url-1", "Battle Theme", &SourceContext{
		Type: SourceScene, ID: "scene-1", Name: "Ambush",
	})
	service.Play()
	service.ReportEnded()

	if service.GetState().IsPlaying {
		t.Error("Expected playback stopped after track end")
	}
	if got := deactivator.waitForCall(t); got != "scene-1" {
		t.Errorf("Expected scene-1 deactivated, got %s", got)
	}
}

func TestUpdateCallback(t *testing.T) {
	player := &fakePlayer{}
	service := NewService(player)

	var statuses []*Status
	service.SetUpdateCallback(func(status *Status) {
		statuses = append(statuses, status)
	})

	service.LoadTrack("track-1", "url-1", "First", nil)
	service.Play()

	if len(statuses) != 2 {
		t.Fatalf("Expected 2 status updates, got %d", len(statuses))
	}
	last := statuses[len(statuses)-1]
	if !last.IsPlaying || last.TrackID != "track-1" {
		t.Errorf("Unexpected status: %+v", last)
	}
}
