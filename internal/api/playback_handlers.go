package api

import (
	"net/http"

	"github.com/lorelight/lorelight-go/internal/services/playback"
)

func (s *Server) handlePlaybackState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

func (s *Server) handlePlaybackLoad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackID string                  `json:"trackId"`
		URL     string                  `json:"url"`
		Name    string                  `json:"name"`
		Source  *playback.SourceContext `json:"source"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TrackID == "" || req.URL == "" {
		writeError(w, http.StatusBadRequest, "trackId and url are required")
		return
	}

	s.deps.Playback.LoadTrack(req.TrackID, req.URL, req.Name, req.Source)
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

func (s *Server) handlePlaybackPlay(w http.ResponseWriter, r *http.Request) {
	s.deps.Playback.Play()
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

func (s *Server) handlePlaybackPause(w http.ResponseWriter, r *http.Request) {
	s.deps.Playback.Pause()
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

func (s *Server) handlePlaybackToggle(w http.ResponseWriter, r *http.Request) {
	s.deps.Playback.TogglePlay()
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

func (s *Server) handlePlaybackStop(w http.ResponseWriter, r *http.Request) {
	s.deps.Playback.Stop()
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

func (s *Server) handlePlaybackVolume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Volume float64 `json:"volume"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.deps.Playback.SetVolume(req.Volume)
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

func (s *Server) handlePlaybackMute(w http.ResponseWriter, r *http.Request) {
	s.deps.Playback.ToggleMute()
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

func (s *Server) handlePlaybackLoop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Loop *bool `json:"loop"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Loop != nil {
		s.deps.Playback.SetLoop(*req.Loop)
	} else {
		s.deps.Playback.ToggleLoop()
	}
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

func (s *Server) handlePlaybackSeek(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position float64 `json:"position"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.deps.Playback.Seek(req.Position)
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

// handlePlaybackProgress receives periodic position reports from the
// browser's audio element.
func (s *Server) handlePlaybackProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Position float64 `json:"position"`
		Duration float64 `json:"duration"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.deps.Playback.ReportProgress(req.Position, req.Duration)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handlePlaybackEnded(w http.ResponseWriter, r *http.Request) {
	s.deps.Playback.ReportEnded()
	writeJSON(w, http.StatusOK, s.deps.Playback.GetFormattedStatus())
}

func (s *Server) handlePlaybackError(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	s.deps.Playback.ReportError(req.Code, req.Message)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleGradient(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Ambience.Current())
}
