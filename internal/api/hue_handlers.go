package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lorelight/lorelight-go/internal/services/hue"
	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

func (s *Server) handleHueDiscover(w http.ResponseWriter, r *http.Request) {
	bridges, err := s.deps.Hue.Discover(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "bridge discovery failed")
		return
	}
	writeJSON(w, http.StatusOK, bridges)
}

func (s *Server) handleHuePair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BridgeIP string `json:"bridgeIp"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.BridgeIP == "" {
		writeError(w, http.StatusBadRequest, "bridgeIp is required")
		return
	}

	result, err := s.deps.Hue.Pair(r.Context(), req.BridgeIP)
	if err != nil {
		if errors.Is(err, hue.ErrLinkButtonNotPressed) {
			writeJSON(w, http.StatusOK, hue.PairResult{
				Success: false,
				Message: "Press the link button on the bridge and try again",
			})
			return
		}
		writeError(w, http.StatusBadGateway, "pairing failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHueStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Hue.GetStatus())
}

func (s *Server) handleHueDisconnect(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Hue.Disconnect(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "disconnect failed")
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Hue.GetStatus())
}

func (s *Server) handleHueLightState(w http.ResponseWriter, r *http.Request) {
	var state hueapi.LightState
	if !decodeJSON(w, r, &state) {
		return
	}

	err := s.deps.Hue.SetLightState(r.Context(), chi.URLParam(r, "lightID"), state)
	if err != nil {
		if errors.Is(err, hue.ErrNotConnected) {
			writeError(w, http.StatusConflict, "hue bridge not connected")
			return
		}
		writeError(w, http.StatusBadGateway, "failed to set light state")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": true})
}

func (s *Server) handleHueGroupState(w http.ResponseWriter, r *http.Request) {
	var state hueapi.LightState
	if !decodeJSON(w, r, &state) {
		return
	}

	err := s.deps.Hue.SetGroupState(r.Context(), chi.URLParam(r, "groupID"), state)
	if err != nil {
		if errors.Is(err, hue.ErrNotConnected) {
			writeError(w, http.StatusConflict, "hue bridge not connected")
			return
		}
		writeError(w, http.StatusBadGateway, "failed to set group state")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"applied": true})
}
