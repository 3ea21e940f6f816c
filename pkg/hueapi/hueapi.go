// Package hueapi provides the wire-level types and endpoint construction for
// the Philips Hue bridge LAN HTTP API.
package hueapi

import (
	"encoding/json"
	"fmt"
)

const (
	// BriMax is the maximum brightness value accepted by the bridge.
	BriMax = 254
	// HueMax is the maximum hue value accepted by the bridge.
	HueMax = 65535
	// SatMax is the maximum saturation value accepted by the bridge.
	SatMax = 254

	// ErrTypeLinkButtonNotPressed is the bridge error type returned by the
	// create-user call when the physical link button has not been pressed.
	ErrTypeLinkButtonNotPressed = 101
)

// LightState mirrors the bridge's light/group state body:
// {on, bri, hue, sat, ct, xy, transitiontime}. Pointer fields are omitted
// from the PUT body when nil so untouched attributes keep their value.
type LightState struct {
	On             *bool      `json:"on,omitempty"`
	Bri            *int       `json:"bri,omitempty"`
	Hue            *int       `json:"hue,omitempty"`
	Sat            *int       `json:"sat,omitempty"`
	CT             *int       `json:"ct,omitempty"`
	XY             *[]float64 `json:"xy,omitempty"`
	TransitionTime *int       `json:"transitiontime,omitempty"`
}

// IsOn reports whether the state explicitly turns the target on.
func (s LightState) IsOn() bool {
	return s.On != nil && *s.On
}

// LightConfig is a batch of per-light and per-group states, the shape embedded
// in scenes and saved presets.
type LightConfig struct {
	Lights map[string]LightState `json:"lights,omitempty"`
	Groups map[string]LightState `json:"groups,omitempty"`
}

// IsEmpty reports whether the config addresses no targets at all.
func (c *LightConfig) IsEmpty() bool {
	return c == nil || (len(c.Lights) == 0 && len(c.Groups) == 0)
}

// DiscoveredBridge is one entry from the public discovery endpoint.
type DiscoveredBridge struct {
	ID                string `json:"id"`
	InternalIPAddress string `json:"internalipaddress"`
	Port              int    `json:"port,omitempty"`
}

// CreateUserRequest is the pairing request body.
type CreateUserRequest struct {
	DeviceType string `json:"devicetype"`
}

// APIError is the bridge's error envelope.
type APIError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// APIResponse is one element of the array the bridge returns for writes.
type APIResponse struct {
	Success map[string]interface{} `json:"success,omitempty"`
	Error   *APIError              `json:"error,omitempty"`
}

// FirstError returns the first error in a bridge response, or nil.
func FirstError(responses []APIResponse) *APIError {
	for _, r := range responses {
		if r.Error != nil {
			return r.Error
		}
	}
	return nil
}

// ParseResponses decodes a bridge write response body.
func ParseResponses(body []byte) ([]APIResponse, error) {
	var responses []APIResponse
	if err := json.Unmarshal(body, &responses); err != nil {
		return nil, fmt.Errorf("malformed bridge response: %w", err)
	}
	return responses, nil
}

// LightStateURL builds the PUT endpoint for a single light's state.
func LightStateURL(bridgeIP, username, lightID string) string {
	return fmt.Sprintf("http://%s/api/%s/lights/%s/state", bridgeIP, username, lightID)
}

// GroupActionURL builds the PUT endpoint for a group action.
func GroupActionURL(bridgeIP, username, groupID string) string {
	return fmt.Sprintf("http://%s/api/%s/groups/%s/action", bridgeIP, username, groupID)
}

// CreateUserURL builds the pairing endpoint.
func CreateUserURL(bridgeIP string) string {
	return fmt.Sprintf("http://%s/api", bridgeIP)
}

// LightsURL builds the endpoint listing all lights.
func LightsURL(bridgeIP, username string) string {
	return fmt.Sprintf("http://%s/api/%s/lights", bridgeIP, username)
}

// GroupsURL builds the endpoint listing all groups.
func GroupsURL(bridgeIP, username string) string {
	return fmt.Sprintf("http://%s/api/%s/groups", bridgeIP, username)
}

// Bool returns a pointer to b, for building literal states.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to i, for building literal states.
func Int(i int) *int { return &i }
