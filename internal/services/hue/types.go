// Package hue manages the connection to a Philips Hue bridge on the local
// network and applies lighting configurations to it.
package hue

import (
	"errors"

	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

// Setting keys under which bridge credentials are persisted.
const (
	SettingBridgeIP       = "hue_bridge_ip"
	SettingBridgeUsername = "hue_bridge_username"
)

// DeviceType identifies this application to the bridge during pairing.
const DeviceType = "lorelight#server"

// ErrLinkButtonNotPressed is returned by Pair when the bridge's physical link
// button has not been pressed within its ~30s pairing window. The UI prompts
// the user to press the button and retry.
var ErrLinkButtonNotPressed = errors.New("link button not pressed")

// ErrNotConnected is returned when a bridge operation is attempted before a
// bridge has been paired or connected.
var ErrNotConnected = errors.New("hue bridge not connected")

// Status describes the current bridge connection.
type Status struct {
	Connected bool   `json:"connected"`
	BridgeIP  string `json:"bridgeIp,omitempty"`
	Username  string `json:"username,omitempty"`
}

// PairResult is the outcome of a pairing attempt.
type PairResult struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message,omitempty"`
}

// DiscoveredBridge re-exports the discovery payload shape.
type DiscoveredBridge = hueapi.DiscoveredBridge
