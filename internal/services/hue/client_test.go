package hue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

// bridgeFake records requests and serves canned bridge responses.
type bridgeFake struct {
	mu       sync.Mutex
	requests []string
	failPath string // paths containing this substring return a bridge error
}

func (b *bridgeFake) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.requests = append(b.requests, r.Method+" "+r.URL.Path)
		b.mu.Unlock()

		if b.failPath != "" && strings.Contains(r.URL.Path, b.failPath) {
			_ = json.NewEncoder(w).Encode([]hueapi.APIResponse{
				{Error: &hueapi.APIError{Type: 3, Description: "resource not available"}},
			})
			return
		}
		_ = json.NewEncoder(w).Encode([]hueapi.APIResponse{
			{Success: map[string]interface{}{"/state/on": true}},
		})
	}
}

func (b *bridgeFake) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func newTestClient(t *testing.T, fake *bridgeFake) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)
	bridgeHost := strings.TrimPrefix(server.URL, "http://")
	return NewClient(server.Client(), bridgeHost, "testuser"), server
}

func TestClientApplyConfig_AllTargets(t *testing.T) {
	fake := &bridgeFake{}
	client, _ := newTestClient(t, fake)

	cfg := &hueapi.LightConfig{
		Lights: map[string]hueapi.LightState{
			"1": {On: hueapi.Bool(true), Bri: hueapi.Int(200)},
			"2": {On: hueapi.Bool(false)},
		},
		Groups: map[string]hueapi.LightState{
			"0": {On: hueapi.Bool(true)},
		},
	}

	if err := client.ApplyConfig(context.Background(), cfg); err != nil {
		t.Fatalf("ApplyConfig failed: %v", err)
	}
	if got := fake.requestCount(); got != 3 {
		t.Errorf("Expected 3 bridge requests, got %d", got)
	}
}

func TestClientApplyConfig_PartialFailureIsBestEffort(t *testing.T) {
	fake := &bridgeFake{failPath: "/lights/2/"}
	client, _ := newTestClient(t, fake)

	cfg := &hueapi.LightConfig{
		Lights: map[string]hueapi.LightState{
			"1": {On: hueapi.Bool(true)},
			"2": {On: hueapi.Bool(true)},
			"3": {On: hueapi.Bool(true)},
		},
	}

	err := client.ApplyConfig(context.Background(), cfg)
	if err == nil {
		t.Fatal("Expected joined error for failing light")
	}
	if !strings.Contains(err.Error(), "light 2") {
		t.Errorf("Expected error to name light 2, got: %v", err)
	}
	// The other lights were still written.
	if got := fake.requestCount(); got != 3 {
		t.Errorf("Expected all 3 requests despite failure, got %d", got)
	}
}

func TestClientApplyConfig_EmptyConfig(t *testing.T) {
	fake := &bridgeFake{}
	client, _ := newTestClient(t, fake)

	if err := client.ApplyConfig(context.Background(), &hueapi.LightConfig{}); err != nil {
		t.Fatalf("ApplyConfig on empty config failed: %v", err)
	}
	if fake.requestCount() != 0 {
		t.Error("Expected no bridge requests for empty config")
	}
}

func TestCreateUser_LinkButtonNotPressed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]hueapi.APIResponse{
			{Error: &hueapi.APIError{Type: 101, Description: "link button not pressed"}},
		})
	}))
	defer server.Close()

	_, err := CreateUser(context.Background(), server.Client(), strings.TrimPrefix(server.URL, "http://"))
	if !errors.Is(err, ErrLinkButtonNotPressed) {
		t.Errorf("Expected ErrLinkButtonNotPressed, got %v", err)
	}
}

func TestCreateUser_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req hueapi.CreateUserRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.DeviceType != DeviceType {
			t.Errorf("Expected devicetype %q, got %q", DeviceType, req.DeviceType)
		}
		_ = json.NewEncoder(w).Encode([]hueapi.APIResponse{
			{Success: map[string]interface{}{"username": "newuser123"}},
		})
	}))
	defer server.Close()

	username, err := CreateUser(context.Background(), server.Client(), strings.TrimPrefix(server.URL, "http://"))
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if username != "newuser123" {
		t.Errorf("Expected username newuser123, got %s", username)
	}
}

func TestDiscover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]DiscoveredBridge{
			{ID: "001788fffe100491", InternalIPAddress: "192.168.1.50"},
		})
	}))
	defer server.Close()

	bridges, err := Discover(context.Background(), server.Client(), server.URL)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(bridges) != 1 || bridges[0].InternalIPAddress != "192.168.1.50" {
		t.Errorf("Unexpected bridges: %+v", bridges)
	}
}

func TestDiscover_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := Discover(context.Background(), server.Client(), server.URL); err == nil {
		t.Error("Expected error for non-200 discovery response")
	}
}
