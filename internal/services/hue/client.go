package hue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

// Client issues requests against a single paired bridge. Bridge traffic is
// plain LAN HTTP addressed by IP; there is no TLS and no retry policy.
type Client struct {
	httpClient *http.Client
	bridgeIP   string
	username   string
}

// NewClient creates a bridge client. A nil httpClient falls back to
// http.DefaultClient.
func NewClient(httpClient *http.Client, bridgeIP, username string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, bridgeIP: bridgeIP, username: username}
}

// BridgeIP returns the bridge address this client talks to.
func (c *Client) BridgeIP() string { return c.bridgeIP }

// SetLightState PUTs a state onto one light.
func (c *Client) SetLightState(ctx context.Context, lightID string, state hueapi.LightState) error {
	return c.put(ctx, hueapi.LightStateURL(c.bridgeIP, c.username, lightID), state)
}

// SetGroupState PUTs an action onto one group.
func (c *Client) SetGroupState(ctx context.Context, groupID string, state hueapi.LightState) error {
	return c.put(ctx, hueapi.GroupActionURL(c.bridgeIP, c.username, groupID), state)
}

// ApplyConfig pushes every light and group state in the config concurrently.
// Application is best-effort: one unreachable light does not roll back or stop
// the others. All individual failures are joined into the returned error.
func (c *Client) ApplyConfig(ctx context.Context, cfg *hueapi.LightConfig) error {
	if cfg.IsEmpty() {
		return nil
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		if err == nil {
			return
		}
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	for groupID, state := range cfg.Groups {
		wg.Add(1)
		go func(id string, s hueapi.LightState) {
			defer wg.Done()
			if err := c.SetGroupState(ctx, id, s); err != nil {
				record(fmt.Errorf("group %s: %w", id, err))
			}
		}(groupID, state)
	}
	for lightID, state := range cfg.Lights {
		wg.Add(1)
		go func(id string, s hueapi.LightState) {
			defer wg.Done()
			if err := c.SetLightState(ctx, id, s); err != nil {
				record(fmt.Errorf("light %s: %w", id, err))
			}
		}(lightID, state)
	}

	wg.Wait()
	return errors.Join(errs...)
}

func (c *Client) put(ctx context.Context, url string, state hueapi.LightState) error {
	body, err := json.Marshal(state)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	responses, err := hueapi.ParseResponses(data)
	if err != nil {
		return err
	}
	if apiErr := hueapi.FirstError(responses); apiErr != nil {
		return fmt.Errorf("bridge error %d: %s", apiErr.Type, apiErr.Description)
	}
	return nil
}

// Discover queries the public discovery endpoint for bridges on the caller's
// network. The server proxies this for the browser to sidestep CORS.
func Discover(ctx context.Context, httpClient *http.Client, discoveryURL string) ([]DiscoveredBridge, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bridge discovery failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discovery endpoint returned status %d", resp.StatusCode)
	}

	var bridges []DiscoveredBridge
	if err := json.NewDecoder(resp.Body).Decode(&bridges); err != nil {
		return nil, fmt.Errorf("malformed discovery response: %w", err)
	}
	return bridges, nil
}

// CreateUser asks the bridge to issue an application username. The bridge only
// grants one within ~30s of its physical link button being pressed; outside
// that window it answers with error type 101, surfaced as
// ErrLinkButtonNotPressed.
func CreateUser(ctx context.Context, httpClient *http.Client, bridgeIP string) (string, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	body, err := json.Marshal(hueapi.CreateUserRequest{DeviceType: DeviceType})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hueapi.CreateUserURL(bridgeIP), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("bridge unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	responses, err := hueapi.ParseResponses(data)
	if err != nil {
		return "", err
	}
	if apiErr := hueapi.FirstError(responses); apiErr != nil {
		if apiErr.Type == hueapi.ErrTypeLinkButtonNotPressed {
			return "", ErrLinkButtonNotPressed
		}
		return "", fmt.Errorf("bridge error %d: %s", apiErr.Type, apiErr.Description)
	}

	for _, r := range responses {
		if username, ok := r.Success["username"].(string); ok && username != "" {
			return username, nil
		}
	}
	return "", errors.New("bridge response contained no username")
}
