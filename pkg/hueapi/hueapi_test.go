package hueapi

import (
	"encoding/json"
	"testing"
)

func TestLightStateMarshal_OmitsUnsetFields(t *testing.T) {
	state := LightState{On: Bool(true), Bri: Int(200)}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(data)
	want := `{"on":true,"bri":200}`
	if got != want {
		t.Errorf("Marshal = %s, want %s", got, want)
	}
}

func TestLightStateMarshal_FullBody(t *testing.T) {
	xy := []float64{0.3, 0.4}
	state := LightState{
		On:             Bool(true),
		Bri:            Int(254),
		Hue:            Int(46920),
		Sat:            Int(254),
		CT:             Int(366),
		XY:             &xy,
		TransitionTime: Int(4),
	}

	data, err := json.Marshal(state)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"on", "bri", "hue", "sat", "ct", "xy", "transitiontime"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("Expected key %q in body %s", key, data)
		}
	}
}

func TestParseResponses_Error(t *testing.T) {
	body := []byte(`[{"error":{"type":101,"address":"","description":"link button not pressed"}}]`)

	responses, err := ParseResponses(body)
	if err != nil {
		t.Fatalf("ParseResponses failed: %v", err)
	}

	apiErr := FirstError(responses)
	if apiErr == nil {
		t.Fatal("Expected an error in response")
	}
	if apiErr.Type != ErrTypeLinkButtonNotPressed {
		t.Errorf("Expected type 101, got %d", apiErr.Type)
	}
}

func TestParseResponses_Success(t *testing.T) {
	body := []byte(`[{"success":{"username":"abc123"}}]`)

	responses, err := ParseResponses(body)
	if err != nil {
		t.Fatalf("ParseResponses failed: %v", err)
	}
	if FirstError(responses) != nil {
		t.Error("Expected no error")
	}
	if len(responses) != 1 || responses[0].Success["username"] != "abc123" {
		t.Errorf("Unexpected responses: %+v", responses)
	}
}

func TestParseResponses_Malformed(t *testing.T) {
	if _, err := ParseResponses([]byte(`{not json`)); err == nil {
		t.Error("Expected error for malformed body")
	}
}

func TestEndpointURLs(t *testing.T) {
	if got := LightStateURL("192.168.1.2", "user1", "3"); got != "http://192.168.1.2/api/user1/lights/3/state" {
		t.Errorf("LightStateURL = %s", got)
	}
	if got := GroupActionURL("192.168.1.2", "user1", "0"); got != "http://192.168.1.2/api/user1/groups/0/action" {
		t.Errorf("GroupActionURL = %s", got)
	}
	if got := CreateUserURL("192.168.1.2"); got != "http://192.168.1.2/api" {
		t.Errorf("CreateUserURL = %s", got)
	}
}

func TestLightConfigIsEmpty(t *testing.T) {
	var nilCfg *LightConfig
	if !nilCfg.IsEmpty() {
		t.Error("nil config should be empty")
	}
	if !(&LightConfig{}).IsEmpty() {
		t.Error("zero config should be empty")
	}
	cfg := &LightConfig{Lights: map[string]LightState{"1": {On: Bool(true)}}}
	if cfg.IsEmpty() {
		t.Error("config with a light should not be empty")
	}
}
