package ambience

import (
	"testing"

	"github.com/lorelight/lorelight-go/internal/services/pubsub"
	"github.com/lorelight/lorelight-go/pkg/hueapi"
)

func TestServiceDefaults(t *testing.T) {
	service := NewService(nil)
	got := service.Current()
	if got.From != DefaultFrom || got.To != DefaultTo {
		t.Errorf("Expected default gradient on startup, got %+v", got)
	}
}

func TestServicePublishesOnChange(t *testing.T) {
	ps := pubsub.New()
	sub := ps.Subscribe(pubsub.TopicGradientUpdated, "", 10)
	defer ps.Unsubscribe(sub)

	service := NewService(ps)
	cfg := &hueapi.LightConfig{
		Lights: map[string]hueapi.LightState{
			"1": {On: hueapi.Bool(true), Bri: hueapi.Int(200), Hue: hueapi.Int(0), Sat: hueapi.Int(254)},
		},
	}

	service.SetActiveScene(cfg)
	select {
	case msg := <-sub.Channel:
		pair, ok := msg.(GradientPair)
		if !ok {
			t.Fatalf("Expected GradientPair message, got %T", msg)
		}
		if pair != service.Current() {
			t.Errorf("Published %+v, current %+v", pair, service.Current())
		}
	default:
		t.Fatal("Expected a gradient update to be published")
	}

	// Setting the same config again derives the same pair and stays quiet.
	service.SetActiveScene(cfg)
	select {
	case msg := <-sub.Channel:
		t.Errorf("Expected no publish for unchanged gradient, got %+v", msg)
	default:
	}
}

func TestServiceClearFallsBackToStandalone(t *testing.T) {
	service := NewService(nil)

	standalone := &hueapi.LightConfig{
		Lights: map[string]hueapi.LightState{
			"1": {On: hueapi.Bool(true), Bri: hueapi.Int(200), Hue: hueapi.Int(43690), Sat: hueapi.Int(254)},
		},
	}
	sceneCfg := &hueapi.LightConfig{
		Lights: map[string]hueapi.LightState{
			"1": {On: hueapi.Bool(true), Bri: hueapi.Int(200), Hue: hueapi.Int(0), Sat: hueapi.Int(254)},
		},
	}

	service.SetStandalone(standalone)
	fromStandalone := service.Current()

	service.SetActiveScene(sceneCfg)
	if service.Current() == fromStandalone {
		t.Error("Expected scene config to override standalone gradient")
	}

	service.ClearActiveScene()
	if service.Current() != fromStandalone {
		t.Errorf("Expected fallback to standalone gradient, got %+v", service.Current())
	}
}
