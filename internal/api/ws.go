package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lorelight/lorelight-go/internal/services/pubsub"
)

const (
	wsKeepAliveInterval = 10 * time.Second
	wsWriteTimeout      = 15 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for WebSocket
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsEvent is the envelope pushed to websocket clients.
type wsEvent struct {
	Topic   string      `json:"topic"`
	Payload interface{} `json:"payload"`
}

// wsTopics lists every topic mirrored to websocket clients.
var wsTopics = []pubsub.Topic{
	pubsub.TopicSceneActivated,
	pubsub.TopicSceneDeactivated,
	pubsub.TopicPlaybackUpdated,
	pubsub.TopicPlayerCommand,
	pubsub.TopicLightConfigChanged,
	pubsub.TopicGradientUpdated,
	pubsub.TopicHueStatus,
}

// handleWebSocket streams server events to a client. An optional campaignId
// query parameter narrows scene events to a single campaign.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	filter := r.URL.Query().Get("campaignId")

	events := make(chan wsEvent, 64)
	done := make(chan struct{})
	defer close(done)

	var subs []*pubsub.Subscriber
	for _, topic := range wsTopics {
		sub := s.deps.PubSub.Subscribe(topic, filter, 16)
		subs = append(subs, sub)
		go func(topic pubsub.Topic, ch chan interface{}) {
			for msg := range ch {
				select {
				case events <- wsEvent{Topic: string(topic), Payload: msg}:
				case <-done:
					return
				}
			}
		}(topic, sub.Channel)
	}
	defer func() {
		for _, sub := range subs {
			s.deps.PubSub.Unsubscribe(sub)
		}
	}()

	// The client never sends application data; the read loop only notices
	// when the peer goes away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsKeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-events:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}
