package playback

import (
	"github.com/lorelight/lorelight-go/internal/services/pubsub"
)

// Command is a transport instruction forwarded to the playing client.
type Command struct {
	Action  string  `json:"action"`
	TrackID string  `json:"trackId,omitempty"`
	URL     string  `json:"url,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Flag    bool    `json:"flag,omitempty"`
}

// RemotePlayer forwards transport commands to the browser over the event
// stream. The browser owns the audio element and echoes state back through
// the progress reporting endpoints.
type RemotePlayer struct {
	ps *pubsub.PubSub
}

// NewRemotePlayer creates a player backed by the event stream.
func NewRemotePlayer(ps *pubsub.PubSub) *RemotePlayer {
	return &RemotePlayer{ps: ps}
}

func (p *RemotePlayer) publish(cmd Command) {
	p.ps.PublishAll(pubsub.TopicPlayerCommand, cmd)
}

func (p *RemotePlayer) Load(trackID, url string) {
	p.publish(Command{Action: "load", TrackID: trackID, URL: url})
}

func (p *RemotePlayer) Play() {
	p.publish(Command{Action: "play"})
}

func (p *RemotePlayer) Pause() {
	p.publish(Command{Action: "pause"})
}

func (p *RemotePlayer) Stop() {
	p.publish(Command{Action: "stop"})
}

func (p *RemotePlayer) Seek(position float64) {
	p.publish(Command{Action: "seek", Value: position})
}

func (p *RemotePlayer) SetVolume(volume float64) {
	p.publish(Command{Action: "volume", Value: volume})
}

func (p *RemotePlayer) SetMuted(muted bool) {
	p.publish(Command{Action: "mute", Flag: muted})
}

func (p *RemotePlayer) SetLoop(loop bool) {
	p.publish(Command{Action: "loop", Flag: loop})
}
