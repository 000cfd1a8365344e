package events

import "context"

// Broadcaster pushes a payload to live subscribers of a channel.
// api.Hub implements it.
type Broadcaster interface {
	Broadcast(channel string, payload any)
}

// BroadcastSink forwards each envelope to a Broadcaster on a channel named
// after its event type.
type BroadcastSink struct {
	b Broadcaster
}

// NewBroadcastSink creates a sink over b.
func NewBroadcastSink(b Broadcaster) *BroadcastSink {
	return &BroadcastSink{b: b}
}

// Deliver never fails: a slow or absent subscriber only misses messages.
func (s *BroadcastSink) Deliver(_ context.Context, envs []Envelope) error {
	for _, env := range envs {
		s.b.Broadcast(env.EventType, env)
	}
	return nil
}
