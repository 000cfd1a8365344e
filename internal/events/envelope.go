package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/devices-configuration/internal/device"
)

// Envelope is the wire form of a domain event.
type Envelope struct {
	EventID    string       `json:"event_id"`
	EventType  string       `json:"event_type"`
	DeviceID   string       `json:"device_id"`
	OccurredAt time.Time    `json:"occurred_at"`
	Payload    device.Event `json:"payload"`
}

// Wrap builds one envelope per event, preserving order. All envelopes of a
// batch share the same timestamp.
func Wrap(events []device.Event, occurredAt time.Time) []Envelope {
	envs := make([]Envelope, 0, len(events))
	for _, e := range events {
		envs = append(envs, Envelope{
			EventID:    uuid.NewString(),
			EventType:  e.EventType(),
			DeviceID:   e.AggregateID(),
			OccurredAt: occurredAt.UTC(),
			Payload:    e,
		})
	}
	return envs
}
