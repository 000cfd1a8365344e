package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/devices-configuration/internal/events"
)

// Sink appends delivered envelopes to a Repository. It implements
// events.Sink.
type Sink struct {
	repo Repository
}

// NewSink creates a sink writing to repo.
func NewSink(repo Repository) *Sink {
	return &Sink{repo: repo}
}

// Deliver stores envs as one batch.
func (s *Sink) Deliver(ctx context.Context, envs []events.Envelope) error {
	entries := make([]Entry, 0, len(envs))
	for _, env := range envs {
		payload, err := json.Marshal(env.Payload)
		if err != nil {
			return fmt.Errorf("marshalling %s payload: %w", env.EventType, err)
		}
		entries = append(entries, Entry{
			EventID:    env.EventID,
			EventType:  env.EventType,
			DeviceID:   env.DeviceID,
			Payload:    payload,
			OccurredAt: env.OccurredAt,
		})
	}

	if err := s.repo.Append(ctx, entries); err != nil {
		return fmt.Errorf("recording event history: %w", err)
	}
	return nil
}
