package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/devices-configuration/internal/device"
)

// Sink receives the envelopes of one operation in order.
type Sink interface {
	Deliver(ctx context.Context, envs []Envelope) error
}

// MultiPublisher implements device.EventPublisher by fanning envelopes out
// to every sink. A failing sink does not stop delivery to the others.
type MultiPublisher struct {
	sinks []Sink
	now   func() time.Time
}

// NewMultiPublisher creates a publisher over the given sinks. Nil sinks are
// skipped so optional transports can be passed unconditionally.
func NewMultiPublisher(sinks ...Sink) *MultiPublisher {
	p := &MultiPublisher{now: time.Now}
	for _, s := range sinks {
		if s != nil {
			p.sinks = append(p.sinks, s)
		}
	}
	return p
}

// Publish wraps events and delivers them to all sinks.
func (p *MultiPublisher) Publish(ctx context.Context, events []device.Event) error {
	if len(events) == 0 {
		return nil
	}

	envs := Wrap(events, p.now())

	var errs []error
	for _, s := range p.sinks {
		if err := s.Deliver(ctx, envs); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, errors.Join(errs...))
	}
	return nil
}
