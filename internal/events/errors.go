package events

import "errors"

var (
	// ErrUnknownEvent is returned for event types without a facet mapping.
	ErrUnknownEvent = errors.New("events: unknown event type")

	// ErrDeliveryFailed wraps sink failures.
	ErrDeliveryFailed = errors.New("events: delivery failed")
)
