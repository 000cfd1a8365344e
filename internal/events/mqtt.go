package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/devices-configuration/internal/device"
	"github.com/nerrad567/devices-configuration/internal/infrastructure/mqtt"
)

// MQTTClient is the part of mqtt.Client the publisher uses.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	PublishRetained(topic string, payload []byte) error
	QoS() byte
}

// MQTTPublisher publishes each envelope to devices/{id}/events/{type} and
// the facet value it carries, retained, to devices/{id}/{facet}. A removed
// location is published as an empty retained payload, which deletes the
// retained message on the broker.
type MQTTPublisher struct {
	client MQTTClient
}

// NewMQTTPublisher creates a publisher on an MQTT client.
func NewMQTTPublisher(client MQTTClient) *MQTTPublisher {
	return &MQTTPublisher{client: client}
}

// Deliver publishes envelopes in order and stops at the first failure, so
// a consumer never sees a later event without the earlier ones.
func (p *MQTTPublisher) Deliver(ctx context.Context, envs []Envelope) error {
	topics := mqtt.Topics{}
	qos := p.client.QoS()

	for _, env := range envs {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("marshalling %s: %w", env.EventType, err)
		}
		if err := p.client.Publish(topics.DeviceEvent(env.DeviceID, env.EventType), data, qos, false); err != nil {
			return fmt.Errorf("publishing %s for %s: %w", env.EventType, env.DeviceID, err)
		}

		name, value, err := facet(env.Payload)
		if err != nil {
			return err
		}
		state := []byte{}
		if value != nil {
			if state, err = json.Marshal(value); err != nil {
				return fmt.Errorf("marshalling %s facet: %w", name, err)
			}
		}
		if err := p.client.PublishRetained(topics.DeviceFacet(env.DeviceID, name), state); err != nil {
			return fmt.Errorf("publishing %s facet for %s: %w", name, env.DeviceID, err)
		}
	}

	return nil
}

// facet returns the retained-topic facet name and current value carried by
// an event. The value is nil for a removed location.
func facet(e device.Event) (name string, value any, err error) {
	switch ev := e.(type) {
	case device.LocationUpdated:
		if ev.Location == nil {
			return mqtt.FacetLocation, nil, nil
		}
		return mqtt.FacetLocation, ev.Location, nil
	case device.OpeningHoursUpdated:
		return mqtt.FacetOpeningHours, ev.OpeningHours, nil
	case device.OwnershipUpdated:
		return mqtt.FacetOwnership, ev.Ownership, nil
	case device.SettingsUpdated:
		return mqtt.FacetSettings, ev.Settings, nil
	default:
		return "", nil, fmt.Errorf("%w: %T", ErrUnknownEvent, e)
	}
}
