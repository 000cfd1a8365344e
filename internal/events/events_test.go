package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/devices-configuration/internal/device"
)

type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

type fakeMQTT struct {
	published []published
	failAfter int
	err       error
}

func (f *fakeMQTT) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if f.err != nil && len(f.published) >= f.failAfter {
		return f.err
	}
	f.published = append(f.published, published{topic, payload, qos, retained})
	return nil
}

func (f *fakeMQTT) PublishRetained(topic string, payload []byte) error {
	return f.Publish(topic, payload, f.QoS(), true)
}

func (f *fakeMQTT) QoS() byte { return 1 }

type broadcast struct {
	channel string
	payload any
}

type fakeHub struct {
	sent []broadcast
}

func (h *fakeHub) Broadcast(channel string, payload any) {
	h.sent = append(h.sent, broadcast{channel, payload})
}

type recordingSink struct {
	got [][]Envelope
	err error
}

func (s *recordingSink) Deliver(_ context.Context, envs []Envelope) error {
	s.got = append(s.got, envs)
	return s.err
}

func sampleEvents() []device.Event {
	return []device.Event{
		device.OwnershipUpdated{DeviceID: "cp-1", Ownership: device.Ownership{Operator: "op", Provider: "prov"}},
		device.SettingsUpdated{DeviceID: "cp-1", Settings: device.DefaultSettings()},
	}
}

func TestWrap(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	envs := Wrap(sampleEvents(), at)

	if len(envs) != 2 {
		t.Fatalf("len(envs) = %d, want 2", len(envs))
	}
	if envs[0].EventType != device.EventOwnershipUpdated || envs[1].EventType != device.EventSettingsUpdated {
		t.Errorf("order = %s, %s", envs[0].EventType, envs[1].EventType)
	}
	if envs[0].EventID == "" || envs[0].EventID == envs[1].EventID {
		t.Error("event IDs must be unique and non-empty")
	}
	if envs[0].DeviceID != "cp-1" {
		t.Errorf("DeviceID = %q", envs[0].DeviceID)
	}
	if envs[0].OccurredAt.Location() != time.UTC || !envs[0].OccurredAt.Equal(at) {
		t.Errorf("OccurredAt = %v, want %v in UTC", envs[0].OccurredAt, at)
	}
}

func TestMQTTPublisherTopics(t *testing.T) {
	client := &fakeMQTT{}
	p := NewMQTTPublisher(client)

	if err := p.Deliver(context.Background(), Wrap(sampleEvents(), time.Now())); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	want := []struct {
		topic    string
		retained bool
	}{
		{"devices/cp-1/events/OwnershipUpdated_v2", false},
		{"devices/cp-1/ownership", true},
		{"devices/cp-1/events/SettingsUpdated_v1", false},
		{"devices/cp-1/settings", true},
	}
	if len(client.published) != len(want) {
		t.Fatalf("published %d messages, want %d", len(client.published), len(want))
	}
	for i, w := range want {
		got := client.published[i]
		if got.topic != w.topic || got.retained != w.retained || got.qos != 1 {
			t.Errorf("message %d = (%s, retained=%v, qos=%d), want (%s, retained=%v, qos=1)",
				i, got.topic, got.retained, got.qos, w.topic, w.retained)
		}
	}
}

func TestMQTTPublisherEnvelopePayload(t *testing.T) {
	client := &fakeMQTT{}
	p := NewMQTTPublisher(client)

	if err := p.Deliver(context.Background(), Wrap(sampleEvents()[:1], time.Now())); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	var body struct {
		EventID   string `json:"event_id"`
		EventType string `json:"event_type"`
		DeviceID  string `json:"device_id"`
		Payload   struct {
			Ownership device.Ownership `json:"ownership"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(client.published[0].payload, &body); err != nil {
		t.Fatalf("envelope is not JSON: %v", err)
	}
	if body.EventType != device.EventOwnershipUpdated || body.DeviceID != "cp-1" || body.EventID == "" {
		t.Errorf("envelope = %+v", body)
	}
	if body.Payload.Ownership.Operator != "op" {
		t.Errorf("payload ownership = %+v", body.Payload.Ownership)
	}

	var facet device.Ownership
	if err := json.Unmarshal(client.published[1].payload, &facet); err != nil {
		t.Fatalf("facet is not JSON: %v", err)
	}
	if facet.Provider != "prov" {
		t.Errorf("facet = %+v", facet)
	}
}

func TestMQTTPublisherStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("broker down")
	client := &fakeMQTT{failAfter: 1, err: boom}
	p := NewMQTTPublisher(client)

	err := p.Deliver(context.Background(), Wrap(sampleEvents(), time.Now()))
	if !errors.Is(err, boom) {
		t.Fatalf("Deliver() error = %v, want %v", err, boom)
	}
	if len(client.published) != 1 {
		t.Errorf("published %d messages after failure, want 1", len(client.published))
	}
}

func TestMQTTPublisherClearedLocation(t *testing.T) {
	client := &fakeMQTT{}
	p := NewMQTTPublisher(client)

	events := []device.Event{device.LocationUpdated{DeviceID: "cp-1"}}
	if err := p.Deliver(context.Background(), Wrap(events, time.Now())); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if len(client.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(client.published))
	}
	facet := client.published[1]
	if facet.topic != "devices/cp-1/location" || !facet.retained {
		t.Errorf("facet message = (%s, retained=%v), want retained devices/cp-1/location", facet.topic, facet.retained)
	}
	if len(facet.payload) != 0 {
		t.Errorf("cleared location facet = %q, want empty payload", facet.payload)
	}
}

func TestBroadcastSink(t *testing.T) {
	hub := &fakeHub{}
	s := NewBroadcastSink(hub)

	if err := s.Deliver(context.Background(), Wrap(sampleEvents(), time.Now())); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}
	if len(hub.sent) != 2 || hub.sent[0].channel != device.EventOwnershipUpdated {
		t.Errorf("broadcasts = %+v", hub.sent)
	}
}

func TestMultiPublisherFanOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	p := NewMultiPublisher(a, nil, b)

	if err := p.Publish(context.Background(), sampleEvents()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Fatalf("deliveries = %d/%d, want 1/1", len(a.got), len(b.got))
	}
	if a.got[0][0].EventID != b.got[0][0].EventID {
		t.Error("sinks must receive the same envelopes")
	}
}

func TestMultiPublisherContinuesAfterSinkFailure(t *testing.T) {
	boom := errors.New("sink failed")
	a, b := &recordingSink{err: boom}, &recordingSink{}
	p := NewMultiPublisher(a, b)

	err := p.Publish(context.Background(), sampleEvents())
	if !errors.Is(err, ErrDeliveryFailed) || !errors.Is(err, boom) {
		t.Errorf("Publish() error = %v, want ErrDeliveryFailed wrapping %v", err, boom)
	}
	if len(b.got) != 1 {
		t.Error("second sink was skipped")
	}
}

func TestMultiPublisherNoEvents(t *testing.T) {
	a := &recordingSink{}
	p := NewMultiPublisher(a)

	if err := p.Publish(context.Background(), nil); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(a.got) != 0 {
		t.Error("empty batch must not reach sinks")
	}
}
