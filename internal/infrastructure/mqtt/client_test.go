package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/devices-configuration/internal/infrastructure/config"
)

// testConfig points at a broker that is never contacted: these tests
// exercise the client without connecting.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "devicescfg-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *recordingLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// =============================================================================
// Topics
// =============================================================================

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"DeviceEvent", topics.DeviceEvent("cp-1", "SettingsUpdated_v1"), "devices/cp-1/events/SettingsUpdated_v1"},
		{"DeviceFacet", topics.DeviceFacet("cp-1", FacetOpeningHours), "devices/cp-1/opening_hours"},
		{"SystemStatus", topics.SystemStatus(), "devices-configuration/system/status"},
		{"AllDeviceBoots", topics.AllDeviceBoots(), "devices/+/boot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestDeviceIDFromTopic(t *testing.T) {
	tests := []struct {
		topic  string
		wantID string
		wantOK bool
	}{
		{"devices/cp-1/boot", "cp-1", true},
		{"devices/cp-1/events/LocationUpdated_v1", "cp-1", true},
		{"devices//boot", "", false},
		{"devices/cp-1", "", false},
		{"other/cp-1/boot", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			id, ok := DeviceIDFromTopic(tt.topic)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("DeviceIDFromTopic(%q) = (%q, %v), want (%q, %v)", tt.topic, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

// =============================================================================
// Options
// =============================================================================

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "svc"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "devicescfg-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "svc" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q, want svc/secret", opts.Username, opts.Password)
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("expected auto-reconnect and clean session")
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS configured without broker.tls")
	}
}

func TestBuildClientOptionsTLS(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	if opts.Servers[0].Scheme != "ssl" {
		t.Errorf("scheme = %q, want ssl", opts.Servers[0].Scheme)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS min version not set")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "devicescfg-test")

	if !opts.WillEnabled || !opts.WillRetained {
		t.Fatal("will message must be enabled and retained")
	}
	if opts.WillTopic != (Topics{}).SystemStatus() {
		t.Errorf("WillTopic = %q", opts.WillTopic)
	}

	var p statusPayload
	if err := json.Unmarshal(opts.WillPayload, &p); err != nil {
		t.Fatalf("will payload is not JSON: %v", err)
	}
	if p.Status != statusOffline || p.Reason != "unexpected_disconnect" || p.ClientID != "devicescfg-test" {
		t.Errorf("will payload = %+v", p)
	}
}

func TestBuildStatusPayloadOmitsEmptyReason(t *testing.T) {
	data := buildStatusPayload(statusOnline, "id", "")
	if strings.Contains(string(data), "reason") {
		t.Errorf("payload %s should not contain reason", data)
	}
}

// =============================================================================
// Disconnected client
// =============================================================================

func TestPublishValidation(t *testing.T) {
	c := newClient(testConfig())

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "devices/a/boot", []byte("x"), 3, ErrInvalidQoS},
		{"oversized", "devices/a/boot", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"disconnected", "devices/a/boot", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// capturingPaho records publishes in place of a broker connection. Methods
// the tests do not call fall through to the nil embedded client.
type capturingPaho struct {
	pahomqtt.Client
	published []capturedPublish
}

type capturedPublish struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

func (p *capturingPaho) IsConnected() bool { return true }

func (p *capturingPaho) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	p.published = append(p.published, capturedPublish{topic, qos, retained, payload.([]byte)})
	return doneToken{}
}

type doneToken struct{}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (doneToken) Error() error                   { return nil }

func (doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func TestPublishRetained(t *testing.T) {
	c := newClient(testConfig())
	paho := &capturingPaho{}
	c.client = paho
	c.connected = true

	if err := c.PublishRetained("devices/cp-1/settings", []byte(`{"billing":true}`)); err != nil {
		t.Fatalf("PublishRetained() error = %v", err)
	}
	if err := c.PublishRetained("devices/cp-1/location", []byte{}); err != nil {
		t.Fatalf("PublishRetained(empty) error = %v", err)
	}

	if len(paho.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(paho.published))
	}
	for _, m := range paho.published {
		if !m.retained || m.qos != 1 {
			t.Errorf("%s: retained=%v qos=%d, want retained at qos 1", m.topic, m.retained, m.qos)
		}
	}
	if len(paho.published[1].payload) != 0 {
		t.Errorf("empty payload sent as %q", paho.published[1].payload)
	}

	c.connected = false
	if err := c.PublishRetained("devices/cp-1/settings", []byte("x")); !errors.Is(err, ErrNotConnected) {
		t.Errorf("PublishRetained() disconnected: error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeValidation(t *testing.T) {
	c := newClient(testConfig())
	noop := func(string, []byte) error { return nil }

	if err := c.Subscribe("", 1, noop); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("empty topic: error = %v", err)
	}
	if err := c.Subscribe("devices/+/boot", 3, noop); !errors.Is(err, ErrInvalidQoS) {
		t.Errorf("invalid qos: error = %v", err)
	}
	if err := c.Subscribe("devices/+/boot", 1, nil); !errors.Is(err, ErrSubscribeFailed) {
		t.Errorf("nil handler: error = %v", err)
	}
	if err := c.Subscribe("devices/+/boot", 1, noop); !errors.Is(err, ErrNotConnected) {
		t.Errorf("disconnected: error = %v", err)
	}
	if c.SubscriptionCount() != 0 || c.HasSubscription("devices/+/boot") {
		t.Error("failed subscribe must not be remembered")
	}
}

func TestHealthCheck(t *testing.T) {
	c := newClient(testConfig())

	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) = %v, want context.Canceled", err)
	}
}

func TestCloseWithoutConnection(t *testing.T) {
	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("nil Close() = %v", err)
	}

	c := newClient(testConfig())
	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestOnDisconnectCallback(t *testing.T) {
	c := newClient(testConfig())
	logger := &recordingLogger{}
	c.SetLogger(logger)

	var got error
	c.SetOnDisconnect(func(err error) { got = err })

	lost := errors.New("broker went away")
	c.handleDisconnect(lost)

	if !errors.Is(got, lost) {
		t.Errorf("callback error = %v, want %v", got, lost)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want one entry", logger.warns)
	}
}

// =============================================================================
// Handler wrapping
// =============================================================================

func TestWrapHandlerDeliversMessage(t *testing.T) {
	c := newClient(testConfig())

	var gotTopic, gotPayload string
	wrapped := c.wrapHandler(func(topic string, payload []byte) error {
		gotTopic, gotPayload = topic, string(payload)
		return nil
	})
	wrapped(nil, fakeMessage{topic: "devices/cp-1/boot", payload: []byte(`{}`)})

	if gotTopic != "devices/cp-1/boot" || gotPayload != "{}" {
		t.Errorf("handler got (%q, %q)", gotTopic, gotPayload)
	}
}

func TestWrapHandlerLogsError(t *testing.T) {
	c := newClient(testConfig())
	logger := &recordingLogger{}
	c.SetLogger(logger)

	wrapped := c.wrapHandler(func(string, []byte) error { return errors.New("bad payload") })
	wrapped(nil, fakeMessage{topic: "devices/cp-1/boot"})

	if len(logger.warns) != 1 {
		t.Errorf("warns = %v, want one entry", logger.warns)
	}
}

func TestWrapHandlerRecoversPanic(t *testing.T) {
	c := newClient(testConfig())
	logger := &recordingLogger{}
	c.SetLogger(logger)

	wrapped := c.wrapHandler(func(string, []byte) error { panic("boom") })
	wrapped(nil, fakeMessage{topic: "devices/cp-1/boot"})

	if len(logger.errors) != 1 {
		t.Errorf("errors = %v, want one entry", logger.errors)
	}
}

func TestWrapHandlerWithoutLogger(t *testing.T) {
	c := newClient(testConfig())
	wrapped := c.wrapHandler(func(string, []byte) error { panic("boom") })

	// Must not panic.
	wrapped(nil, fakeMessage{topic: "devices/cp-1/boot"})
}
