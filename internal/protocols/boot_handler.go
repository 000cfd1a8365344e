package protocols

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/devices-configuration/internal/infrastructure/mqtt"
)

// Decoder turns a raw boot message into DeviceInfo for the given device.
type Decoder func(deviceID string, payload []byte) (DeviceInfo, error)

// Logger is the logging interface used by BootHandler.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Observer counts boot notifications by result.
type Observer interface {
	ObserveBootNotification(result string)
}

// Boot notification results reported to the Observer.
const (
	ResultStored  = "stored"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

type noopLogger struct{}

func (noopLogger) Info(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

type noopObserver struct{}

func (noopObserver) ObserveBootNotification(string) {}

const saveTimeout = 5 * time.Second

// BootHandler stores DeviceInfo from boot notifications received on
// devices/{deviceId}/boot. Its HandleMessage method is an
// mqtt.MessageHandler.
type BootHandler struct {
	repo     Repository
	decode   Decoder
	logger   Logger
	observer Observer
}

// NewBootHandler creates a handler that decodes with decode and stores in repo.
func NewBootHandler(repo Repository, decode Decoder) *BootHandler {
	return &BootHandler{
		repo:     repo,
		decode:   decode,
		logger:   noopLogger{},
		observer: noopObserver{},
	}
}

// SetLogger sets the logger.
func (h *BootHandler) SetLogger(logger Logger) {
	h.logger = logger
}

// SetObserver sets the metrics observer.
func (h *BootHandler) SetObserver(observer Observer) {
	h.observer = observer
}

// HandleMessage decodes and stores one boot notification. Malformed
// messages are rejected with ErrInvalidMessage and nothing is stored.
func (h *BootHandler) HandleMessage(topic string, payload []byte) error {
	deviceID, ok := mqtt.DeviceIDFromTopic(topic)
	if !ok {
		h.observer.ObserveBootNotification(ResultInvalid)
		return fmt.Errorf("%w: unexpected topic %q", ErrInvalidMessage, topic)
	}

	info, err := h.decode(deviceID, payload)
	if err == nil {
		err = info.Validate()
	}
	if err != nil {
		h.observer.ObserveBootNotification(ResultInvalid)
		return fmt.Errorf("boot notification from %s: %w", deviceID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := h.repo.Save(ctx, info); err != nil {
		h.observer.ObserveBootNotification(ResultError)
		return err
	}

	h.observer.ObserveBootNotification(ResultStored)
	h.logger.Info("device booted",
		"device_id", deviceID,
		"vendor", info.Vendor,
		"model", info.Model,
		"protocol", info.Protocol,
	)
	return nil
}

// IsInvalid reports whether err was caused by a malformed message rather
// than a storage failure.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalidMessage) || errors.Is(err, ErrInvalidDeviceInfo)
}
