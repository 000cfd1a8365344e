package device

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Logger defines the logging interface used by the Service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EventPublisher receives the events of one operation, in the order they
// were produced, after the device has been saved.
type EventPublisher interface {
	Publish(ctx context.Context, events []Event) error
}

// StatusRecorder receives every configuration the Service returns from a
// write, for visibility history.
type StatusRecorder interface {
	RecordConfiguration(cfg Configuration)
}

// Observer receives operation timings and published event counts.
type Observer interface {
	ObserveOperation(operation, outcome string, elapsed time.Duration)
	ObserveEvent(eventType string)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, []Event) error { return nil }

type noopRecorder struct{}

func (noopRecorder) RecordConfiguration(Configuration) {}

type noopObserver struct{}

func (noopObserver) ObserveOperation(string, string, time.Duration) {}
func (noopObserver) ObserveEvent(string)                            {}

// Operation names reported to the Observer.
const (
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
)

// Outcomes reported to the Observer.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Service loads devices, applies updates to them, saves them and returns
// their configuration view.
//
// Each call works on exactly one device. Concurrent writers to the same
// device are detected by the Repository and reported as ErrConflict; the
// Service does not retry.
type Service struct {
	repo      Repository
	publisher EventPublisher
	recorder  StatusRecorder
	observer  Observer
	logger    Logger
	now       func() time.Time
}

// NewService creates a Service. A nil publisher discards events.
func NewService(repo Repository, publisher EventPublisher) *Service {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		recorder:  noopRecorder{},
		observer:  noopObserver{},
		logger:    noopLogger{},
		now:       time.Now,
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// SetRecorder sets the recorder that receives written configurations.
func (s *Service) SetRecorder(recorder StatusRecorder) {
	s.recorder = recorder
}

// SetObserver sets the metrics observer.
func (s *Service) SetObserver(observer Observer) {
	s.observer = observer
}

// Get returns the configuration of a device. The boolean is false when no
// such device exists; that is not an error.
func (s *Service) Get(ctx context.Context, id string) (cfg Configuration, found bool, err error) {
	defer s.observe(OpGet, s.now(), &found, &err)

	d, err := s.repo.Find(ctx, id)
	if errors.Is(err, ErrDeviceNotFound) {
		return Configuration{}, false, nil
	}
	if err != nil {
		return Configuration{}, false, fmt.Errorf("loading device %s: %w", id, err)
	}
	return d.Configuration(), true, nil
}

// CreateNewDevice builds a fresh device, applies the update and saves it,
// replacing any device stored under the same ID.
func (s *Service) CreateNewDevice(ctx context.Context, id string, u Update) (cfg Configuration, err error) {
	found := true
	defer s.observe(OpCreate, s.now(), &found, &err)

	if err := s.validate(id, u); err != nil {
		return Configuration{}, err
	}

	d := NewDevice(id)
	events := d.Apply(u)
	if err := s.repo.Save(ctx, d); err != nil {
		return Configuration{}, fmt.Errorf("saving device %s: %w", id, err)
	}

	s.logger.Info("device created", "device_id", id, "events", len(events))
	return s.afterSave(ctx, d, events), nil
}

// Update applies the present facets of u to an existing device and saves it.
// The boolean is false when no such device exists or the id is malformed.
// An unknown device is reported as not found even if u is invalid.
func (s *Service) Update(ctx context.Context, id string, u Update) (cfg Configuration, found bool, err error) {
	defer s.observe(OpUpdate, s.now(), &found, &err)

	if err := ValidateDeviceID(id); err != nil {
		return Configuration{}, false, err
	}

	d, err := s.repo.Find(ctx, id)
	if errors.Is(err, ErrDeviceNotFound) {
		return Configuration{}, false, nil
	}
	if err != nil {
		return Configuration{}, false, fmt.Errorf("loading device %s: %w", id, err)
	}

	if err := ValidateUpdate(u); err != nil {
		return Configuration{}, true, err
	}

	events := d.Apply(u)
	if len(events) == 0 {
		s.logger.Debug("device update changed nothing", "device_id", id)
		return d.Configuration(), true, nil
	}

	if err := s.repo.Save(ctx, d); err != nil {
		return Configuration{}, true, fmt.Errorf("saving device %s: %w", id, err)
	}

	s.logger.Info("device updated", "device_id", id, "events", len(events))
	return s.afterSave(ctx, d, events), true, nil
}

func (s *Service) validate(id string, u Update) error {
	if err := ValidateDeviceID(id); err != nil {
		return err
	}
	return ValidateUpdate(u)
}

// afterSave publishes events and records the resulting configuration.
// A publish failure is logged; the saved state stands.
func (s *Service) afterSave(ctx context.Context, d *Device, events []Event) Configuration {
	cfg := d.Configuration()

	if len(events) > 0 {
		if err := s.publisher.Publish(ctx, events); err != nil {
			s.logger.Error("publishing device events failed",
				"device_id", d.id,
				"events", len(events),
				"error", err,
			)
		} else {
			for _, e := range events {
				s.observer.ObserveEvent(e.EventType())
			}
		}
	}

	s.recorder.RecordConfiguration(cfg)
	return cfg
}

func (s *Service) observe(op string, start time.Time, found *bool, err *error) {
	s.observer.ObserveOperation(op, outcomeOf(*found, *err), s.now().Sub(start))
}

func outcomeOf(found bool, err error) string {
	switch {
	case err == nil && !found:
		return OutcomeNotFound
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrConflict):
		return OutcomeConflict
	case IsValidationError(err):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// IsValidationError reports whether err was caused by rejected input
// rather than a storage or infrastructure failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidDeviceID) ||
		errors.Is(err, ErrPartialLocation) ||
		errors.Is(err, ErrInvalidLocation) ||
		errors.Is(err, ErrInvalidOpeningHours) ||
		errors.Is(err, ErrInvalidUpdate)
}
