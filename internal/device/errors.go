package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrDeviceNotFound is returned by a Repository when a device ID does not exist.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrConflict is returned by a Repository when the stored device changed
	// after it was loaded.
	ErrConflict = errors.New("device: concurrent modification")

	// ErrInvalidDeviceID is returned when a device ID is empty, too long or
	// contains whitespace.
	ErrInvalidDeviceID = errors.New("device: invalid device id")

	// ErrPartialLocation is returned when some but not all location fields
	// are supplied.
	ErrPartialLocation = errors.New("device: partial location")

	// ErrInvalidLocation is returned when a complete location has values
	// out of range.
	ErrInvalidLocation = errors.New("device: invalid location")

	// ErrInvalidOpeningHours is returned when a day's opening time is malformed.
	ErrInvalidOpeningHours = errors.New("device: invalid opening hours")

	// ErrInvalidUpdate is returned when an update is contradictory, such as
	// setting and clearing the location at once.
	ErrInvalidUpdate = errors.New("device: invalid update")
)
