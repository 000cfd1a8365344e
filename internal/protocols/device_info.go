package protocols

import (
	"errors"
	"fmt"
	"time"
)

// Protocol identifies the charge point protocol a station spoke when it
// booted.
type Protocol string

// Known protocols.
const (
	ProtocolIoT16 Protocol = "IoT16"
	ProtocolIoT20 Protocol = "IoT20"
)

// Sentinel errors.
var (
	ErrDeviceInfoNotFound = errors.New("protocols: device info not found")
	ErrInvalidDeviceInfo  = errors.New("protocols: invalid device info")
	ErrInvalidMessage     = errors.New("protocols: invalid boot message")
)

// DeviceInfo is the vendor metadata a station reported about itself.
type DeviceInfo struct {
	DeviceID  string    `json:"device_id"`
	Vendor    string    `json:"vendor"`
	Model     string    `json:"model"`
	Protocol  Protocol  `json:"protocol"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks that the required fields are present.
func (i DeviceInfo) Validate() error {
	switch {
	case i.DeviceID == "":
		return fmt.Errorf("%w: device_id is required", ErrInvalidDeviceInfo)
	case i.Vendor == "":
		return fmt.Errorf("%w: vendor is required", ErrInvalidDeviceInfo)
	case i.Model == "":
		return fmt.Errorf("%w: model is required", ErrInvalidDeviceInfo)
	case i.Protocol == "":
		return fmt.Errorf("%w: protocol is required", ErrInvalidDeviceInfo)
	}
	return nil
}
