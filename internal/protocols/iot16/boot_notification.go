// Package iot16 decodes IoT 1.6 boot notifications.
package iot16

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/devices-configuration/internal/protocols"
)

// Field length limits of the IoT 1.6 BootNotification message.
const (
	maxVendorLength       = 20
	maxModelLength        = 20
	maxSerialNumberLength = 25
	maxFirmwareLength     = 50
	maxIccidLength        = 20
	maxImsiLength         = 20
	maxMeterTypeLength    = 25
)

// BootNotificationRequest is the message a station sends when it boots.
type BootNotificationRequest struct {
	ChargePointVendor       string `json:"chargePointVendor"`
	ChargePointModel        string `json:"chargePointModel"`
	ChargePointSerialNumber string `json:"chargePointSerialNumber,omitempty"`
	ChargeBoxSerialNumber   string `json:"chargeBoxSerialNumber,omitempty"`
	FirmwareVersion         string `json:"firmwareVersion,omitempty"`
	Iccid                   string `json:"iccid,omitempty"`
	Imsi                    string `json:"imsi,omitempty"`
	MeterType               string `json:"meterType,omitempty"`
	MeterSerialNumber       string `json:"meterSerialNumber,omitempty"`
}

// Validate checks required fields and length limits.
func (r BootNotificationRequest) Validate() error {
	if r.ChargePointVendor == "" {
		return fmt.Errorf("%w: chargePointVendor is required", protocols.ErrInvalidMessage)
	}
	if r.ChargePointModel == "" {
		return fmt.Errorf("%w: chargePointModel is required", protocols.ErrInvalidMessage)
	}

	limits := []struct {
		name  string
		value string
		max   int
	}{
		{"chargePointVendor", r.ChargePointVendor, maxVendorLength},
		{"chargePointModel", r.ChargePointModel, maxModelLength},
		{"chargePointSerialNumber", r.ChargePointSerialNumber, maxSerialNumberLength},
		{"chargeBoxSerialNumber", r.ChargeBoxSerialNumber, maxSerialNumberLength},
		{"firmwareVersion", r.FirmwareVersion, maxFirmwareLength},
		{"iccid", r.Iccid, maxIccidLength},
		{"imsi", r.Imsi, maxImsiLength},
		{"meterType", r.MeterType, maxMeterTypeLength},
		{"meterSerialNumber", r.MeterSerialNumber, maxSerialNumberLength},
	}
	for _, l := range limits {
		if len(l.value) > l.max {
			return fmt.Errorf("%w: %s exceeds %d characters", protocols.ErrInvalidMessage, l.name, l.max)
		}
	}
	return nil
}

// ToDeviceInfo maps the request onto DeviceInfo for deviceID.
func (r BootNotificationRequest) ToDeviceInfo(deviceID string) protocols.DeviceInfo {
	return protocols.DeviceInfo{
		DeviceID: deviceID,
		Vendor:   r.ChargePointVendor,
		Model:    r.ChargePointModel,
		Protocol: protocols.ProtocolIoT16,
	}
}

// Decode parses and validates a boot notification. It is a protocols.Decoder.
func Decode(deviceID string, payload []byte) (protocols.DeviceInfo, error) {
	var req BootNotificationRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return protocols.DeviceInfo{}, fmt.Errorf("%w: %w", protocols.ErrInvalidMessage, err)
	}
	if err := req.Validate(); err != nil {
		return protocols.DeviceInfo{}, err
	}

	info := req.ToDeviceInfo(deviceID)
	info.UpdatedAt = time.Now().UTC()
	return info, nil
}
