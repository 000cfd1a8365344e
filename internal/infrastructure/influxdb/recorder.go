package influxdb

import (
	"time"

	"github.com/nerrad567/devices-configuration/internal/device"
)

// PointWriter is implemented by Client.
type PointWriter interface {
	WritePointWithTime(measurement string, tags map[string]string, fields map[string]any, timestamp time.Time)
}

// VisibilityRecorder implements device.StatusRecorder by writing one
// device_visibility point per written configuration. The series answers
// "since when has this station been hidden, and why".
type VisibilityRecorder struct {
	w   PointWriter
	now func() time.Time
}

// NewVisibilityRecorder creates a recorder on w.
func NewVisibilityRecorder(w PointWriter) *VisibilityRecorder {
	return &VisibilityRecorder{w: w, now: time.Now}
}

// RecordConfiguration writes the visibility and violations of cfg.
func (r *VisibilityRecorder) RecordConfiguration(cfg device.Configuration) {
	v := cfg.Violations

	violationCount := 0
	for _, flagged := range []bool{
		v.OperatorNotAssigned,
		v.ProviderNotAssigned,
		v.LocationMissing,
		v.ShowOnMapWithoutLocation,
		v.ShowOnMapWithoutPublicAccess,
	} {
		if flagged {
			violationCount++
		}
	}

	r.w.WritePointWithTime(
		MeasurementVisibility,
		map[string]string{
			"device_id":    cfg.DeviceID,
			"for_customer": string(cfg.Visibility.ForCustomer),
		},
		map[string]any{
			"roaming_enabled":                   cfg.Visibility.RoamingEnabled,
			"valid":                             v.IsValid(),
			"violation_count":                   violationCount,
			"operator_not_assigned":             v.OperatorNotAssigned,
			"provider_not_assigned":             v.ProviderNotAssigned,
			"location_missing":                  v.LocationMissing,
			"show_on_map_without_location":      v.ShowOnMapWithoutLocation,
			"show_on_map_without_public_access": v.ShowOnMapWithoutPublicAccess,
		},
		r.now(),
	)
}
