package mqtt

import (
	"fmt"
	"strings"
)

// Topic roots.
//
// Per-device traffic lives under devices/{deviceId}/...; the service's own
// liveness lives under the system prefix.
const (
	// TopicPrefixDevices is the root of every per-device topic.
	TopicPrefixDevices = "devices"

	// TopicPrefixSystem is the root of service status topics.
	TopicPrefixSystem = "devices-configuration/system"
)

// Facet names used as the last segment of retained configuration topics.
const (
	FacetLocation     = "location"
	FacetOpeningHours = "opening_hours"
	FacetOwnership    = "ownership"
	FacetSettings     = "settings"
)

const (
	segmentEvents      = "events"
	segmentBoot        = "boot"
	deviceTopicMinPart = 3
)

// Topics builds the topic names this service publishes and subscribes to.
//
//	topics := mqtt.Topics{}
//	topics.DeviceEvent("cp-0001", "SettingsUpdated_v1")
//	// devices/cp-0001/events/SettingsUpdated_v1
type Topics struct{}

// DeviceEvent returns the topic a single domain event is published to.
//
// Example: devices/cp-0001/events/LocationUpdated_v1
func (Topics) DeviceEvent(deviceID, eventType string) string {
	return fmt.Sprintf("%s/%s/%s/%s", TopicPrefixDevices, deviceID, segmentEvents, eventType)
}

// DeviceFacet returns the retained topic holding the latest value of one
// configuration facet.
//
// Example: devices/cp-0001/settings
func (Topics) DeviceFacet(deviceID, facet string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixDevices, deviceID, facet)
}

// SystemStatus returns the retained online/offline status topic.
//
// Example: devices-configuration/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllDeviceBoots matches boot notifications from every device.
//
// Pattern: devices/+/boot
func (Topics) AllDeviceBoots() string {
	return fmt.Sprintf("%s/+/%s", TopicPrefixDevices, segmentBoot)
}

// DeviceIDFromTopic extracts the device ID from a devices/{deviceId}/...
// topic. It reports false for topics outside the device tree.
func DeviceIDFromTopic(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) < deviceTopicMinPart || parts[0] != TopicPrefixDevices || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
