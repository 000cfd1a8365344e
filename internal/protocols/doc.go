// Package protocols ingests vendor metadata from charging station boot
// notifications.
//
// Stations announce themselves over MQTT on devices/{deviceId}/boot using
// their charge point protocol's boot message. A protocol package (such as
// iot16) decodes the message into a DeviceInfo; BootHandler stores the
// latest DeviceInfo per device.
//
// DeviceInfo is reference data only. The configuration core never reads
// it and a boot notification never changes a device's configuration.
package protocols
