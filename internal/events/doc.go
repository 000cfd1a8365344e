// Package events delivers device configuration events to the outside world.
//
// The device service hands each operation's events to a MultiPublisher,
// which wraps them in Envelopes once and passes the same envelopes to
// every Sink:
//
//	device.Service ──► MultiPublisher ──┬─► MQTTPublisher   (broker)
//	                                    └─► BroadcastSink   (WebSocket hub)
//
// Envelopes carry a unique event ID so downstream consumers can
// de-duplicate at-least-once deliveries.
package events
