// Package mqtt connects the service to its MQTT broker.
//
// The broker is the event sink for configuration changes and the source of
// charging station boot notifications:
//
//	devices/{deviceId}/events/{eventType}   domain events, not retained
//	devices/{deviceId}/{facet}              latest facet value, retained
//	devices/{deviceId}/boot                 boot notifications (inbound)
//	devices-configuration/system/status     online/offline, retained, LWT
//
// The client reconnects with exponential backoff and restores its
// subscriptions after every reconnect. Handlers are wrapped with panic
// recovery.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllDeviceBoots(), 1, handler)
package mqtt
