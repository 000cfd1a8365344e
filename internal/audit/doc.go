// Package audit keeps the history of device configuration events.
//
// Every event that leaves the device service is appended to the
// device_events table by Sink, and can be listed per device, newest first,
// through Repository.List. The table is append-only; nothing in the
// service reads it back to rebuild device state.
package audit
