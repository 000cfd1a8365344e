package device

// Versioned event type names. Consumers dispatch on these, so a change to
// an event's payload shape must bump its version.
const (
	EventLocationUpdated     = "LocationUpdated_v1"
	EventOpeningHoursUpdated = "OpeningHoursUpdated_v1"
	EventOwnershipUpdated    = "OwnershipUpdated_v2"
	EventSettingsUpdated     = "SettingsUpdated_v1"
)

// Event is a notification that one facet of a device changed.
// Each event carries the full new value of its facet.
type Event interface {
	EventType() string
	AggregateID() string
}

// LocationUpdated is emitted when a device's location is set, replaced or
// cleared. Location is nil when cleared.
type LocationUpdated struct {
	DeviceID string    `json:"device_id"`
	Location *Location `json:"location"`
}

// OpeningHoursUpdated is emitted when a device's weekly schedule changes.
type OpeningHoursUpdated struct {
	DeviceID     string       `json:"device_id"`
	OpeningHours OpeningHours `json:"opening_hours"`
}

// OwnershipUpdated is emitted when a device changes hands or becomes unowned.
type OwnershipUpdated struct {
	DeviceID  string    `json:"device_id"`
	Ownership Ownership `json:"ownership"`
}

// SettingsUpdated is emitted once per change, carrying the full resulting
// settings rather than the individual fields that moved.
type SettingsUpdated struct {
	DeviceID string   `json:"device_id"`
	Settings Settings `json:"settings"`
}

func (e LocationUpdated) EventType() string     { return EventLocationUpdated }
func (e OpeningHoursUpdated) EventType() string { return EventOpeningHoursUpdated }
func (e OwnershipUpdated) EventType() string    { return EventOwnershipUpdated }
func (e SettingsUpdated) EventType() string     { return EventSettingsUpdated }

func (e LocationUpdated) AggregateID() string     { return e.DeviceID }
func (e OpeningHoursUpdated) AggregateID() string { return e.DeviceID }
func (e OwnershipUpdated) AggregateID() string    { return e.DeviceID }
func (e SettingsUpdated) AggregateID() string     { return e.DeviceID }
