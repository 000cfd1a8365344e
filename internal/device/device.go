package device

// Device is the configuration aggregate of a single charging station.
//
// It is mutated only through the Apply* methods, each of which returns the
// events describing what actually changed. A call that changes nothing
// returns no events. Device is not safe for concurrent use; the Service
// loads, mutates and saves one instance per operation.
type Device struct {
	id           string
	ownership    Ownership
	location     *Location
	openingHours OpeningHours
	settings     Settings

	// version is the persisted revision this instance was loaded at.
	// Zero means the device has never been saved.
	version int64
}

// NewDevice returns an unowned device with no location, default settings
// and an always-open schedule.
func NewDevice(id string) *Device {
	return &Device{
		id:           id,
		openingHours: AlwaysOpen(),
		settings:     DefaultSettings(),
	}
}

// ID returns the device identifier.
func (d *Device) ID() string { return d.id }

// Ownership returns the current ownership.
func (d *Device) Ownership() Ownership { return d.ownership }

// Location returns a copy of the current location, or nil when absent.
func (d *Device) Location() *Location { return d.location.clone() }

// OpeningHours returns the resolved weekly schedule.
func (d *Device) OpeningHours() OpeningHours { return d.openingHours }

// Settings returns the resolved settings.
func (d *Device) Settings() Settings { return d.settings }

// Version returns the persisted revision, zero for a device never saved.
func (d *Device) Version() int64 { return d.version }

// ApplyOwnership replaces the ownership when it differs from the current one.
//
// Assigning the unowned sentinel always resets the device to defaults, so a
// device without an owner never keeps a location, custom hours or
// non-default settings. Reset events follow the OwnershipUpdated event.
func (d *Device) ApplyOwnership(ownership Ownership) []Event {
	var events []Event
	if ownership != d.ownership {
		d.ownership = ownership
		events = append(events, OwnershipUpdated{DeviceID: d.id, Ownership: ownership})
	}
	if ownership.IsUnowned() {
		events = append(events, d.ResetToDefaults()...)
	}
	return events
}

// ApplyLocation replaces the whole location, or clears it when loc is nil.
func (d *Device) ApplyLocation(loc *Location) []Event {
	if d.location.Equal(loc) {
		return nil
	}
	d.location = loc.clone()
	return []Event{LocationUpdated{DeviceID: d.id, Location: d.location.clone()}}
}

// ApplyOpeningHours replaces the weekly schedule.
func (d *Device) ApplyOpeningHours(hours OpeningHours) []Event {
	if hours == d.openingHours {
		return nil
	}
	d.openingHours = hours
	return []Event{OpeningHoursUpdated{DeviceID: d.id, OpeningHours: hours}}
}

// ApplySettings merges the present fields of the patch. A single
// SettingsUpdated event carries the full result when anything changed.
func (d *Device) ApplySettings(patch SettingsPatch) []Event {
	merged, changed := d.settings.Merge(patch)
	if !changed {
		return nil
	}
	d.settings = merged
	return []Event{SettingsUpdated{DeviceID: d.id, Settings: merged}}
}

// ResetToDefaults clears the location and restores the always-open schedule
// and default settings. Ownership is left alone. Calling it on a device
// already at defaults returns no events.
func (d *Device) ResetToDefaults() []Event {
	var events []Event
	events = append(events, d.ApplyLocation(nil)...)
	events = append(events, d.ApplyOpeningHours(AlwaysOpen())...)
	events = append(events, d.ApplySettings(PatchOf(DefaultSettings()))...)
	return events
}

// Apply runs every present facet of u in the order location, opening hours,
// ownership, settings and returns all resulting events in that order.
//
// When the ownership facet leaves the device unowned the reset it triggers
// is final: the settings patch of the same update is not applied.
func (d *Device) Apply(u Update) []Event {
	var events []Event

	switch {
	case u.ClearLocation:
		events = append(events, d.ApplyLocation(nil)...)
	case u.Location != nil:
		events = append(events, d.ApplyLocation(u.Location)...)
	}

	if u.OpeningHours != nil {
		events = append(events, d.ApplyOpeningHours(*u.OpeningHours)...)
	}

	if u.Ownership != nil {
		events = append(events, d.ApplyOwnership(*u.Ownership)...)
		if u.Ownership.IsUnowned() {
			return events
		}
	}

	if u.Settings != nil {
		events = append(events, d.ApplySettings(*u.Settings)...)
	}
	return events
}

// Configuration computes the read view of the device, including its
// violations and visibility.
func (d *Device) Configuration() Configuration {
	violations := CheckViolations(d)
	return Configuration{
		DeviceID:     d.id,
		Ownership:    d.ownership,
		Location:     d.location.clone(),
		OpeningHours: d.openingHours,
		Settings:     d.settings,
		Violations:   violations,
		Visibility:   CalculateVisibility(violations, d.settings),
	}
}

// Restore rebuilds a device from persisted state without emitting events.
// Repositories use it when loading.
func Restore(id string, ownership Ownership, loc *Location, hours OpeningHours, settings Settings, version int64) *Device {
	return &Device{
		id:           id,
		ownership:    ownership,
		location:     loc.clone(),
		openingHours: hours,
		settings:     settings,
		version:      version,
	}
}
