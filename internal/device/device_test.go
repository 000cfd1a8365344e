package device

import (
	"testing"
)

func TestNewDevice_Defaults(t *testing.T) {
	d := NewDevice("dev-1")

	if d.ID() != "dev-1" {
		t.Errorf("ID() = %q, want dev-1", d.ID())
	}
	if !d.Ownership().IsUnowned() {
		t.Errorf("Ownership() = %+v, want unowned", d.Ownership())
	}
	if d.Location() != nil {
		t.Errorf("Location() = %+v, want nil", d.Location())
	}
	if !d.OpeningHours().IsAlwaysOpen() {
		t.Error("OpeningHours() is not always open")
	}
	if d.Settings() != DefaultSettings() {
		t.Errorf("Settings() = %+v, want defaults", d.Settings())
	}
	if d.Version() != 0 {
		t.Errorf("Version() = %d, want 0", d.Version())
	}
}

func TestApplySettings(t *testing.T) {
	t.Run("override every field", func(t *testing.T) {
		d := givenDevice(t)
		patch := PatchOf(allSettings(true))

		events := d.ApplySettings(patch)

		assertEventTypes(t, events, EventSettingsUpdated)
		if d.Settings() != allSettings(true) {
			t.Errorf("Settings() = %+v, want all true", d.Settings())
		}
		if got := events[0].(SettingsUpdated).Settings; got != allSettings(true) {
			t.Errorf("event settings = %+v, want full snapshot", got)
		}
	})

	t.Run("single field leaves others untouched", func(t *testing.T) {
		d := givenDevice(t)
		d.ApplySettings(PatchOf(allSettings(true)))

		events := d.ApplySettings(SettingsPatch{AutoStart: boolPtr(false)})

		assertEventTypes(t, events, EventSettingsUpdated)
		want := allSettings(true)
		want.AutoStart = false
		if d.Settings() != want {
			t.Errorf("Settings() = %+v, want %+v", d.Settings(), want)
		}
	})

	t.Run("patch equal to current emits nothing", func(t *testing.T) {
		d := givenDevice(t)
		d.ApplySettings(PatchOf(allSettings(true)))

		events := d.ApplySettings(SettingsPatch{AutoStart: boolPtr(true)})

		if len(events) != 0 {
			t.Errorf("events = %v, want none", eventTypes(events))
		}
		if d.Settings() != allSettings(true) {
			t.Errorf("Settings() = %+v, want all true", d.Settings())
		}
	})

	t.Run("merge two patches", func(t *testing.T) {
		d := givenDevice(t)
		d.ApplySettings(SettingsPatch{ShowOnMap: boolPtr(true), PublicAccess: boolPtr(true)})
		d.ApplySettings(SettingsPatch{AutoStart: boolPtr(true)})

		want := Settings{AutoStart: true, ShowOnMap: true, PublicAccess: true}
		if d.Settings() != want {
			t.Errorf("Settings() = %+v, want %+v", d.Settings(), want)
		}
	})

	t.Run("same patch twice is idempotent", func(t *testing.T) {
		d := givenDevice(t)
		patch := SettingsPatch{Billing: boolPtr(true), RemoteControl: boolPtr(true)}

		first := d.ApplySettings(patch)
		second := d.ApplySettings(patch)

		assertEventTypes(t, first, EventSettingsUpdated)
		if len(second) != 0 {
			t.Errorf("second application events = %v, want none", eventTypes(second))
		}
	})

	t.Run("empty patch", func(t *testing.T) {
		d := givenDevice(t)
		if events := d.ApplySettings(SettingsPatch{}); len(events) != 0 {
			t.Errorf("events = %v, want none", eventTypes(events))
		}
	})
}

func TestApplyOwnership(t *testing.T) {
	t.Run("assign owner", func(t *testing.T) {
		d := NewDevice(randomID())

		events := d.ApplyOwnership(ownership())

		assertEventTypes(t, events, EventOwnershipUpdated)
		if d.Ownership() != ownership() {
			t.Errorf("Ownership() = %+v, want %+v", d.Ownership(), ownership())
		}
	})

	t.Run("change owner keeps configuration", func(t *testing.T) {
		d := givenDevice(t)
		d.ApplySettings(PatchOf(allSettings(true)))

		events := d.ApplyOwnership(someOtherOwnership())

		assertEventTypes(t, events, EventOwnershipUpdated)
		if d.Settings() != allSettings(true) {
			t.Errorf("Settings() = %+v, want unchanged", d.Settings())
		}
		if !d.Location().Equal(location(t)) {
			t.Error("Location() changed on ownership transfer")
		}
	})

	t.Run("same owner emits nothing", func(t *testing.T) {
		d := givenDevice(t)
		if events := d.ApplyOwnership(ownership()); len(events) != 0 {
			t.Errorf("events = %v, want none", eventTypes(events))
		}
	})

	t.Run("unowned resets everything", func(t *testing.T) {
		d := givenDevice(t)
		d.ApplySettings(PatchOf(allSettings(true)))
		d.ApplyOpeningHours(closedAtWeekend())

		events := d.ApplyOwnership(Unowned())

		assertEventTypes(t, events,
			EventOwnershipUpdated,
			EventLocationUpdated,
			EventOpeningHoursUpdated,
			EventSettingsUpdated,
		)
		if !d.Ownership().IsUnowned() {
			t.Errorf("Ownership() = %+v, want unowned", d.Ownership())
		}
		if d.Location() != nil {
			t.Error("Location() not cleared")
		}
		if !d.OpeningHours().IsAlwaysOpen() {
			t.Error("OpeningHours() not reset")
		}
		if d.Settings() != DefaultSettings() {
			t.Errorf("Settings() = %+v, want defaults", d.Settings())
		}
	})

	t.Run("unowned resets even when already unowned", func(t *testing.T) {
		d := NewDevice(randomID())
		d.ApplyLocation(location(t))

		events := d.ApplyOwnership(Unowned())

		assertEventTypes(t, events, EventLocationUpdated)
		if d.Location() != nil {
			t.Error("Location() not cleared")
		}
	})
}

func TestResetToDefaults(t *testing.T) {
	d := givenDevice(t)
	d.ApplySettings(PatchOf(allSettings(true)))

	first := d.ResetToDefaults()
	assertEventTypes(t, first, EventLocationUpdated, EventSettingsUpdated)

	second := d.ResetToDefaults()
	if len(second) != 0 {
		t.Errorf("second reset events = %v, want none", eventTypes(second))
	}

	if d.Ownership() != ownership() {
		t.Error("ResetToDefaults() changed ownership")
	}
	if d.Location() != nil || !d.OpeningHours().IsAlwaysOpen() || d.Settings() != DefaultSettings() {
		t.Error("device not at defaults after reset")
	}
}

func TestApplyLocation(t *testing.T) {
	t.Run("new device has no location", func(t *testing.T) {
		if NewDevice(randomID()).Location() != nil {
			t.Error("Location() != nil")
		}
	})

	t.Run("set location", func(t *testing.T) {
		d := NewDevice(randomID())

		events := d.ApplyLocation(location(t))

		assertEventTypes(t, events, EventLocationUpdated)
		if !d.Location().Equal(location(t)) {
			t.Errorf("Location() = %+v, want fixture", d.Location())
		}
	})

	t.Run("override location", func(t *testing.T) {
		d := givenDevice(t)

		events := d.ApplyLocation(someOtherLocation(t))

		assertEventTypes(t, events, EventLocationUpdated)
		if !d.Location().Equal(someOtherLocation(t)) {
			t.Errorf("Location() = %+v, want other fixture", d.Location())
		}
	})

	t.Run("clear location emits event with nil", func(t *testing.T) {
		d := givenDevice(t)

		events := d.ApplyLocation(nil)

		assertEventTypes(t, events, EventLocationUpdated)
		if events[0].(LocationUpdated).Location != nil {
			t.Error("event location != nil")
		}
	})

	t.Run("equal location with different scale emits nothing", func(t *testing.T) {
		d := givenDevice(t)
		same := location(t)
		same.Coordinates.Longitude = mustDecimal(t, "51.098362217195130")

		if events := d.ApplyLocation(same); len(events) != 0 {
			t.Errorf("events = %v, want none", eventTypes(events))
		}
	})

	t.Run("returned location is a copy", func(t *testing.T) {
		d := givenDevice(t)
		l := d.Location()
		l.City = "Poznań"

		if d.Location().City != "Wrocław" {
			t.Error("mutating Location() result changed the device")
		}
	})
}

func TestApplyOpeningHours(t *testing.T) {
	d := givenDevice(t)

	events := d.ApplyOpeningHours(closedAtWeekend())
	assertEventTypes(t, events, EventOpeningHoursUpdated)

	if events := d.ApplyOpeningHours(closedAtWeekend()); len(events) != 0 {
		t.Errorf("repeated hours events = %v, want none", eventTypes(events))
	}
	if d.OpeningHours() != closedAtWeekend() {
		t.Errorf("OpeningHours() = %v, want closed at weekend", d.OpeningHours())
	}
}

func TestApply_Order(t *testing.T) {
	t.Run("facet order", func(t *testing.T) {
		d := NewDevice(randomID())
		hours := closedAtWeekend()
		owner := ownership()
		settings := SettingsPatch{PublicAccess: boolPtr(true)}

		events := d.Apply(Update{
			Location:     location(t),
			OpeningHours: &hours,
			Settings:     &settings,
			Ownership:    &owner,
		})

		assertEventTypes(t, events,
			EventLocationUpdated,
			EventOpeningHoursUpdated,
			EventOwnershipUpdated,
			EventSettingsUpdated,
		)
	})

	t.Run("unowned reset follows ownership and skips settings", func(t *testing.T) {
		d := givenDevice(t)
		d.ApplySettings(PatchOf(allSettings(true)))
		unowned := Unowned()
		settings := SettingsPatch{AutoStart: boolPtr(true)}

		events := d.Apply(Update{
			Location:  someOtherLocation(t),
			Ownership: &unowned,
			Settings:  &settings,
		})

		assertEventTypes(t, events,
			EventLocationUpdated,
			EventOwnershipUpdated,
			EventLocationUpdated,
			EventSettingsUpdated,
		)
		if d.Settings() != DefaultSettings() {
			t.Errorf("Settings() = %+v, want defaults", d.Settings())
		}
		if d.Location() != nil {
			t.Error("Location() not cleared by reset")
		}
	})

	t.Run("clear location", func(t *testing.T) {
		d := givenDevice(t)

		events := d.Apply(Update{ClearLocation: true})

		assertEventTypes(t, events, EventLocationUpdated)
		if d.Location() != nil {
			t.Error("Location() not cleared")
		}
	})

	t.Run("empty update", func(t *testing.T) {
		d := givenDevice(t)
		if events := d.Apply(Update{}); len(events) != 0 {
			t.Errorf("events = %v, want none", eventTypes(events))
		}
	})
}

func TestEvents_CarryDeviceID(t *testing.T) {
	d := NewDevice("dev-42")
	owner := ownership()
	hours := closedAtWeekend()
	settings := PatchOf(allSettings(true))

	events := d.Apply(Update{
		Location:     location(t),
		OpeningHours: &hours,
		Ownership:    &owner,
		Settings:     &settings,
	})

	for _, e := range events {
		if e.AggregateID() != "dev-42" {
			t.Errorf("%s AggregateID() = %q, want dev-42", e.EventType(), e.AggregateID())
		}
	}
}
