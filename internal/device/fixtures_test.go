package device

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func randomID() string {
	return uuid.NewString()
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal.NewFromString(%q) error = %v", s, err)
	}
	return d
}

func ownership() Ownership {
	return Ownership{Operator: "Devicex.nl", Provider: "public-devices"}
}

func someOtherOwnership() Ownership {
	return Ownership{Operator: "Devicex.pl", Provider: "public-devices"}
}

func location(t *testing.T) *Location {
	t.Helper()
	return &Location{
		Street:      "Rakietowa",
		HouseNumber: "1A",
		City:        "Wrocław",
		PostalCode:  "54-621",
		Country:     "POL",
		Coordinates: Coordinates{
			Longitude: mustDecimal(t, "51.09836221719513"),
			Latitude:  mustDecimal(t, "16.931752852309156"),
		},
	}
}

func someOtherLocation(t *testing.T) *Location {
	t.Helper()
	return &Location{
		Street:      "Żwirki i Wigury",
		HouseNumber: "1H",
		City:        "Warszawa",
		PostalCode:  "54-202",
		Country:     "PL",
		Coordinates: Coordinates{
			Longitude: mustDecimal(t, "51.11745363251369"),
			Latitude:  mustDecimal(t, "16.997318413019084"),
		},
	}
}

func closedAtWeekend() OpeningHours {
	return OpenAt(
		Opened24h(), Opened24h(), Opened24h(), Opened24h(), Opened24h(),
		ClosedAllDay(), ClosedAllDay(),
	)
}

func allSettings(v bool) Settings {
	return Settings{
		AutoStart:     v,
		RemoteControl: v,
		Billing:       v,
		Reimbursement: v,
		ShowOnMap:     v,
		PublicAccess:  v,
	}
}

func boolPtr(b bool) *bool { return &b }

// givenDevice returns an owned device with a location and defaults
// elsewhere, as left behind by installation.
func givenDevice(t *testing.T) *Device {
	t.Helper()
	d := NewDevice(randomID())
	d.Apply(UpdateFor(ownership(), location(t)))
	return d
}

func eventTypes(events []Event) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.EventType()
	}
	return types
}

func assertEventTypes(t *testing.T, events []Event, want ...string) {
	t.Helper()
	got := eventTypes(events)
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}
