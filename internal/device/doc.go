// Package device holds the configuration aggregate of a charging station
// and the service that updates it.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                          device package                          │
//	│                                                                  │
//	│  ┌────────────────┐    ┌────────────────┐    ┌────────────────┐  │
//	│  │    Service     │    │     Device     │    │   Repository   │  │
//	│  │  (service.go)  │───▶│  (device.go)   │    │(repository.go) │  │
//	│  │                │    │                │    │                │  │
//	│  │ • Get          │    │ • merge rules  │    │ • SQLite       │  │
//	│  │ • Create       │    │ • reset        │    │ • in-memory    │  │
//	│  │ • Update       │    │ • events       │    │ • versioning   │  │
//	│  └────────────────┘    └────────────────┘    └────────────────┘  │
//	│          │                      │                                │
//	│          ▼                      ▼                                │
//	│   EventPublisher        Violations / Visibility                  │
//	│                           (violations.go)                        │
//	└──────────────────────────────────────────────────────────────────┘
//
// # Facets
//
// A device has four independently updatable facets:
//
//   - Ownership: operator and provider. The zero value means unowned.
//   - Location: a complete address with exact decimal coordinates, or nil.
//   - OpeningHours: one OpeningTime per weekday, always open by default.
//   - Settings: six booleans, all false by default.
//
// Location and OpeningHours are replaced wholesale. Settings are patched
// field by field through SettingsPatch. Assigning the unowned ownership
// resets location, opening hours and settings to their defaults.
//
// # Events
//
// Every Apply* method returns the events for what it changed and nothing
// for a no-op. Device.Apply orders them location, opening hours,
// ownership, settings, with reset events following OwnershipUpdated.
//
// # Derived state
//
// Violations and Visibility are computed from the current state on every
// read and are never stored. A device is usable when it has no violations
// and public access is enabled.
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db.DB)
//	svc := device.NewService(repo, publisher)
//	svc.SetLogger(log)
//
//	cfg, err := svc.CreateNewDevice(ctx, "EVB-P4562137",
//	    device.UpdateFor(device.Ownership{Operator: "Devicex.nl", Provider: "public-devices"}, loc))
//
//	cfg, found, err := svc.Get(ctx, "EVB-P4562137")
package device
