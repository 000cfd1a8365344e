package device

import "github.com/shopspring/decimal"

// Ownership assigns a device to an operator and a provider.
// The zero value is the unowned sentinel.
type Ownership struct {
	Operator string `json:"operator"`
	Provider string `json:"provider"`
}

// Unowned returns the ownership of a device with no operator or provider.
func Unowned() Ownership {
	return Ownership{}
}

// IsUnowned reports whether neither operator nor provider is assigned.
func (o Ownership) IsUnowned() bool {
	return o.Operator == "" && o.Provider == ""
}

// Coordinates are kept as exact decimals so that values survive storage
// and comparison without floating point drift.
type Coordinates struct {
	Longitude decimal.Decimal `json:"longitude"`
	Latitude  decimal.Decimal `json:"latitude"`
}

// Equal compares coordinates numerically, so 1.50 equals 1.5.
func (c Coordinates) Equal(other Coordinates) bool {
	return c.Longitude.Equal(other.Longitude) && c.Latitude.Equal(other.Latitude)
}

// Location is the physical address of a device. A device either has a
// complete Location or none at all; partial input is rejected by
// LocationInput.ToLocation before it reaches the aggregate.
type Location struct {
	Street      string      `json:"street"`
	HouseNumber string      `json:"house_number"`
	City        string      `json:"city"`
	PostalCode  string      `json:"postal_code"`
	State       string      `json:"state"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
}

// Equal reports whether two locations are the same. Two nil locations are equal.
func (l *Location) Equal(other *Location) bool {
	if l == nil || other == nil {
		return l == nil && other == nil
	}
	return l.Street == other.Street &&
		l.HouseNumber == other.HouseNumber &&
		l.City == other.City &&
		l.PostalCode == other.PostalCode &&
		l.State == other.State &&
		l.Country == other.Country &&
		l.Coordinates.Equal(other.Coordinates)
}

// clone returns a copy so callers cannot mutate aggregate state through
// a returned pointer.
func (l *Location) clone() *Location {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// Settings is the resolved operational configuration of a device.
type Settings struct {
	AutoStart     bool `json:"auto_start"`
	RemoteControl bool `json:"remote_control"`
	Billing       bool `json:"billing"`
	Reimbursement bool `json:"reimbursement"`
	ShowOnMap     bool `json:"show_on_map"`
	PublicAccess  bool `json:"public_access"`
}

// DefaultSettings returns the settings of a new or reset device.
func DefaultSettings() Settings {
	return Settings{}
}

// SettingsPatch is a field-level settings update. A nil field means
// "leave unchanged".
type SettingsPatch struct {
	AutoStart     *bool `json:"auto_start,omitempty"`
	RemoteControl *bool `json:"remote_control,omitempty"`
	Billing       *bool `json:"billing,omitempty"`
	Reimbursement *bool `json:"reimbursement,omitempty"`
	ShowOnMap     *bool `json:"show_on_map,omitempty"`
	PublicAccess  *bool `json:"public_access,omitempty"`
}

// PatchOf returns a patch that sets every field to the value in s.
func PatchOf(s Settings) SettingsPatch {
	return SettingsPatch{
		AutoStart:     &s.AutoStart,
		RemoteControl: &s.RemoteControl,
		Billing:       &s.Billing,
		Reimbursement: &s.Reimbursement,
		ShowOnMap:     &s.ShowOnMap,
		PublicAccess:  &s.PublicAccess,
	}
}

// Merge applies the present fields of p to s and reports whether any
// value actually changed.
func (s Settings) Merge(p SettingsPatch) (Settings, bool) {
	changed := false
	set := func(dst *bool, v *bool) {
		if v != nil && *dst != *v {
			*dst = *v
			changed = true
		}
	}
	set(&s.AutoStart, p.AutoStart)
	set(&s.RemoteControl, p.RemoteControl)
	set(&s.Billing, p.Billing)
	set(&s.Reimbursement, p.Reimbursement)
	set(&s.ShowOnMap, p.ShowOnMap)
	set(&s.PublicAccess, p.PublicAccess)
	return s, changed
}

// IsEmpty reports whether the patch requests no change at all.
func (p SettingsPatch) IsEmpty() bool {
	return p.AutoStart == nil && p.RemoteControl == nil && p.Billing == nil &&
		p.Reimbursement == nil && p.ShowOnMap == nil && p.PublicAccess == nil
}

// Violations lists the reasons a device is not fit to be offered to customers.
// It is derived from the device state and never stored.
type Violations struct {
	OperatorNotAssigned          bool `json:"operator_not_assigned"`
	ProviderNotAssigned          bool `json:"provider_not_assigned"`
	LocationMissing              bool `json:"location_missing"`
	ShowOnMapWithoutLocation     bool `json:"show_on_map_without_location"`
	ShowOnMapWithoutPublicAccess bool `json:"show_on_map_without_public_access"`
}

// IsValid reports whether no violation is present.
func (v Violations) IsValid() bool {
	return v == Violations{}
}

// ForCustomer describes how a device is presented to customers.
type ForCustomer string

// ForCustomer values.
const (
	UsableAndVisibleOnMap      ForCustomer = "USABLE_AND_VISIBLE_ON_MAP"
	UsableButHiddenOnMap       ForCustomer = "USABLE_BUT_HIDDEN_ON_MAP"
	InaccessibleAndHiddenOnMap ForCustomer = "INACCESSIBLE_AND_HIDDEN_ON_MAP"
)

// IsUsable reports whether customers can use the device.
func (f ForCustomer) IsUsable() bool {
	return f == UsableAndVisibleOnMap || f == UsableButHiddenOnMap
}

// Visibility is the derived customer-facing status of a device.
// RoamingEnabled currently mirrors usability.
type Visibility struct {
	RoamingEnabled bool        `json:"roaming_enabled"`
	ForCustomer    ForCustomer `json:"for_customer"`
}

// Configuration is the read view of a device returned by the Service.
// Location is nil when the device has no location.
type Configuration struct {
	DeviceID     string       `json:"device_id"`
	Ownership    Ownership    `json:"ownership"`
	Location     *Location    `json:"location"`
	OpeningHours OpeningHours `json:"opening_hours"`
	Settings     Settings     `json:"settings"`
	Violations   Violations   `json:"violations"`
	Visibility   Visibility   `json:"visibility"`
}

// Update is a partial change request. Nil facets are left untouched.
//
// Location and ClearLocation distinguish "set this location" from
// "remove the location"; supplying both is rejected by ValidateUpdate.
type Update struct {
	Location      *Location
	ClearLocation bool
	OpeningHours  *OpeningHours
	Settings      *SettingsPatch
	Ownership     *Ownership
}

// UpdateFor builds the update used when a device finishes installation
// and is handed over with its ownership and location.
func UpdateFor(ownership Ownership, location *Location) Update {
	return Update{
		Ownership: &ownership,
		Location:  location,
	}
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Location == nil && !u.ClearLocation && u.OpeningHours == nil &&
		u.Settings == nil && u.Ownership == nil
}
