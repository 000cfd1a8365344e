package device

// CheckViolations derives the compliance problems of a device from its
// current state.
func CheckViolations(d *Device) Violations {
	noLocation := d.location == nil
	return Violations{
		OperatorNotAssigned:          d.ownership.Operator == "",
		ProviderNotAssigned:          d.ownership.Provider == "",
		LocationMissing:              noLocation,
		ShowOnMapWithoutLocation:     d.settings.ShowOnMap && noLocation,
		ShowOnMapWithoutPublicAccess: d.settings.ShowOnMap && !d.settings.PublicAccess,
	}
}

// CalculateVisibility derives customer visibility. A device is usable when
// it has no violations and public access is enabled.
func CalculateVisibility(v Violations, s Settings) Visibility {
	usable := v.IsValid() && s.PublicAccess
	return Visibility{
		RoamingEnabled: usable,
		ForCustomer:    ForCustomerFor(usable, s.ShowOnMap),
	}
}

// ForCustomerFor maps usability and the show-on-map wish to a ForCustomer
// value. An unusable device is hidden whatever showOnMap says.
func ForCustomerFor(usable, showOnMap bool) ForCustomer {
	switch {
	case !usable:
		return InaccessibleAndHiddenOnMap
	case showOnMap:
		return UsableAndVisibleOnMap
	default:
		return UsableButHiddenOnMap
	}
}
