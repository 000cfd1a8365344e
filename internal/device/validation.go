package device

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// MaxDeviceIDLength is the longest accepted device identifier.
const MaxDeviceIDLength = 100

var (
	maxLongitude = decimal.NewFromInt(180)
	maxLatitude  = decimal.NewFromInt(90)
)

// ValidateDeviceID checks that id is non-empty, at most MaxDeviceIDLength
// bytes and free of whitespace and slashes.
func ValidateDeviceID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty", ErrInvalidDeviceID)
	}
	if len(id) > MaxDeviceIDLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidDeviceID, MaxDeviceIDLength)
	}
	if strings.ContainsFunc(id, func(r rune) bool { return unicode.IsSpace(r) || r == '/' }) {
		return fmt.Errorf("%w: %q contains whitespace or '/'", ErrInvalidDeviceID, id)
	}
	return nil
}

// LocationInput is a location as received at the boundary, where every
// field may be missing independently.
type LocationInput struct {
	Street      *string          `json:"street"`
	HouseNumber *string          `json:"house_number"`
	City        *string          `json:"city"`
	PostalCode  *string          `json:"postal_code"`
	State       *string          `json:"state"`
	Country     *string          `json:"country"`
	Coordinates *CoordinateInput `json:"coordinates"`
}

// CoordinateInput is the coordinates part of a LocationInput.
type CoordinateInput struct {
	Longitude *decimal.Decimal `json:"longitude"`
	Latitude  *decimal.Decimal `json:"latitude"`
}

// UnmarshalJSON rejects keys that are not location fields, so a misspelled
// field cannot be read as an absent one.
func (in *LocationInput) UnmarshalJSON(data []byte) error {
	type plain LocationInput

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var p plain
	if err := dec.Decode(&p); err != nil {
		if strings.HasPrefix(err.Error(), "json: unknown field ") {
			return fmt.Errorf("%w: %s", ErrInvalidLocation, strings.TrimPrefix(err.Error(), "json: "))
		}
		return err
	}
	*in = LocationInput(p)
	return nil
}

// ToLocation converts the input into a Location.
//
// It returns nil, nil when no field is present and ErrPartialLocation when
// only some are. A coordinates object counts as present even when it is
// empty. The missing field names are listed in the error.
func (in LocationInput) ToLocation() (*Location, error) {
	var lon, lat *decimal.Decimal
	if in.Coordinates != nil {
		lon, lat = in.Coordinates.Longitude, in.Coordinates.Latitude
	}

	fields := []struct {
		name    string
		present bool
	}{
		{"street", in.Street != nil},
		{"house_number", in.HouseNumber != nil},
		{"city", in.City != nil},
		{"postal_code", in.PostalCode != nil},
		{"state", in.State != nil},
		{"country", in.Country != nil},
		{"coordinates.longitude", lon != nil},
		{"coordinates.latitude", lat != nil},
	}

	var missing []string
	for _, f := range fields {
		if !f.present {
			missing = append(missing, f.name)
		}
	}
	switch len(missing) {
	case 0:
	case len(fields):
		if in.Coordinates == nil {
			return nil, nil
		}
		fallthrough
	default:
		return nil, fmt.Errorf("%w: missing %s", ErrPartialLocation, strings.Join(missing, ", "))
	}

	return &Location{
		Street:      *in.Street,
		HouseNumber: *in.HouseNumber,
		City:        *in.City,
		PostalCode:  *in.PostalCode,
		State:       *in.State,
		Country:     *in.Country,
		Coordinates: Coordinates{Longitude: *lon, Latitude: *lat},
	}, nil
}

// ValidateLocation checks a complete location. State may be empty; every
// other text field is required.
func ValidateLocation(l Location) error {
	var errs []string

	required := map[string]string{
		"street":       l.Street,
		"house_number": l.HouseNumber,
		"city":         l.City,
		"postal_code":  l.PostalCode,
	}
	for _, name := range []string{"street", "house_number", "city", "postal_code"} {
		if strings.TrimSpace(required[name]) == "" {
			errs = append(errs, name+" is required")
		}
	}

	if n := len(l.Country); n < 2 || n > 3 || strings.ToUpper(l.Country) != l.Country {
		errs = append(errs, "country must be an upper-case ISO 3166 alpha-2 or alpha-3 code")
	}

	if l.Coordinates.Longitude.Abs().GreaterThan(maxLongitude) {
		errs = append(errs, "longitude must be within -180..180")
	}
	if l.Coordinates.Latitude.Abs().GreaterThan(maxLatitude) {
		errs = append(errs, "latitude must be within -90..90")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidLocation, strings.Join(errs, "; "))
	}
	return nil
}

// ValidateUpdate checks an update before it reaches the aggregate, so that
// applying it cannot fail.
func ValidateUpdate(u Update) error {
	if u.ClearLocation && u.Location != nil {
		return fmt.Errorf("%w: location both set and cleared", ErrInvalidUpdate)
	}
	if u.Location != nil {
		if err := ValidateLocation(*u.Location); err != nil {
			return err
		}
	}
	if u.OpeningHours != nil {
		if err := u.OpeningHours.Validate(); err != nil {
			return err
		}
	}
	return nil
}
