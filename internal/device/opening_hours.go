package device

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OpeningKind distinguishes the three shapes a day's opening time can take.
type OpeningKind string

// OpeningKind values.
const (
	Open24h   OpeningKind = "open_24h"
	Closed24h OpeningKind = "closed_24h"
	OpenHours OpeningKind = "hours"
)

// OpeningTime is a single day's schedule. Open and Close are whole hours
// and only meaningful when Kind is OpenHours.
type OpeningTime struct {
	Kind  OpeningKind `json:"kind"`
	Open  int         `json:"open,omitempty"`
	Close int         `json:"close,omitempty"`
}

// Opened24h returns a day that is open around the clock.
func Opened24h() OpeningTime {
	return OpeningTime{Kind: Open24h}
}

// ClosedAllDay returns a day on which the device is not available.
func ClosedAllDay() OpeningTime {
	return OpeningTime{Kind: Closed24h}
}

// OpenedBetween returns a day open from openHour until closeHour.
func OpenedBetween(openHour, closeHour int) OpeningTime {
	return OpeningTime{Kind: OpenHours, Open: openHour, Close: closeHour}
}

// Validate checks that the kind is known and hours fall within 0..24 with
// open before close.
func (t OpeningTime) Validate() error {
	switch t.Kind {
	case Open24h, Closed24h:
		if t.Open != 0 || t.Close != 0 {
			return fmt.Errorf("%w: %s must not carry hours", ErrInvalidOpeningHours, t.Kind)
		}
		return nil
	case OpenHours:
		if t.Open < 0 || t.Close > 24 || t.Open >= t.Close {
			return fmt.Errorf("%w: hours %d-%d out of range", ErrInvalidOpeningHours, t.Open, t.Close)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidOpeningHours, t.Kind)
	}
}

// String renders the day as "open 24h", "closed" or "08-18".
func (t OpeningTime) String() string {
	switch t.Kind {
	case Open24h:
		return "open 24h"
	case Closed24h:
		return "closed"
	default:
		return fmt.Sprintf("%02d-%02d", t.Open, t.Close)
	}
}

// OpeningHours is a weekly schedule, one entry per day from Monday
// (index 0) to Sunday (index 6). It is a value type and compares with ==.
type OpeningHours [7]OpeningTime

// AlwaysOpen returns the default schedule: open 24h every day.
func AlwaysOpen() OpeningHours {
	var h OpeningHours
	for i := range h {
		h[i] = Opened24h()
	}
	return h
}

// OpenAt builds a schedule from explicit per-day opening times.
func OpenAt(monday, tuesday, wednesday, thursday, friday, saturday, sunday OpeningTime) OpeningHours {
	return OpeningHours{monday, tuesday, wednesday, thursday, friday, saturday, sunday}
}

// IsAlwaysOpen reports whether every day is open 24h.
func (h OpeningHours) IsAlwaysOpen() bool {
	return h == AlwaysOpen()
}

// Day returns the opening time for the given weekday.
func (h OpeningHours) Day(d time.Weekday) OpeningTime {
	return h[dayIndex(d)]
}

// Validate checks every day of the schedule.
func (h OpeningHours) Validate() error {
	for i, t := range h {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%s: %w", weekdayAt(i), err)
		}
	}
	return nil
}

// dayIndex maps time.Weekday (Sunday = 0) onto the Monday-first index.
func dayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// weekdayAt is the inverse of dayIndex.
func weekdayAt(i int) time.Weekday {
	return time.Weekday((i + 1) % 7)
}

// dayNames are the JSON keys of a schedule, Monday first.
var dayNames = [7]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// MarshalJSON encodes the schedule as an object keyed by lower-case day name.
func (h OpeningHours) MarshalJSON() ([]byte, error) {
	days := make(map[string]OpeningTime, len(dayNames))
	for i, name := range dayNames {
		days[name] = h[i]
	}
	return json.Marshal(days)
}

// UnmarshalJSON decodes an object keyed by day name. Days that are not
// listed are closed, matching how stored schedules are resolved.
func (h *OpeningHours) UnmarshalJSON(data []byte) error {
	var days map[string]OpeningTime
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}

	var out OpeningHours
	for i := range out {
		out[i] = ClosedAllDay()
	}
	for name, t := range days {
		i := indexOfDay(strings.ToLower(name))
		if i < 0 {
			return fmt.Errorf("%w: unknown day %q", ErrInvalidOpeningHours, name)
		}
		out[i] = t
	}
	*h = out
	return nil
}

func indexOfDay(name string) int {
	for i, n := range dayNames {
		if n == name {
			return i
		}
	}
	return -1
}
