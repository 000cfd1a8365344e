package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Repository persists device aggregates.
//
// Implementations must store coordinates exactly and must detect
// concurrent writers: Save returns ErrConflict when the stored device was
// modified after the given instance was loaded. A device that has never
// been saved (Version() == 0) replaces any stored device with the same ID.
type Repository interface {
	// Find returns the device with the given ID or ErrDeviceNotFound.
	Find(ctx context.Context, id string) (*Device, error)

	// Save writes the device and advances its version.
	Save(ctx context.Context, d *Device) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over a migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectDevice = `
	SELECT device_id, operator, provider,
		street, house_number, city, postal_code, state, country, longitude, latitude,
		auto_start, remote_control, billing, reimbursement, show_on_map, public_access,
		version
	FROM devices
	WHERE device_id = ?`

// Find loads a device and its opening hours.
func (r *SQLiteRepository) Find(ctx context.Context, id string) (*Device, error) {
	d, err := scanDevice(r.db.QueryRowContext(ctx, selectDevice, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying device: %w", err)
	}

	hours, err := r.loadOpeningHours(ctx, id)
	if err != nil {
		return nil, err
	}
	d.openingHours = hours
	return d, nil
}

// Save writes the device in a single transaction.
//
// A device loaded from the store is updated only if the stored version
// still matches; otherwise ErrConflict is returned and nothing is written.
func (r *SQLiteRepository) Save(ctx context.Context, d *Device) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC().Format(time.RFC3339)
	cols := deviceColumns(d)

	var next int64
	if d.version == 0 {
		next, err = r.replace(ctx, tx, d.id, cols, now)
		if err != nil {
			return err
		}
	} else {
		next = d.version + 1
		args := append(cols, next, now, d.id, d.version)
		res, err := tx.ExecContext(ctx, `
			UPDATE devices SET
				operator = ?, provider = ?,
				street = ?, house_number = ?, city = ?, postal_code = ?, state = ?, country = ?,
				longitude = ?, latitude = ?,
				auto_start = ?, remote_control = ?, billing = ?, reimbursement = ?,
				show_on_map = ?, public_access = ?,
				version = ?, updated_at = ?
			WHERE device_id = ? AND version = ?`,
			args...,
		)
		if err != nil {
			return fmt.Errorf("updating device: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if n == 0 {
			return ErrConflict
		}
	}

	if err := saveOpeningHours(ctx, tx, d.id, d.openingHours); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing device: %w", err)
	}
	d.version = next
	return nil
}

// replace deletes any stored device with the same ID and inserts a fresh
// row. The version continues from the replaced row so that instances
// loaded before the replace cannot overwrite it.
func (r *SQLiteRepository) replace(ctx context.Context, tx *sql.Tx, id string, cols []any, now string) (int64, error) {
	var previous int64
	err := tx.QueryRowContext(ctx, "SELECT version FROM devices WHERE device_id = ?", id).Scan(&previous)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("reading previous version: %w", err)
	}
	next := previous + 1

	if _, err := tx.ExecContext(ctx, "DELETE FROM opening_hours WHERE device_id = ?", id); err != nil {
		return 0, fmt.Errorf("deleting previous opening hours: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM devices WHERE device_id = ?", id); err != nil {
		return 0, fmt.Errorf("deleting previous device: %w", err)
	}

	args := append([]any{id}, cols...)
	args = append(args, next, now, now)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO devices (
			device_id, operator, provider,
			street, house_number, city, postal_code, state, country, longitude, latitude,
			auto_start, remote_control, billing, reimbursement, show_on_map, public_access,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting device: %w", err)
	}
	return next, nil
}

// deviceColumns returns the mutable columns in the order shared by the
// INSERT and UPDATE statements.
func deviceColumns(d *Device) []any {
	var street, houseNumber, city, postalCode, state, country, lon, lat sql.NullString
	if l := d.location; l != nil {
		street = validString(l.Street)
		houseNumber = validString(l.HouseNumber)
		city = validString(l.City)
		postalCode = validString(l.PostalCode)
		state = validString(l.State)
		country = validString(l.Country)
		lon = validString(l.Coordinates.Longitude.String())
		lat = validString(l.Coordinates.Latitude.String())
	}
	s := d.settings
	return []any{
		nullableString(d.ownership.Operator),
		nullableString(d.ownership.Provider),
		street, houseNumber, city, postalCode, state, country, lon, lat,
		boolToInt(s.AutoStart),
		boolToInt(s.RemoteControl),
		boolToInt(s.Billing),
		boolToInt(s.Reimbursement),
		boolToInt(s.ShowOnMap),
		boolToInt(s.PublicAccess),
	}
}

// saveOpeningHours rewrites the schedule rows. An always-open schedule is
// stored as no rows at all.
func saveOpeningHours(ctx context.Context, tx *sql.Tx, id string, hours OpeningHours) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM opening_hours WHERE device_id = ?", id); err != nil {
		return fmt.Errorf("clearing opening hours: %w", err)
	}
	if hours.IsAlwaysOpen() {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO opening_hours (device_id, day_of_week, kind, open_hour, close_hour) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing opening hours insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range hours {
		var openHour, closeHour sql.NullInt64
		if t.Kind == OpenHours {
			openHour = sql.NullInt64{Int64: int64(t.Open), Valid: true}
			closeHour = sql.NullInt64{Int64: int64(t.Close), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, id, i+1, string(t.Kind), openHour, closeHour); err != nil {
			return fmt.Errorf("inserting opening hours for %s: %w", weekdayAt(i), err)
		}
	}
	return nil
}

// loadOpeningHours resolves stored rows into a full week. No rows means
// always open; a missing day within a stored schedule is closed.
func (r *SQLiteRepository) loadOpeningHours(ctx context.Context, id string) (OpeningHours, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT day_of_week, kind, open_hour, close_hour FROM opening_hours WHERE device_id = ?", id)
	if err != nil {
		return OpeningHours{}, fmt.Errorf("querying opening hours: %w", err)
	}
	defer rows.Close()

	var hours OpeningHours
	for i := range hours {
		hours[i] = ClosedAllDay()
	}

	found := false
	for rows.Next() {
		var day int
		var kind string
		var openHour, closeHour sql.NullInt64
		if err := rows.Scan(&day, &kind, &openHour, &closeHour); err != nil {
			return OpeningHours{}, fmt.Errorf("scanning opening hours: %w", err)
		}
		if day < 1 || day > 7 {
			return OpeningHours{}, fmt.Errorf("opening hours: invalid day_of_week %d", day)
		}
		hours[day-1] = OpeningTime{
			Kind:  OpeningKind(kind),
			Open:  int(openHour.Int64),
			Close: int(closeHour.Int64),
		}
		found = true
	}
	if err := rows.Err(); err != nil {
		return OpeningHours{}, fmt.Errorf("iterating opening hours: %w", err)
	}

	if !found {
		return AlwaysOpen(), nil
	}
	return hours, nil
}

func scanDevice(row *sql.Row) (*Device, error) {
	d := &Device{}
	var operator, provider sql.NullString
	var street, houseNumber, city, postalCode, state, country sql.NullString
	var lon, lat decimal.NullDecimal

	err := row.Scan(
		&d.id, &operator, &provider,
		&street, &houseNumber, &city, &postalCode, &state, &country, &lon, &lat,
		&d.settings.AutoStart, &d.settings.RemoteControl, &d.settings.Billing,
		&d.settings.Reimbursement, &d.settings.ShowOnMap, &d.settings.PublicAccess,
		&d.version,
	)
	if err != nil {
		return nil, err
	}

	d.ownership = Ownership{Operator: operator.String, Provider: provider.String}

	if street.Valid {
		if !houseNumber.Valid || !city.Valid || !postalCode.Valid || !state.Valid ||
			!country.Valid || !lon.Valid || !lat.Valid {
			return nil, fmt.Errorf("device %s: stored location is incomplete", d.id)
		}
		d.location = &Location{
			Street:      street.String,
			HouseNumber: houseNumber.String,
			City:        city.String,
			PostalCode:  postalCode.String,
			State:       state.String,
			Country:     country.String,
			Coordinates: Coordinates{Longitude: lon.Decimal, Latitude: lat.Decimal},
		}
	}
	return d, nil
}

// nullableString stores the empty string as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// validString stores s as-is, including the empty string.
func validString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// MemoryRepository is an in-process Repository with the same version
// semantics as SQLiteRepository. It is safe for concurrent use.
type MemoryRepository struct {
	mu      sync.Mutex
	devices map[string]Device
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{devices: make(map[string]Device)}
}

// Find returns a copy of the stored device.
func (r *MemoryRepository) Find(_ context.Context, id string) (*Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.devices[id]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	d := stored
	d.location = stored.location.clone()
	return &d, nil
}

// Save stores a copy of the device.
func (r *MemoryRepository) Save(_ context.Context, d *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.devices[d.id]
	switch {
	case d.version == 0:
		d.version = stored.version + 1
	case !exists || stored.version != d.version:
		return ErrConflict
	default:
		d.version++
	}

	stored = *d
	stored.location = d.location.clone()
	r.devices[d.id] = stored
	return nil
}
