package protocols

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository stores the latest DeviceInfo per device.
type Repository interface {
	Save(ctx context.Context, info DeviceInfo) error
	Find(ctx context.Context, deviceID string) (DeviceInfo, error)
}

// SQLiteRepository implements Repository on the device_info table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository over a migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save inserts or replaces the device's info. A zero UpdatedAt is set to
// the current time.
func (r *SQLiteRepository) Save(ctx context.Context, info DeviceInfo) error {
	if err := info.Validate(); err != nil {
		return err
	}
	if info.UpdatedAt.IsZero() {
		info.UpdatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO device_info (device_id, vendor, model, protocol, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			vendor = excluded.vendor,
			model = excluded.model,
			protocol = excluded.protocol,
			updated_at = excluded.updated_at`,
		info.DeviceID, info.Vendor, info.Model, string(info.Protocol),
		info.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("saving device info %s: %w", info.DeviceID, err)
	}
	return nil
}

// Find returns the stored info or ErrDeviceInfoNotFound.
func (r *SQLiteRepository) Find(ctx context.Context, deviceID string) (DeviceInfo, error) {
	var (
		info      DeviceInfo
		protocol  string
		updatedAt string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT device_id, vendor, model, protocol, updated_at
		FROM device_info
		WHERE device_id = ?`, deviceID,
	).Scan(&info.DeviceID, &info.Vendor, &info.Model, &protocol, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return DeviceInfo{}, ErrDeviceInfoNotFound
	}
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("querying device info %s: %w", deviceID, err)
	}

	info.Protocol = Protocol(protocol)
	info.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("parsing updated_at of %s: %w", deviceID, err)
	}
	return info, nil
}
