package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timeLayout is fixed-width so that occurred_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Page size bounds for List.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Entry is one recorded configuration event.
type Entry struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	DeviceID   string          `json:"device_id"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Filter controls which entries List returns.
type Filter struct {
	DeviceID  string // optional
	EventType string // optional
	Limit     int    // default 50, max 200
	Offset    int
}

// ListResult is a page of entries plus the total matching count.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository stores and lists event history.
type Repository interface {
	Append(ctx context.Context, entries []Entry) error
	List(ctx context.Context, filter Filter) (*ListResult, error)
}

// SQLiteRepository keeps event history in the device_events table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a history repository on db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Append inserts entries in one transaction. An event ID that is already
// stored is skipped, so redelivery is harmless.
func (r *SQLiteRepository) Append(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO device_events (event_id, event_type, device_id, payload, occurred_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(event_id) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.EventID, e.EventType, e.DeviceID, string(e.Payload),
			e.OccurredAt.UTC().Format(timeLayout),
		); err != nil {
			return fmt.Errorf("inserting event %s: %w", e.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing events: %w", err)
	}
	return nil
}

// List returns entries matching the filter, most recent first. Events
// recorded in the same instant keep their insertion order reversed.
func (r *SQLiteRepository) List(ctx context.Context, filter Filter) (*ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	var conditions []string
	var args []any
	if filter.DeviceID != "" {
		conditions = append(conditions, "device_id = ?")
		args = append(args, filter.DeviceID)
	}
	if filter.EventType != "" {
		conditions = append(conditions, "event_type = ?")
		args = append(args, filter.EventType)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM device_events " + where //nolint:gosec // WHERE built from parameterised conditions
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting device events: %w", err)
	}

	query := "SELECT event_id, event_type, device_id, payload, occurred_at FROM device_events " + //nolint:gosec // WHERE built from parameterised conditions
		where + " ORDER BY occurred_at DESC, seq DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying device events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var payload, occurredAt string
		if err := rows.Scan(&e.EventID, &e.EventType, &e.DeviceID, &payload, &occurredAt); err != nil {
			return nil, fmt.Errorf("scanning device event: %w", err)
		}
		e.Payload = json.RawMessage(payload)

		t, err := time.Parse(timeLayout, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parsing event timestamp %q: %w", occurredAt, err)
		}
		e.OccurredAt = t

		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device events: %w", err)
	}

	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	}, nil
}
