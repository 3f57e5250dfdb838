package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/ErfanXH/Polaris/pkg/storage"
	"github.com/google/uuid"
)

const deviceColumns = `device_id, user_id, manufacturer, model, os_version, is_active, created_at, last_seen`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDevice(row rowScanner) (*models.Device, error) {
	var d models.Device
	if err := row.Scan(
		&d.ID, &d.UserID, &d.Manufacturer, &d.Model, &d.OSVersion,
		&d.IsActive, &d.CreatedAt, &d.LastSeen,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetDevice retrieves a device by its client-chosen id
func (dm *DatabaseManager) GetDevice(ctx context.Context, id string) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE device_id = ?`

	device, err := scanDevice(dm.QueryRowWithHealthCheck(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, transportError("failed to get device", err)
	}

	return device, nil
}

// CreateDevice registers a new device. CreatedAt and LastSeen default to now.
func (dm *DatabaseManager) CreateDevice(ctx context.Context, device *models.Device) error {
	now := time.Now().UTC()
	if device.CreatedAt.IsZero() {
		device.CreatedAt = now
	}
	if device.LastSeen.IsZero() {
		device.LastSeen = device.CreatedAt
	}

	query := `
        INSERT INTO devices (` + deviceColumns + `)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := dm.ExecWithHealthCheck(ctx, query,
		device.ID, device.UserID, device.Manufacturer, device.Model, device.OSVersion,
		device.IsActive, device.CreatedAt.UTC(), device.LastSeen.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return transportError("failed to create device", err)
	}

	return nil
}

// ListDevices returns all devices owned by userID, newest first
func (dm *DatabaseManager) ListDevices(ctx context.Context, userID uuid.UUID) ([]models.Device, error) {
	query := `
        SELECT ` + deviceColumns + `
        FROM devices
        WHERE user_id = ?
        ORDER BY created_at DESC, device_id
    `

	rows, err := dm.QueryWithHealthCheck(ctx, query, userID)
	if err != nil {
		return nil, transportError("failed to list devices", err)
	}
	defer rows.Close()

	devices := []models.Device{}
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, transportError("failed to scan device", err)
		}
		devices = append(devices, *device)
	}

	if err := rows.Err(); err != nil {
		return nil, transportError("error iterating devices", err)
	}

	return devices, nil
}

// transportError marks a storage failure so callers can tell it apart from
// validation and lookup errors.
func transportError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrTransport, msg, err)
}
