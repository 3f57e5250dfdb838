// Package storage declares the persistence contracts of the telemetry core.
// Implementations live in pkg/database.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/google/uuid"
)

// ErrAlreadyExists is returned when a unique key is already taken.
var ErrAlreadyExists = errors.New("record already exists")

// DeviceStore reads and registers devices.
type DeviceStore interface {
	// GetDevice returns models.ErrNotFound when no device has id.
	GetDevice(ctx context.Context, id string) (*models.Device, error)
	// CreateDevice returns ErrAlreadyExists when the id is taken.
	CreateDevice(ctx context.Context, device *models.Device) error
	ListDevices(ctx context.Context, userID uuid.UUID) ([]models.Device, error)
}

// RecordReader reads records of a single device, most recent first.
type RecordReader interface {
	ListMeasurements(ctx context.Context, deviceID string, params models.ListParams) ([]models.Measurement, int, error)
	GetMeasurement(ctx context.Context, deviceID string, id int64) (*models.Measurement, error)
	LatestMeasurement(ctx context.Context, deviceID string) (*models.Measurement, error)

	ListTestResults(ctx context.Context, deviceID string, params models.ListParams) ([]models.TestResult, int, error)
	GetTestResult(ctx context.Context, deviceID string, id int64) (*models.TestResult, error)
	LatestTestResult(ctx context.Context, deviceID string) (*models.TestResult, error)
}

// Tx is the set of mutations available inside one transaction.
type Tx interface {
	// TouchDevice sets last_seen. It returns models.ErrNotFound when the
	// device vanished.
	TouchDevice(ctx context.Context, deviceID string, at time.Time) error
	// InsertMeasurement fills ID and CreatedAt of m.
	InsertMeasurement(ctx context.Context, m *models.Measurement) error
	// InsertTestResult fills ID and CreatedAt of r.
	InsertTestResult(ctx context.Context, r *models.TestResult) error
	// DeleteMeasurements removes the listed rows of deviceID only and
	// returns how many were removed.
	DeleteMeasurements(ctx context.Context, deviceID string, ids []int64) (int64, error)
	DeleteTestResults(ctx context.Context, deviceID string, ids []int64) (int64, error)
}

// Store is the full persistence surface used by the telemetry service.
type Store interface {
	DeviceStore
	RecordReader
	// WithTx runs fn in a transaction. It commits when fn returns nil and
	// rolls back otherwise, including on context cancellation.
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
