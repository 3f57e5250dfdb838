// Package telemetry resolves device ownership and runs the ingestion and
// deletion pipelines for measurements and test results.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/ErfanXH/Polaris/pkg/storage"
	"github.com/google/uuid"
)

// DefaultMaxBatch is the largest batch accepted unless WithMaxBatch says otherwise.
const DefaultMaxBatch = 5000

// Service is safe for concurrent use. It holds no state besides its store.
type Service struct {
	store    storage.Store
	now      func() time.Time
	maxBatch int
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMaxBatch limits the number of records in one bulk upload. Zero or
// negative disables the limit.
func WithMaxBatch(n int) Option {
	return func(s *Service) {
		s.maxBatch = n
	}
}

// NewService creates a Service on top of store.
func NewService(store storage.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		now:      time.Now,
		maxBatch: DefaultMaxBatch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxBatch returns the largest accepted batch, or 0 when batches are unlimited.
func (s *Service) MaxBatch() int {
	if s.maxBatch < 0 {
		return 0
	}
	return s.maxBatch
}

// ResolveDevice returns the device if caller owns it. It is evaluated on
// every call and never cached.
func (s *Service) ResolveDevice(ctx context.Context, caller uuid.UUID, deviceID string) (*models.Device, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, models.NewValidationError("device_id", "device id must be given")
	}

	device, err := s.store.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if !device.OwnedBy(caller) {
		return nil, fmt.Errorf("device %q: %w", deviceID, models.ErrUnauthorized)
	}

	return device, nil
}

// RegisterDevice creates a device owned by caller under the client-chosen id.
func (s *Service) RegisterDevice(ctx context.Context, caller uuid.UUID, in models.DeviceInput) (*models.Device, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	device := &models.Device{
		ID:           in.DeviceID,
		UserID:       caller,
		Manufacturer: in.Manufacturer,
		Model:        in.Model,
		OSVersion:    in.OSVersion,
		IsActive:     true,
		CreatedAt:    now,
		LastSeen:     now,
	}

	if err := s.store.CreateDevice(ctx, device); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, models.NewValidationError("device_id", "device with this device id already exists")
		}
		return nil, err
	}

	log.Printf("✓ Registered device %s for user %s", device.ID, caller)
	return device, nil
}

// ListDevices returns the devices owned by caller.
func (s *Service) ListDevices(ctx context.Context, caller uuid.UUID) ([]models.Device, error) {
	return s.store.ListDevices(ctx, caller)
}

// validateBatch checks size limits and every record in order. The first
// failure is reported with its index.
func validateBatch[T interface{ Validate() error }](field string, records []T, maxBatch int) error {
	if len(records) == 0 {
		return models.NewValidationError(field, models.EmptyBatchReason)
	}
	if maxBatch > 0 && len(records) > maxBatch {
		return models.NewValidationError(field, fmt.Sprintf("at most %d records allowed per batch", maxBatch))
	}

	for i, record := range records {
		if err := record.Validate(); err != nil {
			var ve *models.ValidationError
			if errors.As(err, &ve) {
				return ve.AtIndex(i)
			}
			return &models.ValidationError{Index: i, Reason: err.Error()}
		}
	}
	return nil
}

// write runs fn in one transaction and sets the device's last_seen once.
func (s *Service) write(ctx context.Context, device *models.Device, fn func(tx storage.Tx) error) error {
	seen := s.now().UTC()

	err := s.store.WithTx(ctx, func(tx storage.Tx) error {
		if err := tx.TouchDevice(ctx, device.ID, seen); err != nil {
			return err
		}
		return fn(tx)
	})
	if err != nil {
		return err
	}

	device.LastSeen = seen
	return nil
}
