package telemetry

import (
	"context"
	"fmt"
	"log"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/ErfanXH/Polaris/pkg/storage"
	"github.com/google/uuid"
)

// CreateMeasurement stores a single measurement on a device owned by caller.
func (s *Service) CreateMeasurement(ctx context.Context, caller uuid.UUID, deviceID string, in models.MeasurementInput) (*models.Measurement, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	m := in.Measurement(device.ID)
	m.CreatedAt = s.now().UTC()

	err = s.write(ctx, device, func(tx storage.Tx) error {
		return tx.InsertMeasurement(ctx, &m)
	})
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// CreateTestResult stores a single test result on a device owned by caller.
func (s *Service) CreateTestResult(ctx context.Context, caller uuid.UUID, deviceID string, in models.TestResultInput) (*models.TestResult, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}

	if err := in.Validate(); err != nil {
		return nil, err
	}

	r := in.TestResult(device.ID)
	r.CreatedAt = s.now().UTC()

	err = s.write(ctx, device, func(tx storage.Tx) error {
		return tx.InsertTestResult(ctx, &r)
	})
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// BulkCreateMeasurements stores all records or none of them. The
// generated ids are only returned when returnIDs is set.
func (s *Service) BulkCreateMeasurements(ctx context.Context, caller uuid.UUID, deviceID string, records []models.MeasurementInput, returnIDs bool) (*models.BulkResult, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}

	if err := validateBatch("measurements", records, s.maxBatch); err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	ids := make([]int64, 0, len(records))

	err = s.write(ctx, device, func(tx storage.Tx) error {
		for _, in := range records {
			m := in.Measurement(device.ID)
			m.CreatedAt = createdAt
			if err := tx.InsertMeasurement(ctx, &m); err != nil {
				return err
			}
			ids = append(ids, m.ID)
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ Measurement batch of %d records for device %s failed: %v", len(records), device.ID, err)
		return nil, err
	}

	return bulkResult(len(ids), "measurement reports has successfully created", ids, returnIDs), nil
}

// BulkCreateTestResults stores all records or none of them.
func (s *Service) BulkCreateTestResults(ctx context.Context, caller uuid.UUID, deviceID string, records []models.TestResultInput, returnIDs bool) (*models.BulkResult, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}

	if err := validateBatch("test_results", records, s.maxBatch); err != nil {
		return nil, err
	}

	createdAt := s.now().UTC()
	ids := make([]int64, 0, len(records))

	err = s.write(ctx, device, func(tx storage.Tx) error {
		for _, in := range records {
			r := in.TestResult(device.ID)
			r.CreatedAt = createdAt
			if err := tx.InsertTestResult(ctx, &r); err != nil {
				return err
			}
			ids = append(ids, r.ID)
		}
		return nil
	})
	if err != nil {
		log.Printf("❌ Test result batch of %d records for device %s failed: %v", len(records), device.ID, err)
		return nil, err
	}

	return bulkResult(len(ids), "test reports has successfully created", ids, returnIDs), nil
}

func bulkResult(count int, detail string, ids []int64, returnIDs bool) *models.BulkResult {
	result := &models.BulkResult{
		Count:  count,
		Detail: fmt.Sprintf("%d %s", count, detail),
	}
	if returnIDs {
		result.IDs = ids
	}
	return result
}
