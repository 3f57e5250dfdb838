package telemetry

import (
	"context"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/google/uuid"
)

// ListMeasurements returns one page of measurements, most recent first.
func (s *Service) ListMeasurements(ctx context.Context, caller uuid.UUID, deviceID string, params models.ListParams) (*models.ListResponse, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	data, total, err := s.store.ListMeasurements(ctx, device.ID, params)
	if err != nil {
		return nil, err
	}

	return models.NewListResponse(data, total, params), nil
}

// GetMeasurement returns one measurement of a device owned by caller.
func (s *Service) GetMeasurement(ctx context.Context, caller uuid.UUID, deviceID string, id int64) (*models.Measurement, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}
	return s.store.GetMeasurement(ctx, device.ID, id)
}

// LatestMeasurement returns the most recent measurement of a device.
func (s *Service) LatestMeasurement(ctx context.Context, caller uuid.UUID, deviceID string) (*models.Measurement, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}
	return s.store.LatestMeasurement(ctx, device.ID)
}

// ListTestResults returns one page of test results, most recent first.
func (s *Service) ListTestResults(ctx context.Context, caller uuid.UUID, deviceID string, params models.ListParams) (*models.ListResponse, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	data, total, err := s.store.ListTestResults(ctx, device.ID, params)
	if err != nil {
		return nil, err
	}

	return models.NewListResponse(data, total, params), nil
}

// GetTestResult returns one test result of a device owned by caller.
func (s *Service) GetTestResult(ctx context.Context, caller uuid.UUID, deviceID string, id int64) (*models.TestResult, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}
	return s.store.GetTestResult(ctx, device.ID, id)
}

// LatestTestResult returns the most recent test result of a device.
func (s *Service) LatestTestResult(ctx context.Context, caller uuid.UUID, deviceID string) (*models.TestResult, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}
	return s.store.LatestTestResult(ctx, device.ID)
}
