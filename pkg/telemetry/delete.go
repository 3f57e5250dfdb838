package telemetry

import (
	"context"
	"fmt"
	"log"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/ErfanXH/Polaris/pkg/storage"
	"github.com/google/uuid"
)

// BulkDeleteMeasurements removes the listed measurements of a device owned
// by caller in one statement. Ids of other devices and unknown ids are
// skipped and not counted. An empty list deletes nothing.
func (s *Service) BulkDeleteMeasurements(ctx context.Context, caller uuid.UUID, deviceID string, ids []int64) (*models.BulkResult, error) {
	return s.bulkDelete(ctx, caller, deviceID, ids, "measurement reports", storage.Tx.DeleteMeasurements)
}

// BulkDeleteTestResults removes the listed test results of a device owned
// by caller.
func (s *Service) BulkDeleteTestResults(ctx context.Context, caller uuid.UUID, deviceID string, ids []int64) (*models.BulkResult, error) {
	return s.bulkDelete(ctx, caller, deviceID, ids, "test reports", storage.Tx.DeleteTestResults)
}

// DeleteMeasurement removes one measurement. It returns models.ErrNotFound
// when the device has no measurement with id.
func (s *Service) DeleteMeasurement(ctx context.Context, caller uuid.UUID, deviceID string, id int64) error {
	return s.deleteOne(ctx, caller, deviceID, id, storage.Tx.DeleteMeasurements)
}

// DeleteTestResult removes one test result.
func (s *Service) DeleteTestResult(ctx context.Context, caller uuid.UUID, deviceID string, id int64) error {
	return s.deleteOne(ctx, caller, deviceID, id, storage.Tx.DeleteTestResults)
}

type deleteFunc func(tx storage.Tx, ctx context.Context, deviceID string, ids []int64) (int64, error)

func (s *Service) bulkDelete(ctx context.Context, caller uuid.UUID, deviceID string, ids []int64, noun string, del deleteFunc) (*models.BulkResult, error) {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return nil, err
	}

	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return &models.BulkResult{Detail: fmt.Sprintf("0 %s has successfully deleted", noun)}, nil
	}

	var deleted int64
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		deleted, err = del(tx, ctx, device.ID, ids)
		return err
	})
	if err != nil {
		log.Printf("❌ Bulk delete of %d %s for device %s failed: %v", len(ids), noun, device.ID, err)
		return nil, err
	}

	return &models.BulkResult{
		Count:  int(deleted),
		Detail: fmt.Sprintf("%d %s has successfully deleted", deleted, noun),
	}, nil
}

func (s *Service) deleteOne(ctx context.Context, caller uuid.UUID, deviceID string, id int64, del deleteFunc) error {
	device, err := s.ResolveDevice(ctx, caller, deviceID)
	if err != nil {
		return err
	}

	var deleted int64
	err = s.store.WithTx(ctx, func(tx storage.Tx) error {
		var err error
		deleted, err = del(tx, ctx, device.ID, []int64{id})
		return err
	})
	if err != nil {
		return err
	}

	if deleted == 0 {
		return models.ErrNotFound
	}
	return nil
}

// uniqueIDs drops duplicates and keeps the first occurrence order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
