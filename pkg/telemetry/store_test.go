package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/ErfanXH/Polaris/pkg/storage"
	"github.com/google/uuid"
)

// memoryStore is an in-memory storage.Store. Transactions work on a copy
// of the record maps that replaces the originals only on commit.
type memoryStore struct {
	mu           sync.Mutex
	devices      map[string]models.Device
	measurements map[int64]models.Measurement
	testResults  map[int64]models.TestResult
	nextID       int64

	// spies
	touches int
	commits int

	// failAfterInserts makes the n-th insert of a transaction fail with a
	// transport error when positive.
	failAfterInserts int
	failDelete       bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		devices:      map[string]models.Device{},
		measurements: map[int64]models.Measurement{},
		testResults:  map[int64]models.TestResult{},
	}
}

func (s *memoryStore) addDevice(id string, owner uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[id] = models.Device{ID: id, UserID: owner, IsActive: true}
}

func (s *memoryStore) count(deviceID string) (measurements, testResults int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.measurements {
		if m.DeviceID == deviceID {
			measurements++
		}
	}
	for _, r := range s.testResults {
		if r.DeviceID == deviceID {
			testResults++
		}
	}
	return measurements, testResults
}

func (s *memoryStore) GetDevice(_ context.Context, id string) (*models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &d, nil
}

func (s *memoryStore) CreateDevice(_ context.Context, device *models.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.devices[device.ID]; ok {
		return storage.ErrAlreadyExists
	}
	s.devices[device.ID] = *device
	return nil
}

func (s *memoryStore) ListDevices(_ context.Context, userID uuid.UUID) ([]models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Device{}
	for _, d := range s.devices {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) ListMeasurements(_ context.Context, deviceID string, params models.ListParams) ([]models.Measurement, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.Measurement
	for _, m := range s.measurements {
		if m.DeviceID == deviceID {
			all = append(all, m)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, params), len(all), nil
}

func (s *memoryStore) GetMeasurement(_ context.Context, deviceID string, id int64) (*models.Measurement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.measurements[id]
	if !ok || m.DeviceID != deviceID {
		return nil, models.ErrNotFound
	}
	return &m, nil
}

func (s *memoryStore) LatestMeasurement(ctx context.Context, deviceID string) (*models.Measurement, error) {
	list, _, _ := s.ListMeasurements(ctx, deviceID, models.ListParams{Limit: 1, Page: 1})
	if len(list) == 0 {
		return nil, models.ErrNotFound
	}
	return &list[0], nil
}

func (s *memoryStore) ListTestResults(_ context.Context, deviceID string, params models.ListParams) ([]models.TestResult, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.TestResult
	for _, r := range s.testResults {
		if r.DeviceID == deviceID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, params), len(all), nil
}

func (s *memoryStore) GetTestResult(_ context.Context, deviceID string, id int64) (*models.TestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.testResults[id]
	if !ok || r.DeviceID != deviceID {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (s *memoryStore) LatestTestResult(ctx context.Context, deviceID string) (*models.TestResult, error) {
	list, _, _ := s.ListTestResults(ctx, deviceID, models.ListParams{Limit: 1, Page: 1})
	if len(list) == 0 {
		return nil, models.ErrNotFound
	}
	return &list[0], nil
}

func page[T any](all []T, params models.ListParams) []T {
	start := params.Offset()
	if start >= len(all) {
		return []T{}
	}
	end := start + params.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

func (s *memoryStore) WithTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	s.mu.Lock()
	tx := &memoryTx{
		store:        s,
		devices:      copyMap(s.devices),
		measurements: copyMap(s.measurements),
		testResults:  copyMap(s.testResults),
		nextID:       s.nextID,
	}
	s.mu.Unlock()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", models.ErrTransport, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = tx.devices
	s.measurements = tx.measurements
	s.testResults = tx.testResults
	s.nextID = tx.nextID
	s.touches += tx.touches
	s.commits++
	return nil
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

type memoryTx struct {
	store        *memoryStore
	devices      map[string]models.Device
	measurements map[int64]models.Measurement
	testResults  map[int64]models.TestResult
	nextID       int64
	inserts      int
	touches      int
}

var errDiskFull = errors.New("disk full")

func (t *memoryTx) insert() (int64, error) {
	t.inserts++
	if t.store.failAfterInserts > 0 && t.inserts >= t.store.failAfterInserts {
		return 0, fmt.Errorf("%w: %w", models.ErrTransport, errDiskFull)
	}
	t.nextID++
	return t.nextID, nil
}

func (t *memoryTx) TouchDevice(_ context.Context, deviceID string, at time.Time) error {
	d, ok := t.devices[deviceID]
	if !ok {
		return models.ErrNotFound
	}
	d.LastSeen = at
	t.devices[deviceID] = d
	t.touches++
	return nil
}

func (t *memoryTx) InsertMeasurement(_ context.Context, m *models.Measurement) error {
	id, err := t.insert()
	if err != nil {
		return err
	}
	m.ID = id
	t.measurements[id] = *m
	return nil
}

func (t *memoryTx) InsertTestResult(_ context.Context, r *models.TestResult) error {
	id, err := t.insert()
	if err != nil {
		return err
	}
	r.ID = id
	t.testResults[id] = *r
	return nil
}

func (t *memoryTx) DeleteMeasurements(_ context.Context, deviceID string, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if m, ok := t.measurements[id]; ok && m.DeviceID == deviceID {
			delete(t.measurements, id)
			n++
		}
	}
	// fail after the rows are gone from the transaction's view
	if t.store.failDelete {
		return 0, fmt.Errorf("%w: %w", models.ErrTransport, errDiskFull)
	}
	return n, nil
}

func (t *memoryTx) DeleteTestResults(_ context.Context, deviceID string, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		if r, ok := t.testResults[id]; ok && r.DeviceID == deviceID {
			delete(t.testResults, id)
			n++
		}
	}
	// fail after the rows are gone from the transaction's view
	if t.store.failDelete {
		return 0, fmt.Errorf("%w: %w", models.ErrTransport, errDiskFull)
	}
	return n, nil
}
