package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ErfanXH/Polaris/pkg/models"
)

const testResultColumns = `id, device_id, timestamp, test_type, result_value, success, additional_info, created_at`

func scanTestResult(row rowScanner) (*models.TestResult, error) {
	var (
		r         models.TestResult
		timestamp sql.NullTime
		testType  string
		info      sql.NullString
	)

	if err := row.Scan(
		&r.ID, &r.DeviceID, &timestamp, &testType, &r.Value, &r.Success, &info, &r.CreatedAt,
	); err != nil {
		return nil, err
	}

	r.Timestamp = timePtr(timestamp)
	r.TestType = models.TestType(testType)
	if info.Valid && info.String != "" {
		r.AdditionalInfo = json.RawMessage(info.String)
	}
	r.CreatedAt = r.CreatedAt.UTC()

	return &r, nil
}

// ListTestResults returns one page of a device's test results and the
// total number matching the filter
func (dm *DatabaseManager) ListTestResults(ctx context.Context, deviceID string, params models.ListParams) ([]models.TestResult, int, error) {
	where, args := recordFilter(deviceID, params)

	total, err := dm.countRecords(ctx, "test_results", where, args)
	if err != nil {
		return nil, 0, transportError("failed to count test results", err)
	}

	query := `SELECT ` + testResultColumns + ` FROM test_results` + where + recordOrder + ` LIMIT ? OFFSET ?`
	args = append(args, params.Limit, params.Offset())

	rows, err := dm.QueryWithHealthCheck(ctx, query, args...)
	if err != nil {
		return nil, 0, transportError("failed to query test results", err)
	}
	defer rows.Close()

	results := []models.TestResult{}
	for rows.Next() {
		r, err := scanTestResult(rows)
		if err != nil {
			return nil, 0, transportError("failed to scan test result", err)
		}
		results = append(results, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, transportError("error iterating test results", err)
	}

	return results, total, nil
}

// GetTestResult returns a single test result of the device
func (dm *DatabaseManager) GetTestResult(ctx context.Context, deviceID string, id int64) (*models.TestResult, error) {
	query := `SELECT ` + testResultColumns + ` FROM test_results WHERE device_id = ? AND id = ?`

	r, err := scanTestResult(dm.QueryRowWithHealthCheck(ctx, query, deviceID, id))
	if err != nil {
		return nil, notFoundOr("failed to get test result", err)
	}
	return r, nil
}

// LatestTestResult returns the most recent test result of the device
func (dm *DatabaseManager) LatestTestResult(ctx context.Context, deviceID string) (*models.TestResult, error) {
	query := `SELECT ` + testResultColumns + ` FROM test_results WHERE device_id = ?` + recordOrder + ` LIMIT 1`

	r, err := scanTestResult(dm.QueryRowWithHealthCheck(ctx, query, deviceID))
	if err != nil {
		return nil, notFoundOr("failed to get latest test result", err)
	}
	return r, nil
}
