package database

import (
	"context"
	"database/sql"

	"github.com/ErfanXH/Polaris/pkg/models"
)

const measurementColumns = `id, device_id, timestamp, latitude, longitude, network_type,
        signal_strength, signal_quality, cell_id, lac, tac, rac, plmn_id, arfcn, created_at`

func scanMeasurement(row rowScanner) (*models.Measurement, error) {
	var (
		m                     models.Measurement
		timestamp             sql.NullTime
		networkType           string
		strength, quality     sql.NullFloat64
		cellID, lac, tac, rac sql.NullString
		plmn                  sql.NullString
		arfcn                 sql.NullInt64
	)

	if err := row.Scan(
		&m.ID, &m.DeviceID, &timestamp, &m.Latitude, &m.Longitude, &networkType,
		&strength, &quality, &cellID, &lac, &tac, &rac, &plmn, &arfcn, &m.CreatedAt,
	); err != nil {
		return nil, err
	}

	m.Timestamp = timePtr(timestamp)
	m.NetworkType = models.NetworkType(networkType)
	m.SignalStrength = floatPtr(strength)
	m.SignalQuality = floatPtr(quality)
	m.CellID = stringPtr(cellID)
	m.LAC = stringPtr(lac)
	m.TAC = stringPtr(tac)
	m.RAC = stringPtr(rac)
	m.PLMN = stringPtr(plmn)
	m.ARFCN = intPtr(arfcn)
	m.CreatedAt = m.CreatedAt.UTC()

	return &m, nil
}

// ListMeasurements returns one page of a device's measurements and the
// total number matching the filter
func (dm *DatabaseManager) ListMeasurements(ctx context.Context, deviceID string, params models.ListParams) ([]models.Measurement, int, error) {
	where, args := recordFilter(deviceID, params)

	total, err := dm.countRecords(ctx, "measurements", where, args)
	if err != nil {
		return nil, 0, transportError("failed to count measurements", err)
	}

	query := `SELECT ` + measurementColumns + ` FROM measurements` + where + recordOrder + ` LIMIT ? OFFSET ?`
	args = append(args, params.Limit, params.Offset())

	rows, err := dm.QueryWithHealthCheck(ctx, query, args...)
	if err != nil {
		return nil, 0, transportError("failed to query measurements", err)
	}
	defer rows.Close()

	measurements := []models.Measurement{}
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, 0, transportError("failed to scan measurement", err)
		}
		measurements = append(measurements, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, transportError("error iterating measurements", err)
	}

	return measurements, total, nil
}

// GetMeasurement returns a single measurement of the device
func (dm *DatabaseManager) GetMeasurement(ctx context.Context, deviceID string, id int64) (*models.Measurement, error) {
	query := `SELECT ` + measurementColumns + ` FROM measurements WHERE device_id = ? AND id = ?`

	m, err := scanMeasurement(dm.QueryRowWithHealthCheck(ctx, query, deviceID, id))
	if err != nil {
		return nil, notFoundOr("failed to get measurement", err)
	}
	return m, nil
}

// LatestMeasurement returns the most recent measurement of the device
func (dm *DatabaseManager) LatestMeasurement(ctx context.Context, deviceID string) (*models.Measurement, error) {
	query := `SELECT ` + measurementColumns + ` FROM measurements WHERE device_id = ?` + recordOrder + ` LIMIT 1`

	m, err := scanMeasurement(dm.QueryRowWithHealthCheck(ctx, query, deviceID))
	if err != nil {
		return nil, notFoundOr("failed to get latest measurement", err)
	}
	return m, nil
}
