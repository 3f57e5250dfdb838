package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/ErfanXH/Polaris/pkg/storage"
)

// WithTx runs fn inside a database transaction. The transaction commits
// when fn returns nil and rolls back on error, panic or cancellation.
// Errors returned by fn are passed through unchanged.
func (dm *DatabaseManager) WithTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	tx, err := dm.db.BeginTx(ctx, nil)
	if err != nil {
		return transportError("failed to start transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&sqlTx{tx: tx, dialect: dm.dialect}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return transportError("failed to commit transaction", err)
	}

	return nil
}

// sqlTx implements storage.Tx on a *sql.Tx
type sqlTx struct {
	tx      *sql.Tx
	dialect Dialect
}

func (t *sqlTx) exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *sqlTx) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

// TouchDevice updates last_seen of the device
func (t *sqlTx) TouchDevice(ctx context.Context, deviceID string, at time.Time) error {
	result, err := t.exec(ctx, `UPDATE devices SET last_seen = ? WHERE device_id = ?`, at.UTC(), deviceID)
	if err != nil {
		return transportError("failed to update device", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return transportError("failed to get affected rows", err)
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return nil
}

// InsertMeasurement stores m and fills its ID
func (t *sqlTx) InsertMeasurement(ctx context.Context, m *models.Measurement) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	m.CreatedAt = m.CreatedAt.UTC()

	query := `
        INSERT INTO measurements (
            device_id, timestamp, latitude, longitude, network_type,
            signal_strength, signal_quality, cell_id, lac, tac, rac, plmn_id, arfcn, created_at
        )
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING id
    `

	err := t.queryRow(ctx, query,
		m.DeviceID, nullableTime(m.Timestamp), m.Latitude, m.Longitude, string(m.NetworkType),
		nullableFloat(m.SignalStrength), nullableFloat(m.SignalQuality),
		nullableString(m.CellID), nullableString(m.LAC), nullableString(m.TAC),
		nullableString(m.RAC), nullableString(m.PLMN), nullableInt(m.ARFCN), m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		return transportError("failed to insert measurement", err)
	}

	return nil
}

// InsertTestResult stores r and fills its ID
func (t *sqlTx) InsertTestResult(ctx context.Context, r *models.TestResult) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	r.CreatedAt = r.CreatedAt.UTC()

	var info interface{}
	if len(r.AdditionalInfo) > 0 {
		info = string(r.AdditionalInfo)
	}

	query := `
        INSERT INTO test_results (device_id, timestamp, test_type, result_value, success, additional_info, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        RETURNING id
    `

	err := t.queryRow(ctx, query,
		r.DeviceID, nullableTime(r.Timestamp), string(r.TestType), r.Value, r.Success, info, r.CreatedAt,
	).Scan(&r.ID)
	if err != nil {
		return transportError("failed to insert test result", err)
	}

	return nil
}

// DeleteMeasurements removes the given measurements of deviceID
func (t *sqlTx) DeleteMeasurements(ctx context.Context, deviceID string, ids []int64) (int64, error) {
	return t.deleteRecords(ctx, "measurements", deviceID, ids)
}

// DeleteTestResults removes the given test results of deviceID
func (t *sqlTx) DeleteTestResults(ctx context.Context, deviceID string, ids []int64) (int64, error) {
	return t.deleteRecords(ctx, "test_results", deviceID, ids)
}

// deleteRecords removes ids of deviceID from table. Lists longer than the
// dialect allows in one statement are deleted in chunks within the same
// transaction.
func (t *sqlTx) deleteRecords(ctx context.Context, table, deviceID string, ids []int64) (int64, error) {
	var total int64
	for _, chunk := range chunkIDs(ids, t.dialect.inClauseLimit()) {
		clause, idArgs := t.dialect.inClause("id", chunk)
		args := append([]interface{}{deviceID}, idArgs...)

		result, err := t.exec(ctx, `DELETE FROM `+table+` WHERE device_id = ? AND `+clause, args...)
		if err != nil {
			return 0, transportError("failed to delete "+table, err)
		}

		deleted, err := result.RowsAffected()
		if err != nil {
			return 0, transportError("failed to get affected rows", err)
		}
		total += deleted
	}

	return total, nil
}

// chunkIDs splits ids into slices of at most size elements. A size of 0
// keeps the list whole.
func chunkIDs(ids []int64, size int) [][]int64 {
	if len(ids) == 0 {
		return nil
	}
	if size <= 0 || len(ids) <= size {
		return [][]int64{ids}
	}

	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

var _ storage.Store = (*DatabaseManager)(nil)
