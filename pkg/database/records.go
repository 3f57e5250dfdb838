package database

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/ErfanXH/Polaris/pkg/models"
)

// recordOrder puts the newest samples first; rows without a device
// timestamp sort last.
const recordOrder = ` ORDER BY timestamp DESC NULLS LAST, id DESC`

// recordFilter builds the WHERE clause shared by record listings.
func recordFilter(deviceID string, params models.ListParams) (string, []interface{}) {
	conditions := []string{"device_id = ?"}
	args := []interface{}{deviceID}

	if params.Start != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, params.Start.UTC())
	}
	if params.End != nil {
		conditions = append(conditions, "timestamp <= ?")
		args = append(args, params.End.UTC())
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

// countRecords returns the number of rows in table matching where.
func (dm *DatabaseManager) countRecords(ctx context.Context, table, where string, args []interface{}) (int, error) {
	var total int
	if err := dm.QueryRowWithHealthCheck(ctx, "SELECT COUNT(*) FROM "+table+where, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// notFoundOr maps sql.ErrNoRows to models.ErrNotFound and wraps anything
// else as a transport failure.
func notFoundOr(msg string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrNotFound
	}
	return transportError(msg, err)
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time.UTC()
	return &t
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

// nullableTime converts an optional time into a bind argument in UTC.
func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullableFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt(i *int) interface{} {
	if i == nil {
		return nil
	}
	return int64(*i)
}
