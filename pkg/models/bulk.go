package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// BulkMeasurementsRequest is the body of a measurement batch upload.
type BulkMeasurementsRequest struct {
	Measurements json.RawMessage `json:"measurements"`
}

// BulkTestResultsRequest is the body of a test result batch upload.
type BulkTestResultsRequest struct {
	TestResults json.RawMessage `json:"test_results"`
}

// BulkDeleteRequest is the body of a batch delete.
type BulkDeleteRequest struct {
	IDs json.RawMessage `json:"ids"`
}

// BulkResult summarizes a batch operation. IDs is only filled when requested.
type BulkResult struct {
	Count  int     `json:"count"`
	Detail string  `json:"detail"`
	IDs    []int64 `json:"ids,omitempty"`
}

// Records decodes and validates every measurement of the batch. The first
// offending record fails the whole batch.
func (r BulkMeasurementsRequest) Records() ([]MeasurementInput, error) {
	elements, err := splitList("measurements", r.Measurements)
	if err != nil {
		return nil, err
	}

	records := make([]MeasurementInput, 0, len(elements))
	for i, raw := range elements {
		var in MeasurementInput
		if err := decodeRecord(raw, &in); err != nil {
			return nil, asValidationError(err, i)
		}
		if err := in.Validate(); err != nil {
			return nil, asValidationError(err, i)
		}
		records = append(records, in)
	}
	return records, nil
}

// Records decodes and validates every test result of the batch.
func (r BulkTestResultsRequest) Records() ([]TestResultInput, error) {
	elements, err := splitList("test_results", r.TestResults)
	if err != nil {
		return nil, err
	}

	records := make([]TestResultInput, 0, len(elements))
	for i, raw := range elements {
		var in TestResultInput
		if err := decodeRecord(raw, &in); err != nil {
			return nil, asValidationError(err, i)
		}
		if err := in.Validate(); err != nil {
			return nil, asValidationError(err, i)
		}
		records = append(records, in)
	}
	return records, nil
}

// Identifiers decodes the ids of a batch delete. The field is required but
// may be an empty list.
func (r BulkDeleteRequest) Identifiers() ([]int64, error) {
	trimmed, err := requireList("ids", r.IDs)
	if err != nil {
		return nil, err
	}

	ids := []int64{}
	if err := json.Unmarshal(trimmed, &ids); err != nil {
		return nil, NewValidationError("ids", "expected a list of integers")
	}
	return ids, nil
}

// EmptyBatchReason is the reason reported for a batch without records.
const EmptyBatchReason = "at least one record required"

// requireList checks that field is present and holds a JSON list.
func requireList(field string, raw json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, NewValidationError(field, "this field is required")
	}
	if trimmed[0] != '[' {
		return nil, NewValidationError(field, "expected a list of items")
	}
	return trimmed, nil
}

func splitList(field string, raw json.RawMessage) ([]json.RawMessage, error) {
	trimmed, err := requireList(field, raw)
	if err != nil {
		return nil, err
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, NewValidationError(field, "expected a list of items")
	}
	if len(elements) == 0 {
		return nil, NewValidationError(field, EmptyBatchReason)
	}
	return elements, nil
}

func decodeRecord(raw json.RawMessage, target interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return NewValidationError("", "expected an object")
	}
	if err := json.Unmarshal(trimmed, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return NewValidationError(typeErr.Field, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))
		}
		return NewValidationError("", err.Error())
	}
	return nil
}
