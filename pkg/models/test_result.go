package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// TestResult is the outcome of one network-quality probe. The unit of Value
// is implied by TestType.
type TestResult struct {
	ID             int64           `json:"id"`
	DeviceID       string          `json:"device"`
	Timestamp      *time.Time      `json:"timestamp"`
	TestType       TestType        `json:"test_type"`
	Value          float64         `json:"value"`
	Success        bool            `json:"success"`
	AdditionalInfo json.RawMessage `json:"additional_info"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TestResultInput is one test result as uploaded by a device.
type TestResultInput struct {
	Timestamp      *time.Time      `json:"timestamp"`
	TestType       *string         `json:"test_type"`
	Value          *float64        `json:"value"`
	Success        *bool           `json:"success"`
	AdditionalInfo json.RawMessage `json:"additional_info"`
}

// Validate checks required fields and enum membership.
func (in TestResultInput) Validate() error {
	if in.TestType == nil {
		return NewValidationError("test_type", "this field is required")
	}
	if !TestType(*in.TestType).Valid() {
		return NewValidationError("test_type", "\""+*in.TestType+"\" is not a valid choice")
	}
	if in.Value == nil {
		return NewValidationError("value", "this field is required")
	}
	if in.Success == nil {
		return NewValidationError("success", "this field is required")
	}
	if len(in.AdditionalInfo) > 0 && !json.Valid(in.AdditionalInfo) {
		return NewValidationError("additional_info", "value must be valid JSON")
	}
	return nil
}

// Info returns the additional info or nil when it is absent or JSON null.
func (in TestResultInput) Info() json.RawMessage {
	trimmed := bytes.TrimSpace(in.AdditionalInfo)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}

// TestResult converts a validated input into a record owned by deviceID.
func (in TestResultInput) TestResult(deviceID string) TestResult {
	r := TestResult{
		DeviceID:       deviceID,
		Timestamp:      in.Timestamp,
		AdditionalInfo: in.Info(),
	}
	if in.TestType != nil {
		r.TestType = TestType(*in.TestType)
	}
	if in.Value != nil {
		r.Value = *in.Value
	}
	if in.Success != nil {
		r.Success = *in.Success
	}
	return r
}
