package api

import (
	"context"
	"net/http"

	"github.com/ErfanXH/Polaris/pkg/models"
)

type measurementsUpload struct {
	Measurements []models.MeasurementInput `json:"measurements"`
}

type deleteRequest struct {
	IDs []int64 `json:"ids"`
}

type testResultsUpload struct {
	TestResults []models.TestResultInput `json:"test_results"`
}

// UploadMeasurements stores records as one batch. Either all records are
// stored or none is. With returnIDs the result carries the new ids.
func (c *Client) UploadMeasurements(ctx context.Context, deviceID string, records []models.MeasurementInput, returnIDs bool) (*models.BulkResult, error) {
	return c.bulk(ctx, devicePath(deviceID, "/bulk_upload/measurement"), measurementsUpload{Measurements: records}, returnIDs)
}

// UploadTestResults stores records as one batch.
func (c *Client) UploadTestResults(ctx context.Context, deviceID string, records []models.TestResultInput, returnIDs bool) (*models.BulkResult, error) {
	return c.bulk(ctx, devicePath(deviceID, "/bulk_upload/test_report"), testResultsUpload{TestResults: records}, returnIDs)
}

// DeleteMeasurements removes the listed measurements of the device. Ids of
// other devices are ignored.
func (c *Client) DeleteMeasurements(ctx context.Context, deviceID string, ids []int64) (*models.BulkResult, error) {
	return c.bulk(ctx, devicePath(deviceID, "/bulk_delete/measurement"), deleteRequest{IDs: ids}, false)
}

// DeleteTestResults removes the listed test results of the device.
func (c *Client) DeleteTestResults(ctx context.Context, deviceID string, ids []int64) (*models.BulkResult, error) {
	return c.bulk(ctx, devicePath(deviceID, "/bulk_delete/test_report"), deleteRequest{IDs: ids}, false)
}

func (c *Client) bulk(ctx context.Context, path string, body interface{}, returnIDs bool) (*models.BulkResult, error) {
	var query map[string]string
	if returnIDs {
		query = map[string]string{"return_ids": "true"}
	}

	var result models.BulkResult
	if err := c.do(ctx, http.MethodPost, path, body, &result, query); err != nil {
		return nil, err
	}
	return &result, nil
}
