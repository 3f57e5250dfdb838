package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/ErfanXH/Polaris/pkg/models"
)

// errorResponse is the body of every failed request. Field and Index are
// only set for validation failures.
type errorResponse struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
	Index  *int   `json:"index,omitempty"`
}

const transportFailureDetail = "the request could not be stored, please try again"

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("❌ Failed to encode response: %v", err)
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

// writeServiceError maps telemetry errors to HTTP statuses. Foreign devices
// are reported as missing so that device ids cannot be probed.
func writeServiceError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeDetail(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
	case errors.As(err, &ve):
		resp := errorResponse{Detail: ve.Reason, Field: ve.Field}
		if ve.Index >= 0 {
			index := ve.Index
			resp.Index = &index
		}
		writeJSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, models.ErrValidation):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrUnauthorized):
		writeDetail(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, models.ErrTransport):
		log.Printf("❌ Storage failure: %v", err)
		writeDetail(w, http.StatusExpectationFailed, transportFailureDetail)
	default:
		log.Printf("❌ Request failed: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

const (
	// maxRecordBytes is the body budget of one uploaded record.
	maxRecordBytes = 8 << 10
	// minBodyBytes is the body limit of requests that carry no batch.
	minBodyBytes = 1 << 20
	// unlimitedBatchBodyBytes applies when the batch size is not capped.
	unlimitedBatchBodyBytes = 256 << 20
)

// bodyLimit returns the largest request body accepted for batches of at
// most maxBatch records.
func bodyLimit(maxBatch int) int64 {
	if maxBatch <= 0 {
		return unlimitedBatchBodyBytes
	}
	return max(int64(maxBatch)*maxRecordBytes, minBodyBytes)
}

// decodeBody decodes the JSON request body into v, reading at most the
// route manager's body limit.
func (rm *RouteManager) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, rm.bodyLimit)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return tooLarge
		}
		return models.NewValidationError("", "Invalid request body")
	}
	return nil
}
