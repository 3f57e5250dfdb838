package main

import (
	"net/http"
	"strconv"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/gorilla/mux"
)

// wantIDs reports whether the client asked for the created ids with
// ?return_ids=true.
func wantIDs(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("return_ids"))
	return err == nil && v
}

// bulkUploadMeasurementsHandler stores a batch of measurements atomically
func (rm *RouteManager) bulkUploadMeasurementsHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	deviceID := mux.Vars(r)["device_id"]

	// Ownership is checked before the payload so foreign devices stay 404.
	if _, err := rm.service.ResolveDevice(r.Context(), user.ID, deviceID); err != nil {
		writeServiceError(w, err)
		return
	}

	var req models.BulkMeasurementsRequest
	if err := rm.decodeBody(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	records, err := req.Records()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := rm.service.BulkCreateMeasurements(r.Context(), user.ID, deviceID, records, wantIDs(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// bulkUploadTestResultsHandler stores a batch of test results atomically
func (rm *RouteManager) bulkUploadTestResultsHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	deviceID := mux.Vars(r)["device_id"]

	if _, err := rm.service.ResolveDevice(r.Context(), user.ID, deviceID); err != nil {
		writeServiceError(w, err)
		return
	}

	var req models.BulkTestResultsRequest
	if err := rm.decodeBody(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	records, err := req.Records()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := rm.service.BulkCreateTestResults(r.Context(), user.ID, deviceID, records, wantIDs(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// bulkDeleteMeasurementsHandler removes the listed measurements of the device
func (rm *RouteManager) bulkDeleteMeasurementsHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req models.BulkDeleteRequest
	if err := rm.decodeBody(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	ids, err := req.Identifiers()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := rm.service.BulkDeleteMeasurements(r.Context(), user.ID, mux.Vars(r)["device_id"], ids)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// bulkDeleteTestResultsHandler removes the listed test results of the device
func (rm *RouteManager) bulkDeleteTestResultsHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req models.BulkDeleteRequest
	if err := rm.decodeBody(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	ids, err := req.Identifiers()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := rm.service.BulkDeleteTestResults(r.Context(), user.ID, mux.Vars(r)["device_id"], ids)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
