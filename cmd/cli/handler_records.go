package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/gorilla/mux"
)

// Query params of record listings:
//   - start: RFC3339 lower bound of timestamp (inclusive)
//   - end: RFC3339 upper bound of timestamp (inclusive)
//   - limit: page size, 1 to 10000 (default 100)
//   - page: 1-based page number (default 1)
func parseListParams(r *http.Request) (models.ListParams, error) {
	params := models.DefaultListParams()
	query := r.URL.Query()

	for _, bound := range []struct {
		name   string
		target **time.Time
	}{
		{"start", &params.Start},
		{"end", &params.End},
	} {
		raw := query.Get(bound.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return params, models.NewValidationError(bound.name, "expected an RFC3339 timestamp")
		}
		*bound.target = &t
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return params, models.NewValidationError("limit", "expected an integer")
		}
		params.Limit = limit
	}

	if pageStr := query.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return params, models.NewValidationError("page", "expected an integer")
		}
		params.Page = page
	}

	return params, nil
}

// recordID returns the numeric {id} path variable. The route pattern only
// matches digits, so parsing fails on overflow only.
func recordID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, models.NewValidationError("id", "invalid record id")
	}
	return id, nil
}

func (rm *RouteManager) listMeasurementsHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	params, err := parseListParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	page, err := rm.service.ListMeasurements(r.Context(), user.ID, mux.Vars(r)["device_id"], params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (rm *RouteManager) createMeasurementHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in models.MeasurementInput
	if err := rm.decodeBody(w, r, &in); err != nil {
		writeServiceError(w, err)
		return
	}

	m, err := rm.service.CreateMeasurement(r.Context(), user.ID, mux.Vars(r)["device_id"], in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, m)
}

func (rm *RouteManager) latestMeasurementHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	m, err := rm.service.LatestMeasurement(r.Context(), user.ID, mux.Vars(r)["device_id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (rm *RouteManager) getMeasurementHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := recordID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	m, err := rm.service.GetMeasurement(r.Context(), user.ID, mux.Vars(r)["device_id"], id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
}

func (rm *RouteManager) deleteMeasurementHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := recordID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := rm.service.DeleteMeasurement(r.Context(), user.ID, mux.Vars(r)["device_id"], id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (rm *RouteManager) listTestResultsHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	params, err := parseListParams(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	page, err := rm.service.ListTestResults(r.Context(), user.ID, mux.Vars(r)["device_id"], params)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (rm *RouteManager) createTestResultHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in models.TestResultInput
	if err := rm.decodeBody(w, r, &in); err != nil {
		writeServiceError(w, err)
		return
	}

	res, err := rm.service.CreateTestResult(r.Context(), user.ID, mux.Vars(r)["device_id"], in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (rm *RouteManager) latestTestResultHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	res, err := rm.service.LatestTestResult(r.Context(), user.ID, mux.Vars(r)["device_id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (rm *RouteManager) getTestResultHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := recordID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	res, err := rm.service.GetTestResult(r.Context(), user.ID, mux.Vars(r)["device_id"], id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (rm *RouteManager) deleteTestResultHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	id, err := recordID(r)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if err := rm.service.DeleteTestResult(r.Context(), user.ID, mux.Vars(r)["device_id"], id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
