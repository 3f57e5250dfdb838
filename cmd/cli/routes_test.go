package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ErfanXH/Polaris/pkg/database"
	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/ErfanXH/Polaris/pkg/telemetry"
)

const testSecret = "test-secret"

type testServer struct {
	handler http.Handler
	auth    AuthConfig
	owner   *models.User
	other   *models.User
}

// setupTestServer wires the routes to a migrated in-memory database with
// two users; the owner has registered the device "pixel-7".
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	dm, err := database.NewDatabaseManager(database.Options{Dialect: database.DialectSQLite, DSN: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { dm.Close() })

	if err := dm.Init(); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	ctx := context.Background()
	owner, err := dm.CreateUser(ctx, "owner", "owner-password")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	other, err := dm.CreateUser(ctx, "other", "other-password")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	svc := telemetry.NewService(dm, telemetry.WithMaxBatch(10))
	if _, err := svc.RegisterDevice(ctx, owner.ID, models.DeviceInput{
		DeviceID: "pixel-7", Manufacturer: "Google", Model: "Pixel 7", OSVersion: "14",
	}); err != nil {
		t.Fatalf("Failed to register device: %v", err)
	}

	auth := AuthConfig{Secret: testSecret, TTL: time.Hour}
	rm := NewRouteManager(dm, svc, auth, []string{"http://localhost:5173"})
	rm.Setup()

	return &testServer{handler: rm.Handler(), auth: auth, owner: owner, other: other}
}

func (ts *testServer) token(t *testing.T, user *models.User) string {
	t.Helper()

	token, _, err := ts.auth.GenerateJWT(user)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

// do sends body as JSON on behalf of user. A nil user sends no token.
func (ts *testServer) do(t *testing.T, user *models.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+ts.token(t, user))
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func measurementBody(n int) map[string]interface{} {
	records := make([]map[string]interface{}, n)
	for i := range records {
		records[i] = map[string]interface{}{
			"timestamp":       time.Date(2024, 5, 1, 12, i, 0, 0, time.UTC).Format(time.RFC3339),
			"latitude":        35.7,
			"longitude":       51.4,
			"network_type":    "LTE",
			"signal_strength": -95.0,
			"arfcn":           1300,
		}
	}
	return map[string]interface{}{"measurements": records}
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, nil, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	decode(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("Expected status ok, got %q", body["status"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	ts := setupTestServer(t)

	expired := AuthConfig{Secret: testSecret, TTL: -time.Minute}
	expiredToken, _, err := expired.GenerateJWT(ts.owner)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	foreign := AuthConfig{Secret: "another-secret", TTL: time.Hour}
	foreignToken, _, err := foreign.GenerateJWT(ts.owner)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
		{"expired token", "Bearer " + expiredToken},
		{"wrong secret", "Bearer " + foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/devices", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			ts.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, nil, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "owner", Password: "owner-password"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LoginResponse
	decode(t, rec, &resp)
	user, err := ts.auth.ParseJWT(resp.Token)
	if err != nil {
		t.Fatalf("Issued token does not parse: %v", err)
	}
	if user.ID != ts.owner.ID {
		t.Errorf("Expected token for %s, got %s", ts.owner.ID, user.ID)
	}

	rec = ts.do(t, nil, http.MethodPost, "/api/v1/auth/login", LoginRequest{Username: "owner", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for wrong password, got %d", rec.Code)
	}
}

func TestMe(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, ts.owner, http.MethodGet, "/api/v1/auth/me", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var info UserInfo
	decode(t, rec, &info)
	if info.ID != ts.owner.ID.String() || info.Username != "owner" {
		t.Errorf("Unexpected user info: %+v", info)
	}
}

func TestDevices(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, ts.other, http.MethodPost, "/api/v1/devices", models.DeviceInput{
		DeviceID: "galaxy-s23", Manufacturer: "Samsung", Model: "S23", OSVersion: "14",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, ts.other, http.MethodPost, "/api/v1/devices", models.DeviceInput{
		DeviceID: "pixel-7", Manufacturer: "Google", Model: "Pixel 7", OSVersion: "14",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate device id, got %d", rec.Code)
	}

	rec = ts.do(t, ts.other, http.MethodGet, "/api/v1/devices", nil)
	var devices []models.Device
	decode(t, rec, &devices)
	if len(devices) != 1 || devices[0].ID != "galaxy-s23" {
		t.Errorf("Expected only galaxy-s23, got %+v", devices)
	}

	if rec := ts.do(t, ts.owner, http.MethodGet, "/api/v1/devices/pixel-7", nil); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for own device, got %d", rec.Code)
	}
	if rec := ts.do(t, ts.other, http.MethodGet, "/api/v1/devices/pixel-7", nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign device, got %d", rec.Code)
	}
}

func TestBulkUploadMeasurements(t *testing.T) {
	ts := setupTestServer(t)
	path := "/api/v1/devices/pixel-7/bulk_upload/measurement"

	rec := ts.do(t, ts.owner, http.MethodPost, path+"?return_ids=true", measurementBody(3))
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result models.BulkResult
	decode(t, rec, &result)
	if result.Count != 3 {
		t.Errorf("Expected count 3, got %d", result.Count)
	}
	if result.Detail != "3 measurement reports has successfully created" {
		t.Errorf("Unexpected detail %q", result.Detail)
	}
	if len(result.IDs) != 3 {
		t.Errorf("Expected 3 ids, got %v", result.IDs)
	}
	if strings.Contains(rec.Body.String(), "latitude") {
		t.Error("Response must not echo the payload")
	}

	rec = ts.do(t, ts.owner, http.MethodPost, path, measurementBody(1))
	var plain models.BulkResult
	decode(t, rec, &plain)
	if plain.IDs != nil {
		t.Errorf("Expected no ids without return_ids, got %v", plain.IDs)
	}
}

func TestBulkUploadMeasurements_Rejected(t *testing.T) {
	ts := setupTestServer(t)
	path := "/api/v1/devices/pixel-7/bulk_upload/measurement"

	invalid := measurementBody(5)
	invalid["measurements"].([]map[string]interface{})[3]["network_type"] = "XYZ"

	tests := []struct {
		name   string
		user   *models.User
		path   string
		body   interface{}
		status int
		field  string
		index  int
	}{
		{"invalid record", ts.owner, path, invalid, http.StatusBadRequest, "network_type", 3},
		{"empty batch", ts.owner, path, map[string]interface{}{"measurements": []interface{}{}}, http.StatusBadRequest, "measurements", -1},
		{"missing list", ts.owner, path, map[string]interface{}{}, http.StatusBadRequest, "measurements", -1},
		{"malformed json", ts.owner, path, "{", http.StatusBadRequest, "", -1},
		{"too large", ts.owner, path, measurementBody(11), http.StatusBadRequest, "measurements", -1},
		{"foreign device", ts.other, path, measurementBody(1), http.StatusNotFound, "", -1},
		{"unknown device", ts.owner, "/api/v1/devices/nope/bulk_upload/measurement", measurementBody(1), http.StatusNotFound, "", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.user, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}

			var resp errorResponse
			decode(t, rec, &resp)
			if resp.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, resp.Field)
			}
			if tt.index >= 0 && (resp.Index == nil || *resp.Index != tt.index) {
				t.Errorf("Expected index %d, got %v", tt.index, resp.Index)
			}
		})
	}

	rec := ts.do(t, ts.owner, http.MethodGet, "/api/v1/devices/pixel-7/measurements", nil)
	var page models.ListResponse
	decode(t, rec, &page)
	if page.Total != 0 {
		t.Errorf("Expected no stored measurements after rejected batches, got %d", page.Total)
	}
}

func TestBulkUploadTestResults(t *testing.T) {
	ts := setupTestServer(t)

	body := map[string]interface{}{
		"test_results": []map[string]interface{}{
			{"test_type": "PING", "value": 23.5, "success": true, "additional_info": map[string]string{"host": "8.8.8.8"}},
			{"test_type": "HTTPD", "value": 48.1, "success": true},
		},
	}

	rec := ts.do(t, ts.owner, http.MethodPost, "/api/v1/devices/pixel-7/bulk_upload/test_report", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var result models.BulkResult
	decode(t, rec, &result)
	if result.Count != 2 || result.Detail != "2 test reports has successfully created" {
		t.Errorf("Unexpected result %+v", result)
	}

	rec = ts.do(t, ts.owner, http.MethodGet, "/api/v1/devices/pixel-7/test_results/latest", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
}

func TestBulkDeleteMeasurements(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, ts.owner, http.MethodPost, "/api/v1/devices/pixel-7/bulk_upload/measurement?return_ids=true", measurementBody(3))
	var created models.BulkResult
	decode(t, rec, &created)

	// the other user cannot delete through a device they do not own
	rec = ts.do(t, ts.other, http.MethodPost, "/api/v1/devices/pixel-7/bulk_delete/measurement", map[string][]int64{"ids": created.IDs})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for foreign device, got %d", rec.Code)
	}

	ids := append([]int64{created.IDs[0], created.IDs[1]}, 999999)
	rec = ts.do(t, ts.owner, http.MethodPost, "/api/v1/devices/pixel-7/bulk_delete/measurement", map[string][]int64{"ids": ids})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result models.BulkResult
	decode(t, rec, &result)
	if result.Count != 2 {
		t.Errorf("Expected 2 deleted, got %d", result.Count)
	}
	if result.Detail != "2 measurement reports has successfully deleted" {
		t.Errorf("Unexpected detail %q", result.Detail)
	}

	rec = ts.do(t, ts.owner, http.MethodGet, "/api/v1/devices/pixel-7/measurements", nil)
	var page models.ListResponse
	decode(t, rec, &page)
	if page.Total != 1 {
		t.Errorf("Expected 1 remaining measurement, got %d", page.Total)
	}
}

func TestBulkDelete_IDsField(t *testing.T) {
	ts := setupTestServer(t)
	path := "/api/v1/devices/pixel-7/bulk_delete/test_report"

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty list", `{"ids":[]}`, http.StatusOK},
		{"missing field", `{}`, http.StatusBadRequest},
		{"null", `{"ids":null}`, http.StatusBadRequest},
		{"not a list", `{"ids":7}`, http.StatusBadRequest},
		{"not integers", `{"ids":["a"]}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, ts.owner, http.MethodPost, path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}

			if tt.status == http.StatusOK {
				var result models.BulkResult
				decode(t, rec, &result)
				if result.Count != 0 {
					t.Errorf("Expected count 0, got %d", result.Count)
				}
				return
			}

			var resp errorResponse
			decode(t, rec, &resp)
			if resp.Field != "ids" {
				t.Errorf("Expected field ids, got %q", resp.Field)
			}
		})
	}
}

func TestMeasurementEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	base := "/api/v1/devices/pixel-7/measurements"

	rec := ts.do(t, ts.owner, http.MethodPost, base, measurementBody(1)["measurements"].([]map[string]interface{})[0])
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created map[string]interface{}
	decode(t, rec, &created)
	freq, ok := created["arfcn_frequency"].(float64)
	if !ok || freq < 1814.9 || freq > 1815.1 {
		t.Errorf("Expected arfcn_frequency 1815, got %v", created["arfcn_frequency"])
	}
	id := int64(created["id"].(float64))
	one := fmt.Sprintf("%s/%d", base, id)

	if rec := ts.do(t, ts.owner, http.MethodGet, one, nil); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for get, got %d", rec.Code)
	}
	if rec := ts.do(t, ts.owner, http.MethodGet, base+"/latest", nil); rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for latest, got %d", rec.Code)
	}
	if rec := ts.do(t, ts.other, http.MethodGet, one, nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign caller, got %d", rec.Code)
	}
	if rec := ts.do(t, ts.owner, http.MethodDelete, one, nil); rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204 for delete, got %d", rec.Code)
	}
	if rec := ts.do(t, ts.owner, http.MethodDelete, one, nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for second delete, got %d", rec.Code)
	}
	if rec := ts.do(t, ts.owner, http.MethodGet, base+"/latest", nil); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for latest of empty device, got %d", rec.Code)
	}
}

func TestListMeasurements_Params(t *testing.T) {
	ts := setupTestServer(t)
	ts.do(t, ts.owner, http.MethodPost, "/api/v1/devices/pixel-7/bulk_upload/measurement", measurementBody(5))

	tests := []struct {
		name   string
		query  string
		status int
		total  int
		count  int
	}{
		{"defaults", "", http.StatusOK, 5, 5},
		{"paginated", "?limit=2&page=3", http.StatusOK, 5, 1},
		{"window", "?start=2024-05-01T12:01:00Z&end=2024-05-01T12:03:00Z", http.StatusOK, 3, 3},
		{"bad start", "?start=yesterday", http.StatusBadRequest, 0, 0},
		{"bad limit", "?limit=abc", http.StatusBadRequest, 0, 0},
		{"limit out of range", "?limit=0", http.StatusBadRequest, 0, 0},
		{"end before start", "?start=2024-05-02T00:00:00Z&end=2024-05-01T00:00:00Z", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, ts.owner, http.MethodGet, "/api/v1/devices/pixel-7/measurements"+tt.query, nil)
			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}

			var page struct {
				Data  []json.RawMessage `json:"data"`
				Total int               `json:"total"`
			}
			decode(t, rec, &page)
			if page.Total != tt.total {
				t.Errorf("Expected total %d, got %d", tt.total, page.Total)
			}
			if len(page.Data) != tt.count {
				t.Errorf("Expected %d records, got %d", tt.count, len(page.Data))
			}
		})
	}
}

func TestHTTPTestProbes(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, ts.owner, http.MethodGet, "/api/v1/devices/pixel-7/http_test/download", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() != downloadPayloadSize {
		t.Errorf("Expected %d bytes, got %d", downloadPayloadSize, rec.Body.Len())
	}

	rec = ts.do(t, ts.owner, http.MethodPost, "/api/v1/devices/pixel-7/http_test/upload", strings.Repeat("x", 4096))
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", rec.Code)
	}

	rec = ts.do(t, ts.other, http.MethodGet, "/api/v1/devices/pixel-7/http_test/download", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for foreign device, got %d", rec.Code)
	}
}

func TestRequestBodyLimit(t *testing.T) {
	ts := setupTestServer(t)

	body := `{"measurements":[` + strings.Repeat(" ", minBodyBytes) + `]}`
	rec := ts.do(t, ts.owner, http.MethodPost, "/api/v1/devices/pixel-7/bulk_upload/measurement", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("Expected 413, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, ts.owner, http.MethodGet, "/api/v1/devices/pixel-7/measurements", nil)
	var page models.ListResponse
	decode(t, rec, &page)
	if page.Total != 0 {
		t.Errorf("Expected no stored measurements, got %d", page.Total)
	}
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name     string
		maxBatch int
		want     int64
	}{
		{"small batches keep the floor", 10, minBodyBytes},
		{"default batch", 5000, 5000 * maxRecordBytes},
		{"unlimited batch", 0, unlimitedBatchBodyBytes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bodyLimit(tt.maxBatch); got != tt.want {
				t.Errorf("bodyLimit(%d) = %d, want %d", tt.maxBatch, got, tt.want)
			}
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", models.NewValidationError("latitude", "this field is required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("%w: page must be greater than 0", models.ErrValidation), http.StatusBadRequest},
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"not owned", fmt.Errorf("device %q: %w", "x", models.ErrUnauthorized), http.StatusNotFound},
		{"transport", fmt.Errorf("%w: commit: %w", models.ErrTransport, errors.New("disk I/O error")), http.StatusExpectationFailed},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)

			if rec.Code != tt.status {
				t.Errorf("Expected %d, got %d", tt.status, rec.Code)
			}
		})
	}

	rec := httptest.NewRecorder()
	writeServiceError(rec, fmt.Errorf("%w: commit: %w", models.ErrTransport, errors.New("disk I/O error")))
	if strings.Contains(rec.Body.String(), "disk") {
		t.Errorf("Storage details must not leak: %s", rec.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/devices", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Expected allowed origin header, got %q", got)
	}
}
