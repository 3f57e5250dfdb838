package main

import (
	"net/http"

	"github.com/ErfanXH/Polaris/pkg/database"
	"github.com/ErfanXH/Polaris/pkg/telemetry"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// RouteManager handles all API routes
type RouteManager struct {
	dbManager      *database.DatabaseManager
	service        *telemetry.Service
	auth           AuthConfig
	allowedOrigins []string
	bodyLimit      int64
	Router         *mux.Router
}

// NewRouteManager creates a new RouteManager instance
func NewRouteManager(dbManager *database.DatabaseManager, service *telemetry.Service, auth AuthConfig, allowedOrigins []string) *RouteManager {
	return &RouteManager{
		dbManager:      dbManager,
		service:        service,
		auth:           auth,
		allowedOrigins: allowedOrigins,
		bodyLimit:      bodyLimit(service.MaxBatch()),
		Router:         mux.NewRouter(),
	}
}

// Setup configures all API routes
func (rm *RouteManager) Setup() {
	r := rm.Router

	// Health check
	r.HandleFunc("/health", rm.healthHandler).Methods("GET")

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()
	rm.setupAPIRoutes(api)
}

// Handler returns the router wrapped with CORS handling
func (rm *RouteManager) Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   rm.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(rm.Router)
}

// setupAPIRoutes configures all API v1 routes
func (rm *RouteManager) setupAPIRoutes(api *mux.Router) {
	// Public auth endpoints (no auth required)
	api.HandleFunc("/auth/login", rm.handleLogin).Methods("POST")

	// Protected endpoints (auth required)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(rm.JWTAuthMiddleware)

	// User info
	protected.HandleFunc("/auth/me", rm.handleMe).Methods("GET")
	protected.HandleFunc("/auth/refresh", rm.handleRefreshToken).Methods("POST")

	// Devices
	protected.HandleFunc("/devices", rm.listDevicesHandler).Methods("GET")
	protected.HandleFunc("/devices", rm.registerDeviceHandler).Methods("POST")
	protected.HandleFunc("/devices/{device_id}", rm.getDeviceHandler).Methods("GET")

	device := protected.PathPrefix("/devices/{device_id}").Subrouter()

	// Measurements
	device.HandleFunc("/measurements", rm.listMeasurementsHandler).Methods("GET")
	device.HandleFunc("/measurements", rm.createMeasurementHandler).Methods("POST")
	device.HandleFunc("/measurements/latest", rm.latestMeasurementHandler).Methods("GET")
	device.HandleFunc("/measurements/{id:[0-9]+}", rm.getMeasurementHandler).Methods("GET")
	device.HandleFunc("/measurements/{id:[0-9]+}", rm.deleteMeasurementHandler).Methods("DELETE")

	// Test results
	device.HandleFunc("/test_results", rm.listTestResultsHandler).Methods("GET")
	device.HandleFunc("/test_results", rm.createTestResultHandler).Methods("POST")
	device.HandleFunc("/test_results/latest", rm.latestTestResultHandler).Methods("GET")
	device.HandleFunc("/test_results/{id:[0-9]+}", rm.getTestResultHandler).Methods("GET")
	device.HandleFunc("/test_results/{id:[0-9]+}", rm.deleteTestResultHandler).Methods("DELETE")

	// Batches
	device.HandleFunc("/bulk_upload/measurement", rm.bulkUploadMeasurementsHandler).Methods("POST")
	device.HandleFunc("/bulk_upload/test_report", rm.bulkUploadTestResultsHandler).Methods("POST")
	device.HandleFunc("/bulk_delete/measurement", rm.bulkDeleteMeasurementsHandler).Methods("POST")
	device.HandleFunc("/bulk_delete/test_report", rm.bulkDeleteTestResultsHandler).Methods("POST")

	// Throughput probes
	device.HandleFunc("/http_test/download", rm.httpTestDownloadHandler).Methods("GET")
	device.HandleFunc("/http_test/upload", rm.httpTestUploadHandler).Methods("POST")
}
