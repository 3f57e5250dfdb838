package main

import (
	"net/http"

	"github.com/ErfanXH/Polaris/pkg/models"
	"github.com/gorilla/mux"
)

// listDevicesHandler returns the devices of the caller
func (rm *RouteManager) listDevicesHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	devices, err := rm.service.ListDevices(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, devices)
}

// registerDeviceHandler registers a new device for the caller
func (rm *RouteManager) registerDeviceHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var in models.DeviceInput
	if err := rm.decodeBody(w, r, &in); err != nil {
		writeServiceError(w, err)
		return
	}

	device, err := rm.service.RegisterDevice(r.Context(), user.ID, in)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, device)
}

// getDeviceHandler returns one device of the caller
func (rm *RouteManager) getDeviceHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	device, err := rm.service.ResolveDevice(r.Context(), user.ID, mux.Vars(r)["device_id"])
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, device)
}
