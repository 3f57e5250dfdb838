package main

import (
	"crypto/rand"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// downloadPayloadSize is the body size served to download probes.
const downloadPayloadSize = 1 << 19

// httpTestDownloadHandler serves random bytes for download throughput probes
func (rm *RouteManager) httpTestDownloadHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if _, err := rm.service.ResolveDevice(r.Context(), user.ID, mux.Vars(r)["device_id"]); err != nil {
		writeServiceError(w, err)
		return
	}

	payload := make([]byte, downloadPayloadSize)
	if _, err := rand.Read(payload); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(payload); err != nil {
		log.Printf("❌ Download probe aborted: %v", err)
	}
}

// httpTestUploadHandler drains the body of upload throughput probes
func (rm *RouteManager) httpTestUploadHandler(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if _, err := rm.service.ResolveDevice(r.Context(), user.ID, mux.Vars(r)["device_id"]); err != nil {
		writeServiceError(w, err)
		return
	}

	if _, err := io.Copy(io.Discard, r.Body); err != nil {
		writeDetail(w, http.StatusBadRequest, "Failed to read upload body")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
