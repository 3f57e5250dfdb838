package models

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Device is a measuring handset. Its ID is chosen by the client and never changes.
type Device struct {
	ID           string    `json:"device_id"`
	UserID       uuid.UUID `json:"user"`
	Manufacturer string    `json:"manufacturer"`
	Model        string    `json:"model"`
	OSVersion    string    `json:"os_version"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	LastSeen     time.Time `json:"last_seen"`
}

// OwnedBy reports whether user owns the device.
func (d *Device) OwnedBy(user uuid.UUID) bool {
	return d != nil && d.UserID == user
}

// DeviceInput is the registration payload of a device.
type DeviceInput struct {
	DeviceID     string `json:"device_id"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	OSVersion    string `json:"os_version"`
}

// Validate checks required fields and column limits.
func (in *DeviceInput) Validate() error {
	in.DeviceID = strings.TrimSpace(in.DeviceID)

	checks := []struct {
		field string
		value string
		max   int
	}{
		{"device_id", in.DeviceID, 255},
		{"manufacturer", in.Manufacturer, 100},
		{"model", in.Model, 100},
		{"os_version", in.OSVersion, 50},
	}
	for _, c := range checks {
		if c.value == "" {
			return NewValidationError(c.field, "this field is required")
		}
		if utf8.RuneCountInString(c.value) > c.max {
			return NewValidationError(c.field, "ensure this field has no more than "+strconv.Itoa(c.max)+" characters")
		}
	}
	return nil
}
