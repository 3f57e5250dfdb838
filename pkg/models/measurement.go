package models

import (
	"encoding/json"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/ErfanXH/Polaris/pkg/arfcn"
)

// Measurement is one radio-environment sample reported by a device.
type Measurement struct {
	ID             int64       `json:"id"`
	DeviceID       string      `json:"device"`
	Timestamp      *time.Time  `json:"timestamp"`
	Latitude       float64     `json:"latitude"`
	Longitude      float64     `json:"longitude"`
	NetworkType    NetworkType `json:"network_type"`
	SignalStrength *float64    `json:"signal_strength"` // RSRP, RSCP or RxLev
	SignalQuality  *float64    `json:"signal_quality"`  // RSRQ or Ec/N0
	CellID         *string     `json:"cell_id"`
	LAC            *string     `json:"lac"`
	TAC            *string     `json:"tac"`
	RAC            *string     `json:"rac"`
	PLMN           *string     `json:"plmn"`
	ARFCN          *int        `json:"arfcn"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Frequency derives the carrier frequency in MHz from ARFCN and network type.
// It returns nil when the frequency is undefined.
func (m Measurement) Frequency() *float64 {
	freq, ok := arfcn.Derive(m.ARFCN, string(m.NetworkType))
	if !ok {
		return nil
	}
	return &freq
}

// MarshalJSON adds the derived arfcn_frequency field.
func (m Measurement) MarshalJSON() ([]byte, error) {
	type plain Measurement
	return json.Marshal(struct {
		plain
		Frequency *float64 `json:"arfcn_frequency"`
	}{
		plain:     plain(m),
		Frequency: m.Frequency(),
	})
}

// MeasurementInput is one measurement as uploaded by a device.
type MeasurementInput struct {
	Timestamp      *time.Time `json:"timestamp"`
	Latitude       *float64   `json:"latitude"`
	Longitude      *float64   `json:"longitude"`
	NetworkType    *string    `json:"network_type"`
	SignalStrength *float64   `json:"signal_strength"`
	SignalQuality  *float64   `json:"signal_quality"`
	CellID         *string    `json:"cell_id"`
	LAC            *string    `json:"lac"`
	TAC            *string    `json:"tac"`
	RAC            *string    `json:"rac"`
	PLMN           *string    `json:"plmn"`
	ARFCN          *int       `json:"arfcn"`
}

const maxAreaCodeLength = 100

// Validate checks required fields, coordinate ranges and enum membership.
func (in MeasurementInput) Validate() error {
	if in.Latitude == nil {
		return NewValidationError("latitude", "this field is required")
	}
	if *in.Latitude < -90 || *in.Latitude > 90 {
		return NewValidationError("latitude", "must be between -90 and 90")
	}
	if in.Longitude == nil {
		return NewValidationError("longitude", "this field is required")
	}
	if *in.Longitude < -180 || *in.Longitude > 180 {
		return NewValidationError("longitude", "must be between -180 and 180")
	}
	if in.NetworkType == nil {
		return NewValidationError("network_type", "this field is required")
	}
	if !NetworkType(*in.NetworkType).Valid() {
		return NewValidationError("network_type", "\""+*in.NetworkType+"\" is not a valid choice")
	}

	codes := []struct {
		field string
		value *string
	}{
		{"cell_id", in.CellID},
		{"lac", in.LAC},
		{"tac", in.TAC},
		{"rac", in.RAC},
		{"plmn", in.PLMN},
	}
	for _, c := range codes {
		if c.value != nil && utf8.RuneCountInString(*c.value) > maxAreaCodeLength {
			return NewValidationError(c.field, "ensure this field has no more than "+strconv.Itoa(maxAreaCodeLength)+" characters")
		}
	}
	return nil
}

// Measurement converts a validated input into a record owned by deviceID.
func (in MeasurementInput) Measurement(deviceID string) Measurement {
	m := Measurement{
		DeviceID:       deviceID,
		Timestamp:      in.Timestamp,
		SignalStrength: in.SignalStrength,
		SignalQuality:  in.SignalQuality,
		CellID:         in.CellID,
		LAC:            in.LAC,
		TAC:            in.TAC,
		RAC:            in.RAC,
		PLMN:           in.PLMN,
		ARFCN:          in.ARFCN,
	}
	if in.Latitude != nil {
		m.Latitude = *in.Latitude
	}
	if in.Longitude != nil {
		m.Longitude = *in.Longitude
	}
	if in.NetworkType != nil {
		m.NetworkType = NetworkType(*in.NetworkType)
	}
	return m
}
