// Package extraction defines the document-extraction contract: the
// structured manifest shape produced by an extractor, lenient decoding
// for malformed numeric fields, and helpers for the source document's
// date and clock formats.
package extraction

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Manifest is the structured result of extracting one delivery-manifest
// document. Raw preserves the source payload verbatim for audit and replay.
type Manifest struct {
	ManifestID          string     `json:"manifest_id"`
	PlannedDeliveryDate string     `json:"planned_delivery_date"`
	VehicleDriver       string     `json:"vehicle_driver"`
	ReportTimeLoading   string     `json:"report_time_loading"`
	CollectionDepot     Depot      `json:"collection_depot"`
	Deliveries          []Delivery `json:"deliveries"`

	Raw json.RawMessage `json:"-"`
}

// Depot identifies the collection depot for a manifest.
type Depot struct {
	Name     string `json:"name"`
	Postcode string `json:"postcode"`
}

// TimeWindow holds the requested delivery window in HH:MM form.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Delivery is one extracted stop within a manifest. Raw preserves the
// stop's source payload verbatim.
type Delivery struct {
	ContactName          string     `json:"contact_name"`
	Address              string     `json:"address"`
	Postcode             string     `json:"postcode"`
	BookingRef           string     `json:"booking_ref"`
	ARCNumber            string     `json:"arc_number"`
	ContactPhone         *string    `json:"contact_phone,omitempty"`
	EstWeightKg          FlexFloat  `json:"est_weight_kg"`
	TotalCases           FlexInt    `json:"total_cases"`
	TimeWindow           TimeWindow `json:"time_window"`
	DeliveryInstructions string     `json:"delivery_instructions"`
	DeliveryType         string     `json:"delivery_type"`

	Raw json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the manifest and retains the source bytes.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	type manifest Manifest
	var decoded manifest
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*m = Manifest(decoded)
	m.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// UnmarshalJSON decodes the delivery and retains the source bytes.
func (d *Delivery) UnmarshalJSON(data []byte) error {
	type delivery Delivery
	var decoded delivery
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*d = Delivery(decoded)
	d.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// FlexFloat decodes JSON numbers or numeric strings, coercing missing,
// null, or non-numeric input to 0. Malformed numeric fields never fail
// an otherwise valid document.
type FlexFloat float64

// UnmarshalJSON implements lenient numeric decoding.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	*f = FlexFloat(coerceFloat(data))
	return nil
}

// FlexInt decodes JSON integers, floats, or numeric strings, coercing
// missing, null, or non-numeric input to 0.
type FlexInt int

// UnmarshalJSON implements lenient numeric decoding.
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	*i = FlexInt(coerceFloat(data))
	return nil
}

func coerceFloat(data []byte) float64 {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return 0
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	// quoted string: unquote and retry
	var quoted string
	if err := json.Unmarshal(data, &quoted); err != nil {
		return 0
	}
	quoted = strings.TrimSpace(quoted)
	if quoted == "" {
		return 0
	}
	if f, err := strconv.ParseFloat(quoted, 64); err == nil {
		return f
	}
	return 0
}
