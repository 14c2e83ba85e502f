// Package manifests owns the durable representation of delivery
// manifests and their child deliveries: atomic multi-row writes,
// id-or-reference resolution, filtered searches, and aggregate
// statistics.
package manifests

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Manifest is one stored delivery-manifest document: header-level data
// plus its child deliveries. Manifests are created exactly once per
// successful extraction-plus-commit and never updated in place.
type Manifest struct {
	ID                      uuid.UUID       `json:"id"`
	ManifestRef             string          `json:"manifest_id"`
	PlannedDeliveryDate     *time.Time      `json:"planned_delivery_date,omitempty"`
	VehicleDriver           string          `json:"vehicle_driver"`
	ReportTimeLoading       *string         `json:"report_time_loading,omitempty"`
	CollectionDepotName     string          `json:"collection_depot_name"`
	CollectionDepotPostcode string          `json:"collection_depot_postcode"`
	OriginalFilename        string          `json:"original_filename"`
	FileSizeBytes           int64           `json:"file_size_bytes"`
	PageCount               *int            `json:"page_count,omitempty"`
	DeliveryCount           int             `json:"delivery_count"`
	RawManifest             json.RawMessage `json:"raw_manifest_data,omitempty"`
	CreatedAt               time.Time       `json:"created_at"`
	ProcessedAt             time.Time       `json:"processed_at"`
	Deliveries              []Delivery      `json:"deliveries,omitempty"`
}

// Delivery is one stored stop within a manifest. DeliveryOrder is the
// 1-based extraction order, dense within its manifest.
type Delivery struct {
	ID                   uuid.UUID       `json:"id"`
	ManifestID           uuid.UUID       `json:"manifest_pk"`
	ContactName          string          `json:"contact_name"`
	Address              string          `json:"address"`
	Postcode             string          `json:"postcode"`
	BookingRef           string          `json:"booking_ref"`
	ARCNumber            string          `json:"arc_number"`
	ContactPhone         *string         `json:"contact_phone,omitempty"`
	EstWeightKg          float64         `json:"est_weight_kg"`
	TotalCases           int             `json:"total_cases"`
	TimeWindowStart      *string         `json:"time_window_start,omitempty"`
	TimeWindowEnd        *string         `json:"time_window_end,omitempty"`
	DeliveryInstructions string          `json:"delivery_instructions"`
	DeliveryType         string          `json:"delivery_type"`
	DeliveryOrder        int             `json:"delivery_order"`
	RawDelivery          json.RawMessage `json:"raw_delivery_data,omitempty"`
}

// Summary is the manifest read model served by searches; it omits the
// raw payload and child rows.
type Summary struct {
	ID                      uuid.UUID  `json:"id"`
	ManifestRef             string     `json:"manifest_id"`
	PlannedDeliveryDate     *time.Time `json:"planned_delivery_date,omitempty"`
	VehicleDriver           string     `json:"vehicle_driver"`
	CollectionDepotName     string     `json:"collection_depot_name"`
	CollectionDepotPostcode string     `json:"collection_depot_postcode"`
	OriginalFilename        string     `json:"original_filename"`
	DeliveryCount           int        `json:"delivery_count"`
	CreatedAt               time.Time  `json:"created_at"`
}

// DeliveryDetail is a delivery joined with its manifest context, served
// by delivery searches.
type DeliveryDetail struct {
	ID                  uuid.UUID  `json:"id"`
	ManifestID          uuid.UUID  `json:"manifest_pk"`
	ManifestRef         string     `json:"manifest_id"`
	PlannedDeliveryDate *time.Time `json:"planned_delivery_date,omitempty"`
	VehicleDriver       string     `json:"vehicle_driver"`
	ContactName         string     `json:"contact_name"`
	Address             string     `json:"address"`
	Postcode            string     `json:"postcode"`
	BookingRef          string     `json:"booking_ref"`
	ARCNumber           string     `json:"arc_number"`
	EstWeightKg         float64    `json:"est_weight_kg"`
	TotalCases          int        `json:"total_cases"`
	TimeWindowStart     *string    `json:"time_window_start,omitempty"`
	TimeWindowEnd       *string    `json:"time_window_end,omitempty"`
	DeliveryType        string     `json:"delivery_type"`
	DeliveryOrder       int        `json:"delivery_order"`
	ManifestCreatedAt   time.Time  `json:"manifest_created_at"`
}

// ItemMeta carries the processing metadata attached to an extraction
// result before it is persisted.
type ItemMeta struct {
	OriginalFilename string
	FileSizeBytes    int64
	PageCount        *int
	ProcessedAt      time.Time
}

// Statistics aggregates manifest and batch-job counts. Delivery totals
// and averages cover manifests with a non-null planned date only.
type Statistics struct {
	TotalManifests           int            `json:"total_manifests"`
	DistinctDates            int            `json:"distinct_dates"`
	DistinctDrivers          int            `json:"distinct_drivers"`
	TotalDeliveries          int            `json:"total_deliveries"`
	AvgDeliveriesPerManifest float64        `json:"avg_deliveries_per_manifest"`
	ManifestsLast24h         int            `json:"manifests_last_24h"`
	JobsByStatus             map[string]int `json:"jobs_by_status"`
}
