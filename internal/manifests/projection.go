package manifests

import (
	"github.com/tfiliano/dt-route-planner/pkg/query"
	"github.com/tfiliano/dt-route-planner/pkg/repository"
)

var manifestProjection = query.NewProjectionMap("public", "manifests", "m").
	Project("id", "Id").
	Project("manifest_id", "ManifestRef").
	Project("planned_delivery_date", "PlannedDate").
	Project("vehicle_driver", "VehicleDriver").
	Project("report_time_loading::text", "ReportTimeLoading").
	Project("collection_depot_name", "DepotName").
	Project("collection_depot_postcode", "DepotPostcode").
	Project("original_filename", "OriginalFilename").
	Project("file_size_bytes", "FileSizeBytes").
	Project("page_count", "PageCount").
	Project("delivery_count", "DeliveryCount").
	Project("raw_manifest_data", "RawManifest").
	Project("created_at", "CreatedAt").
	Project("processed_at", "ProcessedAt")

var summaryProjection = query.NewProjectionMap("public", "manifest_summaries", "m").
	Project("id", "Id").
	Project("manifest_id", "ManifestRef").
	Project("planned_delivery_date", "PlannedDate").
	Project("vehicle_driver", "VehicleDriver").
	Project("collection_depot_name", "DepotName").
	Project("collection_depot_postcode", "DepotPostcode").
	Project("original_filename", "OriginalFilename").
	Project("delivery_count", "DeliveryCount").
	Project("created_at", "CreatedAt")

var summaryDefaultSort = []query.SortField{
	{Field: "PlannedDate", Descending: true},
	{Field: "CreatedAt", Descending: true},
}

var detailProjection = query.NewProjectionMap("public", "delivery_details", "d").
	Project("id", "Id").
	Project("manifest_pk", "ManifestId").
	Project("manifest_id", "ManifestRef").
	Project("planned_delivery_date", "PlannedDate").
	Project("vehicle_driver", "VehicleDriver").
	Project("contact_name", "ContactName").
	Project("address", "Address").
	Project("postcode", "Postcode").
	Project("booking_ref", "BookingRef").
	Project("arc_number", "ARCNumber").
	Project("est_weight_kg", "EstWeightKg").
	Project("total_cases", "TotalCases").
	Project("time_window_start::text", "WindowStart").
	Project("time_window_end::text", "WindowEnd").
	Project("delivery_type", "DeliveryType").
	Project("delivery_order", "DeliveryOrder").
	Project("manifest_created_at", "CreatedAt")

var detailDefaultSort = []query.SortField{
	{Field: "PlannedDate", Descending: true},
	{Field: "CreatedAt", Descending: true},
	{Field: "DeliveryOrder"},
}

func scanSummary(s repository.Scanner) (Summary, error) {
	var m Summary
	err := s.Scan(
		&m.ID,
		&m.ManifestRef,
		&m.PlannedDeliveryDate,
		&m.VehicleDriver,
		&m.CollectionDepotName,
		&m.CollectionDepotPostcode,
		&m.OriginalFilename,
		&m.DeliveryCount,
		&m.CreatedAt,
	)
	return m, err
}

func scanDetail(s repository.Scanner) (DeliveryDetail, error) {
	var d DeliveryDetail
	err := s.Scan(
		&d.ID,
		&d.ManifestID,
		&d.ManifestRef,
		&d.PlannedDeliveryDate,
		&d.VehicleDriver,
		&d.ContactName,
		&d.Address,
		&d.Postcode,
		&d.BookingRef,
		&d.ARCNumber,
		&d.EstWeightKg,
		&d.TotalCases,
		&d.TimeWindowStart,
		&d.TimeWindowEnd,
		&d.DeliveryType,
		&d.DeliveryOrder,
		&d.ManifestCreatedAt,
	)
	return d, err
}

func scanManifest(s repository.Scanner) (Manifest, error) {
	var m Manifest
	err := s.Scan(
		&m.ID,
		&m.ManifestRef,
		&m.PlannedDeliveryDate,
		&m.VehicleDriver,
		&m.ReportTimeLoading,
		&m.CollectionDepotName,
		&m.CollectionDepotPostcode,
		&m.OriginalFilename,
		&m.FileSizeBytes,
		&m.PageCount,
		&m.DeliveryCount,
		&m.RawManifest,
		&m.CreatedAt,
		&m.ProcessedAt,
	)
	return m, err
}

func scanDelivery(s repository.Scanner) (Delivery, error) {
	var d Delivery
	err := s.Scan(
		&d.ID,
		&d.ManifestID,
		&d.ContactName,
		&d.Address,
		&d.Postcode,
		&d.BookingRef,
		&d.ARCNumber,
		&d.ContactPhone,
		&d.EstWeightKg,
		&d.TotalCases,
		&d.TimeWindowStart,
		&d.TimeWindowEnd,
		&d.DeliveryInstructions,
		&d.DeliveryType,
		&d.DeliveryOrder,
		&d.RawDelivery,
	)
	return d, err
}
