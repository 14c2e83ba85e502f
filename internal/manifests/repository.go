package manifests

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/tfiliano/dt-route-planner/internal/extraction"
	"github.com/tfiliano/dt-route-planner/pkg/pagination"
	"github.com/tfiliano/dt-route-planner/pkg/query"
	"github.com/tfiliano/dt-route-planner/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a manifest store backed by the given database pool.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "manifests"),
		pagination: pagination,
	}
}

const insertManifestSQL = `INSERT INTO manifests(
		id, manifest_id, planned_delivery_date, vehicle_driver, report_time_loading,
		collection_depot_name, collection_depot_postcode, original_filename,
		file_size_bytes, page_count, delivery_count, raw_manifest_data, processed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	RETURNING id, manifest_id, planned_delivery_date, vehicle_driver, report_time_loading::text,
		collection_depot_name, collection_depot_postcode, original_filename,
		file_size_bytes, page_count, delivery_count, raw_manifest_data, created_at, processed_at`

const insertDeliverySQL = `INSERT INTO deliveries(
		id, manifest_id, contact_name, address, postcode, booking_ref, arc_number,
		contact_phone, est_weight_kg, total_cases, time_window_start, time_window_end,
		delivery_instructions, delivery_type, delivery_order, raw_delivery_data)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	RETURNING id, manifest_id, contact_name, address, postcode, booking_ref, arc_number,
		contact_phone, est_weight_kg, total_cases, time_window_start::text, time_window_end::text,
		delivery_instructions, delivery_type, delivery_order, raw_delivery_data`

const selectDeliveriesSQL = `SELECT id, manifest_id, contact_name, address, postcode,
		booking_ref, arc_number, contact_phone, est_weight_kg, total_cases,
		time_window_start::text, time_window_end::text, delivery_instructions, delivery_type,
		delivery_order, raw_delivery_data
	FROM deliveries WHERE manifest_id = $1 ORDER BY delivery_order ASC`

// Store commits one extracted manifest and all of its deliveries in a
// single transaction. Delivery order indices are assigned 1..n in
// extraction order; delivery_count always equals the number of child
// rows written alongside it. Any insert failure rolls the whole write
// back and surfaces as a *StorageError.
func (r *repo) Store(ctx context.Context, extracted *extraction.Manifest, meta ItemMeta) (*Manifest, error) {
	id := uuid.New()
	plannedDate := extraction.ParseManifestDate(extracted.PlannedDeliveryDate)
	reportTime := extraction.NormalizeClock(extracted.ReportTimeLoading)
	processedAt := meta.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now()
	}

	manifest, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Manifest, error) {
		m, err := repository.QueryOne(ctx, tx, insertManifestSQL, []any{
			id,
			extracted.ManifestID,
			plannedDate,
			extracted.VehicleDriver,
			reportTime,
			extracted.CollectionDepot.Name,
			extracted.CollectionDepot.Postcode,
			meta.OriginalFilename,
			meta.FileSizeBytes,
			meta.PageCount,
			len(extracted.Deliveries),
			rawPayload(extracted.Raw, extracted),
			processedAt,
		}, scanManifest)
		if err != nil {
			return Manifest{}, fmt.Errorf("insert manifest: %w", err)
		}

		for i, item := range extracted.Deliveries {
			stored, err := repository.QueryOne(ctx, tx, insertDeliverySQL, []any{
				uuid.New(),
				m.ID,
				item.ContactName,
				item.Address,
				item.Postcode,
				item.BookingRef,
				item.ARCNumber,
				item.ContactPhone,
				float64(item.EstWeightKg),
				int(item.TotalCases),
				extraction.NormalizeClock(item.TimeWindow.Start),
				extraction.NormalizeClock(item.TimeWindow.End),
				item.DeliveryInstructions,
				item.DeliveryType,
				i + 1,
				rawPayload(item.Raw, item),
			}, scanDelivery)
			if err != nil {
				return Manifest{}, fmt.Errorf("insert delivery %d: %w", i+1, err)
			}
			m.Deliveries = append(m.Deliveries, stored)
		}

		return m, nil
	})

	if err != nil {
		r.logger.Error("manifest store failed",
			"manifest_ref", extracted.ManifestID,
			"filename", meta.OriginalFilename,
			"error", err,
		)
		return nil, &StorageError{Op: "store manifest", Err: err}
	}

	r.logger.Info("manifest stored",
		"id", manifest.ID,
		"manifest_ref", manifest.ManifestRef,
		"deliveries", manifest.DeliveryCount,
	)
	return &manifest, nil
}

// Find fetches a manifest by surrogate id, with deliveries ordered by
// delivery_order ascending. Absent manifests yield ErrNotFound.
func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Manifest, error) {
	q, args := query.NewBuilder(manifestProjection).BuildSingle("Id", id)

	manifest, err := repository.QueryOne(ctx, r.db, q, args, scanManifest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return r.withDeliveries(ctx, &manifest)
}

// FindByReference fetches the most recently created manifest with the
// given human-assigned reference. References are not unique; creation
// time breaks ties.
func (r *repo) FindByReference(ctx context.Context, ref string) (*Manifest, error) {
	q, args := query.NewBuilder(manifestProjection).
		WhereEquals("ManifestRef", ref).
		BuildFirst("CreatedAt")

	manifest, err := repository.QueryOne(ctx, r.db, q, args, scanManifest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return r.withDeliveries(ctx, &manifest)
}

// Resolve dispatches an external identifier to the id lookup when it is
// structurally a surrogate id, and to the reference lookup otherwise.
func (r *repo) Resolve(ctx context.Context, external string) (*Manifest, error) {
	if IsSurrogateID(external) {
		id, err := uuid.Parse(external)
		if err != nil {
			return nil, ErrNotFound
		}
		return r.Find(ctx, id)
	}
	return r.FindByReference(ctx, external)
}

func (r *repo) SearchManifests(ctx context.Context, page pagination.PageRequest, filters ManifestFilters) (*pagination.PageResult[Summary], error) {
	page.Normalize(r.pagination)

	countSQL, countArgs := filters.Apply(query.NewBuilder(summaryProjection)).BuildCount()

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count manifests: %w", err)
	}

	qb := filters.Apply(query.NewBuilder(summaryProjection, summaryDefaultSort...))
	if len(page.Sort) > 0 {
		qb.OrderBy(page.Sort...)
	}
	pageSQL, pageArgs := qb.BuildWindow(page.PageSize, page.Offset())

	summaries, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query manifests: %w", err)
	}

	result := pagination.NewPageResult(summaries, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) SearchDeliveries(ctx context.Context, page pagination.PageRequest, filters DeliveryFilters) (*pagination.PageResult[DeliveryDetail], error) {
	page.Normalize(r.pagination)

	countSQL, countArgs := filters.Apply(query.NewBuilder(detailProjection)).BuildCount()

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count deliveries: %w", err)
	}

	qb := filters.Apply(query.NewBuilder(detailProjection, detailDefaultSort...))
	if len(page.Sort) > 0 {
		qb.OrderBy(page.Sort...)
	}
	pageSQL, pageArgs := qb.BuildWindow(page.PageSize, page.Offset())

	details, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDetail)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}

	result := pagination.NewPageResult(details, total, page.Page, page.PageSize)
	return &result, nil
}

const manifestStatsSQL = `SELECT
		COUNT(*),
		COUNT(DISTINCT planned_delivery_date),
		COUNT(DISTINCT vehicle_driver),
		COALESCE(SUM(delivery_count) FILTER (WHERE planned_delivery_date IS NOT NULL), 0),
		COALESCE(AVG(delivery_count) FILTER (WHERE planned_delivery_date IS NOT NULL), 0)::float8,
		COUNT(*) FILTER (WHERE processed_at > NOW() - INTERVAL '24 hours')
	FROM manifests`

const jobStatsSQL = `SELECT status, COUNT(*) FROM batch_jobs GROUP BY status`

// Statistics aggregates manifest counts and batch-job counts by status.
func (r *repo) Statistics(ctx context.Context) (*Statistics, error) {
	var stats Statistics

	err := r.db.QueryRowContext(ctx, manifestStatsSQL).Scan(
		&stats.TotalManifests,
		&stats.DistinctDates,
		&stats.DistinctDrivers,
		&stats.TotalDeliveries,
		&stats.AvgDeliveriesPerManifest,
		&stats.ManifestsLast24h,
	)
	if err != nil {
		return nil, fmt.Errorf("manifest statistics: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, jobStatsSQL)
	if err != nil {
		return nil, fmt.Errorf("job statistics: %w", err)
	}
	defer rows.Close()

	stats.JobsByStatus = make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan job statistics: %w", err)
		}
		stats.JobsByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("job statistics: %w", err)
	}

	return &stats, nil
}

func (r *repo) withDeliveries(ctx context.Context, m *Manifest) (*Manifest, error) {
	deliveries, err := repository.QueryMany(ctx, r.db, selectDeliveriesSQL, []any{m.ID}, scanDelivery)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	m.Deliveries = deliveries
	return m, nil
}

// rawPayload prefers the verbatim source bytes and falls back to
// re-encoding the structured form.
func rawPayload(raw json.RawMessage, v any) []byte {
	if len(raw) > 0 {
		return raw
	}
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}
