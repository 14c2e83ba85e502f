package manifests

import (
	"net/url"
	"strings"
	"time"

	"github.com/tfiliano/dt-route-planner/pkg/query"
)

// areaPostcodeLength is the boundary between area-prefix matching and
// exact matching for delivery postcode filters.
const areaPostcodeLength = 4

const filterDateLayout = "2006-01-02"

// ManifestFilters contains optional criteria for manifest searches.
// Each filter is independently optional.
type ManifestFilters struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	Driver        *string
	DepotPostcode *string
}

// ManifestFiltersFromQuery extracts manifest filters from URL query parameters.
func ManifestFiltersFromQuery(values url.Values) ManifestFilters {
	var f ManifestFilters

	if v := values.Get("date_from"); v != "" {
		if t, err := time.Parse(filterDateLayout, v); err == nil {
			f.DateFrom = &t
		}
	}
	if v := values.Get("date_to"); v != "" {
		if t, err := time.Parse(filterDateLayout, v); err == nil {
			f.DateTo = &t
		}
	}
	if v := values.Get("driver"); v != "" {
		f.Driver = &v
	}
	if v := values.Get("depot_postcode"); v != "" {
		f.DepotPostcode = &v
	}

	return f
}

// Apply adds filter conditions to the query builder. Date bounds are
// inclusive on the planned delivery date.
func (f ManifestFilters) Apply(b *query.Builder) *query.Builder {
	b = b.WhereContains("VehicleDriver", f.Driver)

	if f.DateFrom != nil {
		b = b.WhereGte("PlannedDate", *f.DateFrom)
	}
	if f.DateTo != nil {
		b = b.WhereLte("PlannedDate", *f.DateTo)
	}
	if f.DepotPostcode != nil {
		normalized := normalizePostcode(*f.DepotPostcode)
		b = b.WhereEquals("DepotPostcode", normalized)
	}

	return b
}

// DeliveryFilters contains optional criteria for delivery searches.
type DeliveryFilters struct {
	Postcode   *string
	Contact    *string
	BookingRef *string
}

// DeliveryFiltersFromQuery extracts delivery filters from URL query parameters.
func DeliveryFiltersFromQuery(values url.Values) DeliveryFilters {
	var f DeliveryFilters

	if v := values.Get("postcode"); v != "" {
		f.Postcode = &v
	}
	if v := values.Get("contact"); v != "" {
		f.Contact = &v
	}
	if v := values.Get("booking_ref"); v != "" {
		f.BookingRef = &v
	}

	return f
}

// Apply adds filter conditions to the query builder. A postcode longer
// than four characters matches exactly; shorter input is treated as an
// area prefix, so "SW1" matches "SW1A 1AA" but not "SW2 1AA".
func (f DeliveryFilters) Apply(b *query.Builder) *query.Builder {
	b = b.WhereContains("ContactName", f.Contact)

	if f.BookingRef != nil {
		b = b.WhereEquals("BookingRef", *f.BookingRef)
	}

	if f.Postcode != nil {
		normalized := normalizePostcode(*f.Postcode)
		if len(normalized) > areaPostcodeLength {
			b = b.WhereEquals("Postcode", normalized)
		} else {
			b = b.WherePrefix("Postcode", &normalized)
		}
	}

	return b
}

func normalizePostcode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
