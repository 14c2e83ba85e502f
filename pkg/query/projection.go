// Package query provides SQL query construction with field-to-column
// projection mapping and automatic parameter numbering.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps logical field names to qualified SQL columns for a
// single table or view.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	columns []string
	fields  map[string]string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Project registers a column under a logical field name and returns the
// map for chaining. Registration order determines column order.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := fmt.Sprintf("%s.%s", p.alias, column)
	p.columns = append(p.columns, qualified)
	p.fields[field] = qualified
	return p
}

// Table returns the aliased table reference for FROM clauses.
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Columns returns the comma-separated projected column list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columns, ", ")
}

// Column resolves a logical field name to its qualified column.
// Unregistered fields resolve to the first projected column.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.fields[field]; ok {
		return col
	}
	return p.columns[0]
}

// Has reports whether a logical field name is registered.
func (p *ProjectionMap) Has(field string) bool {
	_, ok := p.fields[field]
	return ok
}
