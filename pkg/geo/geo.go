// Package geo resolves the three-level region → province → district cascade
// from a reference table. Option sets are always derived from the parent
// selection so a province can never be paired with a foreign region.
package geo

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-formsheet/pkg/model"
	"github.com/goliatone/go-formsheet/pkg/schema"
)

// Reference table headers.
const (
	ColumnRegion   = "Departamento"
	ColumnProvince = "Provincia"
	ColumnDistrict = "Distrito"
)

// Resolver answers cascade queries over an in-memory reference table.
type Resolver struct {
	records []model.GeoRecord
	regions []string
}

// NewResolver indexes the provided records.
func NewResolver(records []model.GeoRecord) *Resolver {
	r := &Resolver{records: append([]model.GeoRecord(nil), records...)}
	r.regions = uniqueSorted(r.records, func(rec model.GeoRecord) (string, bool) {
		return rec.Region, true
	})
	return r
}

// LoadReference reads the reference table through the schema loader. Cells
// are kept as strings so codes with leading zeros survive.
func LoadReference(ctx context.Context, loader *schema.Loader, src schema.Source) (*Resolver, error) {
	table, err := loader.ReadTable(ctx, src)
	if err != nil {
		return nil, err
	}
	cols, err := table.RequireColumns(ColumnRegion, ColumnProvince, ColumnDistrict)
	if err != nil {
		return nil, fmt.Errorf("geo: %s: %w", src.Location(), err)
	}

	records := make([]model.GeoRecord, 0, len(table.Rows))
	for _, row := range table.Rows {
		records = append(records, model.GeoRecord{
			Region:   table.Cell(row, cols[0]),
			Province: table.Cell(row, cols[1]),
			District: table.Cell(row, cols[2]),
		})
	}
	return NewResolver(records), nil
}

// Len reports the number of reference rows.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.records)
}

// Regions returns the sorted unique region names.
func (r *Resolver) Regions() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.regions...)
}

// Provinces returns the sorted unique provinces of region. An unset region
// yields an empty set.
func (r *Resolver) Provinces(region string) []string {
	if r == nil || region == "" {
		return nil
	}
	return uniqueSorted(r.records, func(rec model.GeoRecord) (string, bool) {
		return rec.Province, rec.Region == region
	})
}

// Districts returns the sorted unique districts of the (region, province)
// pair. An unset province yields an empty set.
func (r *Resolver) Districts(region, province string) []string {
	if r == nil || region == "" || province == "" {
		return nil
	}
	return uniqueSorted(r.records, func(rec model.GeoRecord) (string, bool) {
		return rec.District, rec.Region == region && rec.Province == province
	})
}

func uniqueSorted(records []model.GeoRecord, pick func(model.GeoRecord) (string, bool)) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, rec := range records {
		value, ok := pick(rec)
		if !ok || value == "" {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

func contains(values []string, value string) bool {
	idx := sort.SearchStrings(values, value)
	return idx < len(values) && values[idx] == value
}
